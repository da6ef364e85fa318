package notification

import "go.uber.org/fx"

// Module provides the notification service to Fx, also as a Notifier.
var Module = fx.Provide(
	fx.Annotate(
		NewService,
		fx.As(fx.Self()),
		fx.As(new(Notifier)),
	),
)
