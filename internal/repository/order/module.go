package order

import "go.uber.org/fx"

// Module provides the order repository to Fx.
var Module = fx.Provide(
	fx.Annotate(NewRepository, fx.As(fx.Self()), fx.As(new(Store))),
)
