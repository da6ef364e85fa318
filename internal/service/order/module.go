package order

import "go.uber.org/fx"

// Module provides the partner order service to Fx.
var Module = fx.Provide(NewService)
