package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/runner/internal/auth"
	"github.com/Additional-Code/runner/internal/cache"
	"github.com/Additional-Code/runner/internal/config"
	"github.com/Additional-Code/runner/internal/database"
	"github.com/Additional-Code/runner/internal/fcm"
	"github.com/Additional-Code/runner/internal/logger"
	"github.com/Additional-Code/runner/internal/messaging"
	"github.com/Additional-Code/runner/internal/observability"
	repositoryaccount "github.com/Additional-Code/runner/internal/repository/account"
	repositorycatalog "github.com/Additional-Code/runner/internal/repository/catalog"
	repositorymenu "github.com/Additional-Code/runner/internal/repository/menu"
	repositoryorder "github.com/Additional-Code/runner/internal/repository/order"
	grpcserver "github.com/Additional-Code/runner/internal/server/grpc"
	httpserver "github.com/Additional-Code/runner/internal/server/http"
	servicemenu "github.com/Additional-Code/runner/internal/service/menu"
	servicenotification "github.com/Additional-Code/runner/internal/service/notification"
	serviceorder "github.com/Additional-Code/runner/internal/service/order"
	transporthttp "github.com/Additional-Code/runner/internal/transport/http"
	"github.com/Additional-Code/runner/internal/worker"
	workernotification "github.com/Additional-Code/runner/internal/worker/notification"
)

// Infra provides configuration, logging and storage without any domain wiring.
var Infra = fx.Options(
	config.Module,
	logger.Module,
	database.Module,
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	Infra,
	cache.Module,
	messaging.Module,
	observability.Module,
	auth.Module,
	fcm.Module,
	repositoryaccount.Module,
	repositorycatalog.Module,
	repositorymenu.Module,
	repositoryorder.Module,
	servicenotification.Module,
	servicemenu.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP and gRPC transports on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
	grpcserver.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workernotification.Module,
)

// Module is the default application wiring (HTTP and gRPC).
var Module = HTTP
