package bootstrap

import (
	"stock-hold-service/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// CoreModule wires everything the use cases need except configuration, so
// tests can supply their own config.Config.
var CoreModule = fx.Options(
	LoggerModule,
	TracingModule,
	components.PersistenceModule,
	components.CacheModule,
	components.UseCaseModule,
)

var Module = fx.Options(
	ConfigModule,
	CoreModule,
	components.BrokerModule,
	components.WorkerModule,
	components.HandlerModule,
)
