package components

import (
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/queries"
	"stock-hold-service/internal/usecase/reclaim"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
	usecaseReclaimModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewProductCommands,
		commands.NewHoldCommands,
		commands.NewOrderCommands,
		commands.NewPaymentCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewProductQueries,
		queries.NewHoldQueries,
		queries.NewOrderQueries,
	),
)

var usecaseReclaimModule = fx.Module("usecase/reclaim",
	fx.Provide(
		func(h commands.HoldCommands) reclaim.HoldReleaser { return h },
		reclaim.NewSweeper,
		func(s *reclaim.Sweeper) reclaim.SweepRunner { return s },
	),
)
