package components

import (
	"log/slog"

	"stock-hold-service/internal/infra/memstore"
	"stock-hold-service/internal/infra/readstore"
	"stock-hold-service/internal/infra/repository"
	"stock-hold-service/internal/infra/uow"
	"stock-hold-service/internal/pkg/clock"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/usecase/queries"
	"stock-hold-service/internal/usecase/reclaim"
	"stock-hold-service/internal/usecase/shared"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(NewPersistence),
)

// Persistence is the storage surface seen by the use cases. Both drivers
// fill every field.
type Persistence struct {
	fx.Out

	UoW          shared.UnitOfWork
	Jobs         shared.JobQueue
	Leases       shared.LeaseManager
	ProductReads queries.ProductReadStore
	HoldReads    queries.HoldReadStore
	OrderReads   queries.OrderReadStore
	ExpiredHolds reclaim.ExpiredHoldFinder
}

func NewPersistence(lc fx.Lifecycle, cfg config.Config, clk clock.Clock, log *slog.Logger) (Persistence, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		store := memstore.New(clk)
		holds := store.HoldReads()
		return Persistence{
			UoW:          store,
			Jobs:         store.JobQueue(),
			Leases:       store.Leases(),
			ProductReads: store.ProductReads(),
			HoldReads:    holds,
			OrderReads:   store.OrderReads(),
			ExpiredHolds: holds,
		}, nil
	}

	pool, err := NewDB(lc, cfg, log)
	if err != nil {
		return Persistence{}, err
	}
	holds := readstore.NewHoldReadStore(pool)
	return Persistence{
		UoW:          uow.NewPostgresUoW(pool, clk, log),
		Jobs:         repository.NewJobQueue(pool),
		Leases:       repository.NewAdvisoryLeaseManager(pool, log),
		ProductReads: readstore.NewProductReadStore(pool),
		HoldReads:    holds,
		OrderReads:   readstore.NewOrderReadStore(pool),
		ExpiredHolds: holds,
	}, nil
}
