// Command seed inserts five sample products through the regular product
// commands. It is meant for the postgres driver; with STORE_DRIVER=memory the
// products vanish when the command exits.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"stock-hold-service/cmd/bootstrap"
	"stock-hold-service/internal/usecase/commands"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

const productCount = 5

func seed(lc fx.Lifecycle, products commands.ProductCommands, log *slog.Logger, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for i := 1; i <= productCount; i++ {
				total := 100 + rand.IntN(101)
				available := min(50+rand.IntN(101), total)
				in := commands.CreateProductInput{
					Name:           fmt.Sprintf("Product %d", i),
					TotalStock:     total,
					AvailableStock: &available,
					Price:          decimal.NewFromInt(int64(10 + rand.IntN(91))),
				}
				id, err := products.CreateProduct(ctx, in)
				if err != nil {
					return err
				}
				log.Info("product seeded", "id", id, "name", in.Name, "total_stock", total, "available_stock", available)
			}
			return shutdowner.Shutdown()
		},
	})
}

func main() {
	app := fx.New(
		bootstrap.ConfigModule,
		bootstrap.CoreModule,
		fx.Invoke(seed),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	<-app.Done()
	_ = app.Stop(ctx)
}
