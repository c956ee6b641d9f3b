//go:build e2e

package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"stock-hold-service/cmd/bootstrap/components"
	resdto "stock-hold-service/internal/handler/dto/response"
	"stock-hold-service/internal/pkg/config"
	"stock-hold-service/internal/testutil/httptest"
	"stock-hold-service/internal/testutil/pgtest"
	"stock-hold-service/internal/usecase/reclaim"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/fx"
)

type AppSuite struct {
	suite.Suite
	router *gin.Engine
	app    *fx.App
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	_, dbConfig := pgtest.NewDatabase(s.T())

	cfg := config.NewTestConfig()
	cfg.Store.Driver = config.StoreDriverPostgres
	cfg.DB = dbConfig
	cfg.Worker.Enabled = true

	s.app = fx.New(
		fx.Provide(
			func() config.Config { return cfg },
			splitConfig,
			func() *gin.Engine { return gin.New() },
		),
		CoreModule,
		components.BrokerModule,
		components.WorkerModule,
		components.HandlerModule,
		fx.Populate(&s.router),
		fx.NopLogger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(s.T(), s.app.Start(ctx))
}

func (s *AppSuite) TearDownSuite() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.NoError(s.app.Stop(ctx))
}

func (s *AppSuite) createProduct(total int) resdto.ProductResponse {
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/products",
		map[string]any{"name": "Widget", "total_stock": total, "price": "12.50"})
	var p resdto.ProductResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &p)
	return p
}

func (s *AppSuite) product(id uuid.UUID) resdto.ProductResponse {
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/products/"+id.String(), nil)
	var p resdto.ProductResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &p)
	return p
}

func (s *AppSuite) TestHoldOrderPaymentFlow() {
	p := s.createProduct(100)
	s.Equal(100, p.AvailableStock)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/holds",
		map[string]any{"product_id": p.ID, "quantity": 60})
	var h resdto.HoldCreatedResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &h)
	s.Equal(40, s.product(p.ID).AvailableStock, "cache is invalidated after the hold")

	rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/holds",
		map[string]any{"product_id": p.ID, "quantity": 50})
	httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "insufficient stock")

	rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/orders",
		map[string]any{"hold_id": h.HoldID})
	var o resdto.OrderCreatedResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &o)
	s.Equal("pending", string(o.Status))

	rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/orders",
		map[string]any{"hold_id": h.HoldID})
	httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "already been used")

	webhook := map[string]any{"event_id": "evt-" + uuid.NewString(), "order_id": o.OrderID, "status": "paid"}
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		duplicates int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/payments/webhook", webhook)
			var res resdto.PaymentWebhookResponse
			httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
			s.Equal("completed", string(res.Status))
			mu.Lock()
			defer mu.Unlock()
			if res.Duplicate {
				duplicates++
			}
		}()
	}
	wg.Wait()
	s.Equal(9, duplicates)

	webhook["event_id"] = "evt-other"
	rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/payments/webhook", webhook)
	httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "not pending")

	rec = httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/orders/"+o.OrderID.String(), nil)
	var detail resdto.OrderResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &detail)
	s.Equal("completed", detail.Status)
}

func (s *AppSuite) TestBuyAndSweepEndpoints() {
	p := s.createProduct(5)

	rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, fmt.Sprintf("/api/products/%s/buy", p.ID),
		map[string]any{"amount": 2})
	var bought resdto.ProductResponse
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &bought)
	s.Equal(3, bought.AvailableStock)

	rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, fmt.Sprintf("/api/products/%s/buy", p.ID),
		map[string]any{"amount": 4})
	httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "insufficient stock")

	rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/api/holds/sweep", nil)
	var summary reclaim.SweepResult
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &summary)
	s.Zero(summary.Failed)

	rec = httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/api/products?limit=1", nil)
	var page resdto.ListResponse[resdto.ProductResponse]
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &page)
	s.Len(page.Items, 1)
}

func (s *AppSuite) TestHealth() {
	rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/health", nil)
	httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
}
