package httperr_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"stock-hold-service/internal/domain/hold"
	"stock-hold-service/internal/domain/order"
	"stock-hold-service/internal/domain/product"
	"stock-hold-service/internal/handler/httperr"
	"stock-hold-service/internal/pkg/errs"
	"stock-hold-service/internal/usecase/commands"
	"stock-hold-service/internal/usecase/reclaim"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"hold not found", commands.ErrHoldNotFound, http.StatusNotFound},
		{"wrapped not found", errs.Wrap(commands.ErrProductNotFound, "create hold"), http.StatusNotFound},
		{"hold expired", hold.ErrHoldExpired, http.StatusBadRequest},
		{"insufficient stock", product.ErrInsufficientStock, http.StatusBadRequest},
		{"order not pending", order.ErrOrderNotPending, http.StatusBadRequest},
		{"validation", hold.ErrInvalidQuantity, http.StatusBadRequest},
		{"sweep running", reclaim.ErrSweepInProgress, http.StatusConflict},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, httperr.StatusOf(c.err))
		})
	}
}

func TestAbort(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(err error) (*httptest.ResponseRecorder, httperr.Response) {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		httperr.Abort(c, err)

		var body httperr.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return rec, body
	}

	rec, body := run(hold.ErrHoldReleased)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, hold.ErrHoldReleased.Error(), body.Error.Message)

	rec, body = run(errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal error", body.Error.Message)
}
