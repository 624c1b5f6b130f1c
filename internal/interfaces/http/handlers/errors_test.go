package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/your-org/hardware-admin/internal/domain/cart"
	"github.com/your-org/hardware-admin/internal/domain/order"
	"github.com/your-org/hardware-admin/internal/domain/user"
	"github.com/your-org/hardware-admin/internal/pkg/logger"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{cart.ErrInvalidQuantity, http.StatusBadRequest},
		{fmt.Errorf("%w: available 2, requested 5", cart.ErrInsufficientStock), http.StatusConflict},
		{cart.ErrEmptyCart, http.StatusUnprocessableEntity},
		{user.ErrInvalidCredentials, http.StatusUnauthorized},
		{order.ErrForbidden, http.StatusForbidden},
		{order.ErrOrderNotFound, http.StatusNotFound},
		{order.ErrInvalidStatusTransition, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders", nil)

	respondError(c, logger.Discard(), errors.New("pq: relation does not exist"), "Failed to retrieve orders")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to retrieve orders"}`, w.Body.String())
}

func TestParseIDParam(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-1"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		_, ok := parseIDParam(c, "id", "order")
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, ok := parseIDParam(c, "id", "order")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)
}
