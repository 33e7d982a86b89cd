package delete

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"budget-api/internal/middleware/tenant"
	"budget-api/internal/storage"
)

const companyID = "7c1e3f9a-5b44-4b6e-9f0a-2d7a1c3e8b10"

type MockBudgetDeleter struct {
	mock.Mock
}

func (m *MockBudgetDeleter) DeleteBudget(ctx context.Context, companyID, id string) error {
	return m.Called(ctx, companyID, id).Error(0)
}

func serve(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Delete("/api/budgets/{id}", h)

	req := httptest.NewRequest(http.MethodDelete, target, nil)
	req = req.WithContext(tenant.WithCompanyID(req.Context(), companyID))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestDeleteBudget(t *testing.T) {
	d := new(MockBudgetDeleter)
	d.On("DeleteBudget", mock.Anything, companyID, "b-1").Return(nil)

	rr := serve(DeleteBudget(slog.Default(), d), "/api/budgets/b-1")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":"b-1"}}`, rr.Body.String())
	d.AssertExpectations(t)
}

func TestDeleteBudget_NotFound(t *testing.T) {
	d := new(MockBudgetDeleter)
	d.On("DeleteBudget", mock.Anything, companyID, "b-9").Return(storage.ErrBudgetNotFound)

	rr := serve(DeleteBudget(slog.Default(), d), "/api/budgets/b-9")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
