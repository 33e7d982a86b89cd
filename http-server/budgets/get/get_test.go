package get

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"budget-api/internal/middleware/tenant"
	"budget-api/internal/storage"
)

const companyID = "7c1e3f9a-5b44-4b6e-9f0a-2d7a1c3e8b10"

type MockBudgetProvider struct {
	mock.Mock
}

func (m *MockBudgetProvider) GetBudget(ctx context.Context, companyID, id string) (*storage.Budget, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Budget), args.Error(1)
}

func (m *MockBudgetProvider) ListBudgets(ctx context.Context, companyID string, filter storage.BudgetFilter) ([]storage.Budget, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Budget), args.Error(1)
}

func serve(h http.HandlerFunc, pattern, target string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(tenant.WithCompanyID(r.Context(), companyID)))
		})
	})
	router.Get(pattern, h)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestGetBudgets_PassesFilters(t *testing.T) {
	p := new(MockBudgetProvider)
	p.On("ListBudgets", mock.Anything, companyID, storage.BudgetFilter{Status: storage.StatusSent, TemplateID: "tpl-1"}).
		Return([]storage.Budget{{ID: "b-1", Name: "Casa", Status: storage.StatusSent}}, nil)

	rr := serve(GetBudgets(slog.Default(), p), "/api/budgets", "/api/budgets?status=sent&template_id=tpl-1")

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data []storage.Budget `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "b-1", body.Data[0].ID)
	p.AssertExpectations(t)
}

func TestGetBudgets_EmptyListIsArray(t *testing.T) {
	p := new(MockBudgetProvider)
	p.On("ListBudgets", mock.Anything, companyID, storage.BudgetFilter{}).Return(nil, nil)

	rr := serve(GetBudgets(slog.Default(), p), "/api/budgets", "/api/budgets")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rr.Body.String())
}

func TestGetBudgets_StorageFailure(t *testing.T) {
	p := new(MockBudgetProvider)
	p.On("ListBudgets", mock.Anything, companyID, storage.BudgetFilter{}).Return(nil, errors.New("connection refused"))

	rr := serve(GetBudgets(slog.Default(), p), "/api/budgets", "/api/budgets")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "connection refused")
}

func TestGetBudget(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		p := new(MockBudgetProvider)
		p.On("GetBudget", mock.Anything, companyID, "b-1").Return(&storage.Budget{ID: "b-1", Version: 3}, nil)

		rr := serve(GetBudget(slog.Default(), p), "/api/budgets/{id}", "/api/budgets/b-1")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"version":3`)
	})

	t.Run("other company", func(t *testing.T) {
		p := new(MockBudgetProvider)
		p.On("GetBudget", mock.Anything, companyID, "b-2").Return(nil, storage.ErrBudgetNotFound)

		rr := serve(GetBudget(slog.Default(), p), "/api/budgets/{id}", "/api/budgets/b-2")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
