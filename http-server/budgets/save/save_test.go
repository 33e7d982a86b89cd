package save

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"budget-api/internal/middleware/tenant"
	"budget-api/internal/service"
	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

const companyID = "7c1e3f9a-5b44-4b6e-9f0a-2d7a1c3e8b10"

type MockBudgetCreator struct {
	mock.Mock
}

func (m *MockBudgetCreator) CreateBudget(ctx context.Context, companyID string, in service.NewBudget) (*storage.Budget, error) {
	args := m.Called(ctx, companyID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Budget), args.Error(1)
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/budgets", strings.NewReader(body))
	req = req.WithContext(tenant.WithCompanyID(req.Context(), companyID))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSaveBudget_Created(t *testing.T) {
	c := new(MockBudgetCreator)
	c.On("CreateBudget", mock.Anything, companyID, mock.MatchedBy(func(in service.NewBudget) bool {
		return in.TemplateID == "tpl-1" && in.Name == "Reforma" && strings.Contains(string(in.Items), "Cimento")
	})).Return(&storage.Budget{ID: "b-1", Name: "Reforma", Status: storage.StatusDraft, Version: 1}, nil)

	rr := post(SaveBudget(slog.Default(), c), `{
		"template_id": "tpl-1",
		"name": "Reforma",
		"items": {"Cimento": {"value": 10, "unit_cost": 35}}
	}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"draft"`)
	c.AssertExpectations(t)
}

func TestSaveBudget_MissingName(t *testing.T) {
	c := new(MockBudgetCreator)

	rr := post(SaveBudget(slog.Default(), c), `{"template_id":"tpl-1","items":[]}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "field Name is required")
	c.AssertNotCalled(t, "CreateBudget", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveBudget_SchemaError(t *testing.T) {
	c := new(MockBudgetCreator)
	c.On("CreateBudget", mock.Anything, companyID, mock.Anything).
		Return(nil, &calculate.SchemaError{Problems: []string{`unknown category "portas"`}})

	rr := post(SaveBudget(slog.Default(), c), `{"template_id":"tpl-1","name":"x","items":[{"category_id":"portas","field_values":{}}]}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "portas")
}
