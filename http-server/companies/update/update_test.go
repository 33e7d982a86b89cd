package update

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

type MockSettingsUpdater struct {
	mock.Mock
}

func (m *MockSettingsUpdater) UpdateSettings(ctx context.Context, id string, in service.SettingsInput) (*storage.Company, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Company), args.Error(1)
}

func patch(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/companies/settings", strings.NewReader(body))
	req = req.WithContext(tenant.WithCompanyID(req.Context(), companyID))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestUpdateSettings_Partial(t *testing.T) {
	u := new(MockSettingsUpdater)
	u.On("UpdateSettings", mock.Anything, companyID, mock.MatchedBy(func(in service.SettingsInput) bool {
		return in.Currency == nil && in.ProfitMargin == nil && in.TaxRate != nil && in.TaxRate.String() == "0.12"
	})).Return(&storage.Company{ID: companyID}, nil)

	rr := patch(UpdateSettings(slog.Default(), u), `{"tax_rate": 0.12}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	u.AssertExpectations(t)
}

func TestUpdateSettings_BadCurrency(t *testing.T) {
	u := new(MockSettingsUpdater)

	rr := patch(UpdateSettings(slog.Default(), u), `{"currency": "REAL"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	u.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSettings_RateOutOfRange(t *testing.T) {
	u := new(MockSettingsUpdater)
	u.On("UpdateSettings", mock.Anything, companyID, mock.Anything).Return(nil, &calculate.ValidationError{
		Violations: []calculate.Violation{{Field: "tax_rate", Reason: calculate.ReasonPolicyRange}},
	})

	rr := patch(UpdateSettings(slog.Default(), u), `{"tax_rate": 1.5}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "tax_rate")
}
