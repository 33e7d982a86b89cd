package get

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"budget-api/internal/storage"
)

type MockCompanyLister struct {
	mock.Mock
}

func (m *MockCompanyLister) ListCompanies(ctx context.Context) ([]storage.Company, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Company), args.Error(1)
}

func TestGetCompaniesAdmin(t *testing.T) {
	l := new(MockCompanyLister)
	l.On("ListCompanies", mock.Anything).Return([]storage.Company{
		{ID: "c-1", Name: "Alfa", Email: "obra@alfa.com.br"},
		{ID: "c-2", Name: "Beta", Email: "contato@beta.com.br"},
	}, nil)

	rr := httptest.NewRecorder()
	GetCompaniesAdmin(slog.Default(), l).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/companies", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Alfa"`)
	assert.Contains(t, rr.Body.String(), `"name":"Beta"`)
}

func TestGetCompaniesAdmin_Empty(t *testing.T) {
	l := new(MockCompanyLister)
	l.On("ListCompanies", mock.Anything).Return(nil, nil)

	rr := httptest.NewRecorder()
	GetCompaniesAdmin(slog.Default(), l).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin/companies", nil))

	assert.JSONEq(t, `{"success":true,"data":[]}`, rr.Body.String())
}
