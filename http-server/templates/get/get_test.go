package get

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"budget-api/internal/middleware/tenant"
	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

const companyID = "7c1e3f9a-5b44-4b6e-9f0a-2d7a1c3e8b10"

// MockTemplateProvider implements TemplateProvider for tests.
type MockTemplateProvider struct {
	mock.Mock
}

func (m *MockTemplateProvider) GetTemplate(ctx context.Context, companyID, id string) (*storage.Template, error) {
	args := m.Called(ctx, companyID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Template), args.Error(1)
}

func (m *MockTemplateProvider) ListTemplates(ctx context.Context, companyID string, activeOnly bool) ([]storage.TemplateSummary, error) {
	args := m.Called(ctx, companyID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.TemplateSummary), args.Error(1)
}

func serve(pattern string, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Get(pattern, h)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(tenant.WithCompanyID(req.Context(), companyID))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestGetTemplates_ActiveOnly(t *testing.T) {
	p := new(MockTemplateProvider)
	p.On("ListTemplates", mock.Anything, companyID, true).Return([]storage.TemplateSummary{
		{ID: "tpl-1", Name: "Obra", IsActive: true, CategoryCount: 2},
	}, nil)

	rr := serve("/api/templates", GetTemplates(slog.Default(), p), "/api/templates?active=true")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"category_count":2`)
	p.AssertExpectations(t)
}

func TestGetTemplates_BadFlag(t *testing.T) {
	p := new(MockTemplateProvider)

	rr := serve("/api/templates", GetTemplates(slog.Default(), p), "/api/templates?active=maybe")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	p.AssertNotCalled(t, "ListTemplates", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetTemplate(t *testing.T) {
	p := new(MockTemplateProvider)
	p.On("GetTemplate", mock.Anything, companyID, "tpl-1").Return(&storage.Template{
		Template: calculate.Template{
			ID:   "tpl-1",
			Name: "Obra",
			Categories: []calculate.Category{
				{ID: "materiais", Name: "Materiais", Order: 1, Fields: []calculate.Field{
					{ID: "cimento", Label: "Cimento", Type: calculate.FieldNumber, Required: true},
				}},
			},
		},
	}, nil)

	rr := serve("/api/templates/{id}", GetTemplate(slog.Default(), p), "/api/templates/tpl-1")

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data storage.Template `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data.Categories, 1)
	assert.Equal(t, "Cimento", body.Data.Categories[0].Fields[0].Label)
}

func TestGetTemplate_NotFound(t *testing.T) {
	p := new(MockTemplateProvider)
	p.On("GetTemplate", mock.Anything, companyID, "nope").Return(nil, storage.ErrTemplateNotFound)

	rr := serve("/api/templates/{id}", GetTemplate(slog.Default(), p), "/api/templates/nope")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "template not found")
}
