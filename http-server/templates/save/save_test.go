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

type MockTemplateCreator struct {
	mock.Mock
}

func (m *MockTemplateCreator) CreateTemplate(ctx context.Context, companyID string, in service.TemplateInput) (*storage.Template, error) {
	args := m.Called(ctx, companyID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Template), args.Error(1)
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/templates", strings.NewReader(body))
	req = req.WithContext(tenant.WithCompanyID(req.Context(), companyID))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSaveTemplate_Categories(t *testing.T) {
	c := new(MockTemplateCreator)
	c.On("CreateTemplate", mock.Anything, companyID, mock.MatchedBy(func(in service.TemplateInput) bool {
		return in.Name == "Obra" &&
			len(in.Categories) == 1 &&
			in.Categories[0].Fields[0].DefaultUnitCost.String() == "35" &&
			in.IsActive == nil
	})).Return(&storage.Template{Template: calculate.Template{ID: "tpl-1", Name: "Obra"}}, nil)

	rr := post(SaveTemplate(slog.Default(), c), `{
		"name": "Obra",
		"categories": [{
			"id": "materiais", "name": "Materiais", "order": 1,
			"fields": [{"label": "Cimento", "type": "number", "required": true, "default_unit_cost": 35}]
		}]
	}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"tpl-1"`)
	c.AssertExpectations(t)
}

func TestSaveTemplate_LegacyFieldsAccepted(t *testing.T) {
	c := new(MockTemplateCreator)
	c.On("CreateTemplate", mock.Anything, companyID, mock.MatchedBy(func(in service.TemplateInput) bool {
		return len(in.Categories) == 0 && len(in.Fields) == 1
	})).Return(&storage.Template{Template: calculate.Template{ID: "tpl-2"}}, nil)

	rr := post(SaveTemplate(slog.Default(), c), `{"name":"Pintura","fields":[{"label":"Tinta","type":"number"}]}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	c.AssertExpectations(t)
}

func TestSaveTemplate_NeedsCategoriesOrFields(t *testing.T) {
	c := new(MockTemplateCreator)

	rr := post(SaveTemplate(slog.Default(), c), `{"name":"Vazio"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	c.AssertNotCalled(t, "CreateTemplate", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveTemplate_SchemaProblems(t *testing.T) {
	c := new(MockTemplateCreator)
	c.On("CreateTemplate", mock.Anything, companyID, mock.Anything).Return(nil, &calculate.SchemaError{
		Problems: []string{"duplicate order 1", "duplicate label Cimento"},
	})

	rr := post(SaveTemplate(slog.Default(), c), `{"name":"x","categories":[{"id":"a"}]}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "duplicate order 1")
	assert.Contains(t, rr.Body.String(), "duplicate label Cimento")
}
