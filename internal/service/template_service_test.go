package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

func TestCreateTemplate_AdaptsLegacyFields(t *testing.T) {
	st := new(MockStorage)
	st.On("CreateTemplate", mock.Anything, mock.Anything).Return(nil)

	tpl, err := newService(st).CreateTemplate(context.Background(), companyID, TemplateInput{
		Name: "Pintura",
		Fields: []calculate.Field{
			{Label: "Tinta", Type: calculate.FieldNumber, Required: true, DefaultUnitCost: dec("40")},
			{Label: "Cor", Type: calculate.FieldSelect},
		},
	})
	require.NoError(t, err)

	require.Len(t, tpl.Categories, 1)
	assert.Equal(t, "Geral", tpl.Categories[0].Name)
	assert.False(t, tpl.Categories[0].IsRepeatable)
	require.Len(t, tpl.Categories[0].Fields, 2)
	assert.Equal(t, "generated-id", tpl.Categories[0].Fields[0].ID)
	assert.True(t, tpl.IsActive)
	assert.Equal(t, companyID, tpl.CompanyID)
	st.AssertExpectations(t)
}

func TestCreateTemplate_RejectsBrokenSchema(t *testing.T) {
	st := new(MockStorage)

	_, err := newService(st).CreateTemplate(context.Background(), companyID, TemplateInput{
		Name: "Quebrado",
		Categories: []calculate.Category{
			{ID: "a", Name: "A", Order: 1},
			{ID: "b", Name: "B", Order: 1},
		},
	})

	var se *calculate.SchemaError
	require.ErrorAs(t, err, &se)
	st.AssertNotCalled(t, "CreateTemplate", mock.Anything, mock.Anything)
}

func TestUpdateTemplate_InvalidatesCache(t *testing.T) {
	st := new(MockStorage)
	st.On("GetTemplate", mock.Anything, companyID, templateID).Return(materialsTemplate(), nil)
	st.On("UpdateTemplate", mock.Anything, mock.MatchedBy(func(tpl *storage.Template) bool {
		return tpl.Name == "Obra 2" && tpl.IsActive
	})).Return(nil)
	cache := new(MockCache)
	cache.On("InvalidateTemplate", mock.Anything, companyID, templateID).Return(nil)

	tpl := materialsTemplate()
	_, err := newService(st, WithCache(cache)).UpdateTemplate(context.Background(), companyID, templateID, TemplateInput{
		Name:       "Obra 2",
		Categories: tpl.Categories,
	})
	require.NoError(t, err)

	st.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestUpdateTemplate_NotFound(t *testing.T) {
	st := new(MockStorage)
	st.On("GetTemplate", mock.Anything, companyID, templateID).Return(nil, storage.ErrTemplateNotFound)

	_, err := newService(st).UpdateTemplate(context.Background(), companyID, templateID, TemplateInput{Name: "x"})
	assert.ErrorIs(t, err, storage.ErrTemplateNotFound)
}

func TestDeleteTemplate_InvalidatesCache(t *testing.T) {
	st := new(MockStorage)
	st.On("DeleteTemplate", mock.Anything, companyID, templateID).Return(nil)
	cache := new(MockCache)
	cache.On("InvalidateTemplate", mock.Anything, companyID, templateID).Return(nil)

	require.NoError(t, newService(st, WithCache(cache)).DeleteTemplate(context.Background(), companyID, templateID))
	cache.AssertExpectations(t)
}
