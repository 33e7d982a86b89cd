package calculate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchema_SortsCategoriesAndFields(t *testing.T) {
	s := mustSchema(t, twoCategoryTemplate())

	cats := s.Categories()
	require.Len(t, cats, 2)
	assert.Equal(t, "cat-mat", cats[0].ID)
	assert.Equal(t, "cat-srv", cats[1].ID)

	pos, err := s.Position("cat-srv")
	require.NoError(t, err)
	assert.Equal(t, 1, pos)

	fields, err := s.Fields("cat-mat")
	require.NoError(t, err)
	assert.Equal(t, "Cimento", fields[0].Label)
	assert.Equal(t, "Areia", fields[1].Label)
}

func TestNewSchema_DoesNotMutateInput(t *testing.T) {
	tpl := twoCategoryTemplate()
	mustSchema(t, tpl)

	assert.Equal(t, "cat-srv", tpl.Categories[0].ID)
}

func TestNewSchema_CollectsProblems(t *testing.T) {
	tpl := twoCategoryTemplate()
	tpl.Strategy = "artesanal"
	tpl.Categories[0].Order = 0
	tpl.Categories[1].Fields[1].Type = "moeda"
	tpl.Categories[1].Fields[0].DefaultUnitCost = dec("-1")

	_, err := NewSchema(tpl)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Len(t, se.Problems, 4)
	assert.Contains(t, se.Error(), "mesma ordem")
	assert.Contains(t, se.Error(), "artesanal")
}

func TestNewSchema_DefaultUnitCostOutOfRange(t *testing.T) {
	tpl := twoCategoryTemplate()
	tpl.Categories[1].Fields[1].DefaultUnitCost = dec("1e30")

	_, err := NewSchema(tpl)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{`custo unitário padrão fora do limite no campo "Areia"`}, se.Problems)
}

func TestNewSchema_DuplicateCategoryID(t *testing.T) {
	tpl := twoCategoryTemplate()
	tpl.Categories[1].ID = "cat-srv"

	_, err := NewSchema(tpl)

	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "identificador de categoria duplicado")
}

func TestSchema_Strategy(t *testing.T) {
	tpl := twoCategoryTemplate()
	assert.Equal(t, StrategyDefault, mustSchema(t, tpl).Strategy())

	tpl.Strategy = StrategyIndustrial
	assert.Equal(t, StrategyIndustrial, mustSchema(t, tpl).Strategy())
}

func TestSchema_ResolveField(t *testing.T) {
	s := mustSchema(t, twoCategoryTemplate())

	byID, err := s.ResolveField("cat-mat", "f-areia")
	require.NoError(t, err)
	assert.Equal(t, "Areia", byID.Label)

	byLabel, err := s.ResolveField("cat-mat", "Areia")
	require.NoError(t, err)
	assert.Equal(t, byID, byLabel)

	_, err = s.ResolveField("cat-mat", "Horas")
	var se *SchemaError
	require.ErrorAs(t, err, &se)

	_, err = s.ResolveField("cat-x", "Areia")
	require.ErrorAs(t, err, &se)
}

func TestSchema_FieldByLabel(t *testing.T) {
	s := mustSchema(t, twoCategoryTemplate())

	f, err := s.FieldByLabel("cat-srv", "Horas")
	require.NoError(t, err)
	assert.Equal(t, "f-horas", f.ID)
	assert.True(t, f.Required)

	_, err = s.FieldByLabel("cat-srv", "f-horas")
	assert.Error(t, err)
}

func TestFieldType_Numeric(t *testing.T) {
	assert.True(t, FieldNumber.Numeric())
	assert.True(t, FieldCalculated.Numeric())
	assert.False(t, FieldText.Numeric())
	assert.False(t, FieldBoolean.Numeric())
}
