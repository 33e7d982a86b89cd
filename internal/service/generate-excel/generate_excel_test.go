package generate_excel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

const companyID = "7c1e3f9a-5b44-4b6e-9f0a-2d7a1c3e8b10"

type MockReportStorage struct {
	mock.Mock
}

func (m *MockReportStorage) GetCompany(ctx context.Context, id string) (*storage.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Company), args.Error(1)
}

func (m *MockReportStorage) ListBudgets(ctx context.Context, companyID string, filter storage.BudgetFilter) ([]storage.Budget, error) {
	args := m.Called(ctx, companyID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Budget), args.Error(1)
}

func money(s string) calculate.Money {
	return calculate.NewMoney(decimal.RequireFromString(s))
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, name string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestGenerateExcel(t *testing.T) {
	created := time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC)
	st := new(MockReportStorage)
	st.On("GetCompany", mock.Anything, companyID).Return(&storage.Company{ID: companyID, Name: "Construtora Alfa"}, nil)
	st.On("ListBudgets", mock.Anything, companyID, storage.BudgetFilter{Status: storage.StatusApproved}).Return([]storage.Budget{
		{Name: "Casa", ClientName: "Maria", Status: storage.StatusApproved, Version: 2, Currency: "BRL",
			Subtotal: money("570"), ProfitAmount: money("114"), TaxAmount: money("123.12"), Total: money("807.12"), CreatedAt: created},
		{Name: "Muro", ClientName: "João", Status: storage.StatusApproved, Version: 1, Currency: "BRL",
			Subtotal: money("100"), ProfitAmount: money("20"), TaxAmount: money("21.6"), Total: money("141.6"), CreatedAt: created},
	}, nil)

	data, err := NewGenerateService(st).GenerateExcel(context.Background(), companyID, storage.BudgetFilter{Status: storage.StatusApproved})
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, "Construtora Alfa", cell(t, f, "A1"))
	assert.Equal(t, "Orçamento", cell(t, f, "A3"))
	assert.Equal(t, "Casa", cell(t, f, "A4"))
	assert.Equal(t, "Aprovado", cell(t, f, "C4"))
	assert.Equal(t, "807.12", cell(t, f, "I4"))
	assert.Equal(t, "2026-10-01 14:30", cell(t, f, "J4"))
	assert.Equal(t, "Muro", cell(t, f, "A5"))
	assert.Equal(t, "Total", cell(t, f, "A6"))

	formula, err := f.GetCellFormula(sheet, "I6")
	require.NoError(t, err)
	assert.Equal(t, "SUM(I4:I5)", formula)
}

func TestGenerateExcel_NoBudgets(t *testing.T) {
	st := new(MockReportStorage)
	st.On("GetCompany", mock.Anything, companyID).Return(&storage.Company{ID: companyID, Name: "Alfa"}, nil)
	st.On("ListBudgets", mock.Anything, companyID, storage.BudgetFilter{}).Return([]storage.Budget{}, nil)

	data, err := NewGenerateService(st).GenerateExcel(context.Background(), companyID, storage.BudgetFilter{})
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, "Total", cell(t, f, "A4"))
	formula, err := f.GetCellFormula(sheet, "F4")
	require.NoError(t, err)
	assert.Equal(t, "0", formula)
}

func TestGenerateExcel_UnknownCompany(t *testing.T) {
	st := new(MockReportStorage)
	st.On("GetCompany", mock.Anything, companyID).Return(nil, storage.ErrCompanyNotFound)
	st.On("ListBudgets", mock.Anything, companyID, storage.BudgetFilter{}).Return([]storage.Budget{}, nil).Maybe()

	_, err := NewGenerateService(st).GenerateExcel(context.Background(), companyID, storage.BudgetFilter{})
	assert.ErrorIs(t, err, storage.ErrCompanyNotFound)
}
