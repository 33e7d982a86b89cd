package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"budget-api/internal/storage"
)

const sheet = "Orçamentos"

type ReportStorage interface {
	GetCompany(ctx context.Context, id string) (*storage.Company, error)
	ListBudgets(ctx context.Context, companyID string, filter storage.BudgetFilter) ([]storage.Budget, error)
}

type GenerateExcelService struct {
	storage ReportStorage
}

func NewGenerateService(storage ReportStorage) *GenerateExcelService {
	return &GenerateExcelService{storage: storage}
}

var headers = []string{
	"Orçamento", "Cliente", "Status", "Versão", "Moeda",
	"Subtotal", "Lucro", "Impostos", "Total", "Criado em",
}

// first and last money columns, 1-based
const (
	moneyFrom = 6
	moneyTo   = 9
)

// GenerateExcel builds an XLSX listing of the company's budgets with a totals
// row summing the money columns.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, companyID string, filter storage.BudgetFilter) ([]byte, error) {
	const op = "service.generate_excel.GenerateExcel"

	var (
		company *storage.Company
		budgets []storage.Budget
	)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		company, err = g.storage.GetCompany(gctx, companyID)
		return err
	})
	eg.Go(func() error {
		var err error
		budgets, err = g.storage.ListBudgets(gctx, companyID, filter)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("%s: fetch data: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: header style: %w", op, err)
	}
	// built-in format 4 is #,##0.00
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("%s: money style: %w", op, err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("%s: total style: %w", op, err)
	}

	f.SetCellValue(sheet, "A1", company.Name)
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	const headerRow = 3
	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, headerRow), name)
	}
	f.SetCellStyle(sheet, cellName(1, headerRow), cellName(len(headers), headerRow), headerStyle)

	row := headerRow
	for _, b := range budgets {
		row++
		f.SetCellValue(sheet, cellName(1, row), b.Name)
		f.SetCellValue(sheet, cellName(2, row), b.ClientName)
		f.SetCellValue(sheet, cellName(3, row), statusLabel(b.Status))
		f.SetCellValue(sheet, cellName(4, row), b.Version)
		f.SetCellValue(sheet, cellName(5, row), b.Currency)
		f.SetCellValue(sheet, cellName(6, row), b.Subtotal.InexactFloat64())
		f.SetCellValue(sheet, cellName(7, row), b.ProfitAmount.InexactFloat64())
		f.SetCellValue(sheet, cellName(8, row), b.TaxAmount.InexactFloat64())
		f.SetCellValue(sheet, cellName(9, row), b.Total.InexactFloat64())
		f.SetCellValue(sheet, cellName(10, row), b.CreatedAt.Format("2006-01-02 15:04"))
	}
	if row > headerRow {
		f.SetCellStyle(sheet, cellName(moneyFrom, headerRow+1), cellName(moneyTo, row), moneyStyle)
	}

	totalRow := row + 1
	f.SetCellValue(sheet, cellName(1, totalRow), "Total")
	for col := moneyFrom; col <= moneyTo; col++ {
		formula := "0"
		if row > headerRow {
			formula = fmt.Sprintf("SUM(%s:%s)", cellName(col, headerRow+1), cellName(col, row))
		}
		f.SetCellFormula(sheet, cellName(col, totalRow), formula)
	}
	f.SetCellStyle(sheet, cellName(1, totalRow), cellName(moneyTo, totalRow), totalStyle)

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: cellName(1, headerRow+1),
		ActivePane:  "bottomLeft",
	})
	f.SetColWidth(sheet, "A", "B", 28)
	f.SetColWidth(sheet, "C", "J", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: write: %w", op, err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func statusLabel(s storage.BudgetStatus) string {
	switch s {
	case storage.StatusDraft:
		return "Rascunho"
	case storage.StatusSent:
		return "Enviado"
	case storage.StatusApproved:
		return "Aprovado"
	case storage.StatusRejected:
		return "Rejeitado"
	default:
		return string(s)
	}
}
