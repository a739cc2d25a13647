package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/Homesapp/HomesappNew-sub000/internal/models"
	"github.com/Homesapp/HomesappNew-sub000/internal/store"
	"github.com/Homesapp/HomesappNew-sub000/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出财务台账（CSV / XLSX），过滤条件与列表接口一致
type ExportHandler struct {
	Stores *store.Stores
}

func NewExportHandler(stores *store.Stores) *ExportHandler {
	return &ExportHandler{Stores: stores}
}

var exportHeaders = []string{
	"ID", "Direction", "Category", "Status", "Gross", "Fees", "Net", "Currency",
	"Due date", "Performed date", "Payer", "Payee role", "Reference", "Contract", "Payment", "Description",
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

func strCell(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func exportRow(e *models.FinancialTransaction) []string {
	return []string{
		e.ID,
		string(e.Direction),
		string(e.Category),
		string(e.Status),
		e.GrossAmount.StringFixed(2),
		e.Fees.StringFixed(2),
		e.NetAmount.StringFixed(2),
		e.Currency,
		dateCell(e.DueDate),
		dateCell(e.PerformedDate),
		e.PayerName,
		e.PayeeRole,
		e.PaymentReference,
		strCell(e.ContractID),
		strCell(e.PaymentID),
		e.Description,
	}
}

func (h *ExportHandler) load(c *gin.Context) ([]models.FinancialTransaction, bool) {
	agencyID, ok := currentAgency(c)
	if !ok {
		return nil, false
	}
	f, err := ledgerFilter(c, 0)
	if err != nil {
		util.Fail(c, err)
		return nil, false
	}
	entries, err := h.Stores.Ledger.ListAll(c.Request.Context(), agencyID, f)
	if err != nil {
		util.Fail(c, err)
		return nil, false
	}
	return entries, true
}

// ExportCSV GET /ledger/export/csv 导出 CSV（带 BOM，Excel 可直接打开）
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	entries, ok := h.load(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.csv\"",
		time.Now().Format("20060102")))
	c.Status(http.StatusOK)

	// UTF-8 BOM（让 Excel 正确识别）
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write(exportHeaders)
	for i := range entries {
		_ = writer.Write(exportRow(&entries[i]))
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = c.Error(err)
	}
}

// ExportXLSX GET /ledger/export/xlsx 导出 Excel，金额列为数值
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	entries, ok := h.load(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ledger"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	// 表头
	for i, title := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
	}

	// 数据行；金额列写成数字，方便在 Excel 中求和
	for idx := range entries {
		e := &entries[idx]
		row := idx + 2
		for col, v := range exportRow(e) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			switch col {
			case 4:
				_ = f.SetCellValue(sheetName, cell, e.GrossAmount.InexactFloat64())
			case 5:
				_ = f.SetCellValue(sheetName, cell, e.Fees.InexactFloat64())
			case 6:
				_ = f.SetCellValue(sheetName, cell, e.NetAmount.InexactFloat64())
			default:
				_ = f.SetCellValue(sheetName, cell, v)
			}
		}
	}

	// 列宽
	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "D", 14)
	_ = f.SetColWidth(sheetName, "E", "G", 12)
	_ = f.SetColWidth(sheetName, "I", "J", 12)
	_ = f.SetColWidth(sheetName, "K", "K", 24)
	_ = f.SetColWidth(sheetName, "P", "P", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
