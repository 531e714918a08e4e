package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"finance-tracker/internal/middleware"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler produces CSV and XLSX downloads of the user's transactions.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

type exportRow struct {
	ID           uint
	CategoryName string
	Kind         string
	Amount       decimal.Decimal
	Description  string
	OccurredAt   time.Time
}

func (h *ExportHandler) ownedRows(ownerID uint) ([]exportRow, error) {
	var rows []exportRow
	err := h.DB.Table("transactions").
		Select("transactions.id, categories.name AS category_name, categories.kind, transactions.amount, transactions.description, transactions.occurred_at").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.owner_id = ?", ownerID).
		Order("transactions.occurred_at DESC").
		Scan(&rows).Error
	return rows, err
}

var exportHeaders = []string{"ID", "Category", "Kind", "Amount", "Description", "Date"}

// ExportCSV streams the transaction list as a CSV download.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	rows, err := h.ownedRows(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "export query failed")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM so spreadsheet apps detect the encoding
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write([]string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.CategoryName,
			r.Kind,
			r.Amount.StringFixed(2),
			r.Description,
			r.OccurredAt.Format(time.RFC3339),
		})
	}
}

// ExportXLSX writes the transaction list as a spreadsheet download.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	rows, err := h.ownedRows(user.ID)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "export query failed")
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "create sheet failed")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx, r := range rows {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.CategoryName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Kind)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Amount.StringFixed(2))
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.OccurredAt.Format("2006-01-02"))
	}

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "C", 15)
	f.SetColWidth(sheetName, "D", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, "export failed")
	}
}
