package handler

import (
	"errors"
	"net/http"
	"time"

	"finance-tracker/internal/middleware"
	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionHandler serves transaction CRUD and the per-category summary.
type TransactionHandler struct {
	DB *gorm.DB
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{DB: db}
}

type transactionReq struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=2000"`
	OccurredAt  *time.Time      `json:"occurred_at"`
	CategoryID  uint            `json:"category_id" binding:"required"`
}

// getOwnedTransaction fetches one transaction constrained to its owner.
func getOwnedTransaction(db *gorm.DB, ownerID, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := db.Where("id = ? AND owner_id = ?", id, ownerID).
		First(&tx).Error; err != nil {
		return nil, err
	}
	return &tx, nil
}

func (h *TransactionHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, "invalid transaction payload")
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// the category must exist under the same owner, otherwise it does not
	// exist as far as this user is concerned
	if _, err := getOwnedCategory(h.DB, user.ID, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "fetch category failed")
		}
		return
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	tx := models.Transaction{
		Amount:      req.Amount,
		Description: req.Description,
		OccurredAt:  occurredAt,
		OwnerID:     user.ID,
		CategoryID:  req.CategoryID,
	}
	if err := h.DB.Create(&tx).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "create transaction failed")
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// List returns the user's transactions, most recent first. The descending
// occurred_at order is part of the API contract.
func (h *TransactionHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	txs := make([]models.Transaction, 0)
	if err := h.DB.Where("owner_id = ?", user.ID).
		Order("occurred_at DESC").
		Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "list transactions failed")
		return
	}

	c.JSON(http.StatusOK, txs)
}

func (h *TransactionHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseID(c)
	if !ok {
		util.Error(c, http.StatusNotFound, "Transaction not found")
		return
	}

	tx, err := getOwnedTransaction(h.DB, user.ID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "fetch transaction failed")
		}
		return
	}

	c.JSON(http.StatusOK, tx)
}

func (h *TransactionHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseID(c)
	if !ok {
		util.Error(c, http.StatusNotFound, "Transaction not found")
		return
	}

	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, "invalid transaction payload")
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	occurredAt := time.Now()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}

	var tx *models.Transaction
	var notFoundDetail string
	err := h.DB.Transaction(func(dbtx *gorm.DB) error {
		var txErr error
		tx, txErr = getOwnedTransaction(dbtx, user.ID, id)
		if txErr != nil {
			notFoundDetail = "Transaction not found"
			return txErr
		}
		// the new category gets the same ownership check as on create
		if _, txErr = getOwnedCategory(dbtx, user.ID, req.CategoryID); txErr != nil {
			notFoundDetail = "Category not found"
			return txErr
		}
		tx.Amount = req.Amount
		tx.Description = req.Description
		tx.OccurredAt = occurredAt
		tx.CategoryID = req.CategoryID
		return dbtx.Save(tx).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, notFoundDetail)
		} else {
			util.Error(c, http.StatusInternalServerError, "update transaction failed")
		}
		return
	}

	c.JSON(http.StatusOK, tx)
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseID(c)
	if !ok {
		util.Error(c, http.StatusNotFound, "Transaction not found")
		return
	}

	err := h.DB.Transaction(func(dbtx *gorm.DB) error {
		tx, txErr := getOwnedTransaction(dbtx, user.ID, id)
		if txErr != nil {
			return txErr
		}
		return dbtx.Delete(tx).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Transaction not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "delete transaction failed")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

type summaryRow struct {
	CategoryID   uint            `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Kind         string          `json:"kind"`
	Total        decimal.Decimal `json:"total"`
}

type summaryResp struct {
	IncomeTotal  decimal.Decimal `json:"income_total"`
	ExpenseTotal decimal.Decimal `json:"expense_total"`
	Rows         []summaryRow    `json:"rows"`
}

// Summary returns one row per owned category with the sum of its transaction
// amounts, plus overall income and expense totals. Categories without
// transactions appear with a zero total. The sums are computed with decimal
// arithmetic; SQLite's SUM would round-trip the amounts through float.
func (h *TransactionHandler) Summary(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	var categories []models.Category
	if err := h.DB.Where("owner_id = ?", user.ID).
		Order("id ASC").
		Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "list categories failed")
		return
	}

	var txs []models.Transaction
	if err := h.DB.Where("owner_id = ?", user.ID).
		Find(&txs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "list transactions failed")
		return
	}

	totals := make(map[uint]decimal.Decimal, len(categories))
	for i := range txs {
		totals[txs[i].CategoryID] = totals[txs[i].CategoryID].Add(txs[i].Amount)
	}

	resp := summaryResp{Rows: make([]summaryRow, 0, len(categories))}
	for _, cat := range categories {
		total := totals[cat.ID]
		switch cat.Kind {
		case models.KindIncome:
			resp.IncomeTotal = resp.IncomeTotal.Add(total)
		case models.KindExpense:
			resp.ExpenseTotal = resp.ExpenseTotal.Add(total)
		}
		resp.Rows = append(resp.Rows, summaryRow{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Kind:         cat.Kind,
			Total:        total,
		})
	}

	c.JSON(http.StatusOK, resp)
}
