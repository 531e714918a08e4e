package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"finance-tracker/internal/middleware"
	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves category CRUD. Every query is scoped to the owner;
// a category that exists under another user is indistinguishable from one
// that does not exist at all.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type categoryReq struct {
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind" binding:"required"`
}

func (r *categoryReq) validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if err := util.ValidateCategoryName(r.Name); err != nil {
		return err
	}
	return util.ValidateKind(r.Kind)
}

// parseID reads the :id path parameter. An unparsable id cannot name an owned
// record, so callers treat it as not found.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// getOwnedCategory fetches one category constrained to its owner.
func getOwnedCategory(db *gorm.DB, ownerID, id uint) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ? AND owner_id = ?", id, ownerID).
		First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (h *CategoryHandler) Create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, "invalid category payload")
		return
	}
	if err := req.validate(); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	category := models.Category{
		Name:    req.Name,
		Kind:    req.Kind,
		OwnerID: user.ID,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "create category failed")
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) List(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	categories := make([]models.Category, 0)
	if err := h.DB.Where("owner_id = ?", user.ID).
		Order("id ASC").
		Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "list categories failed")
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseID(c)
	if !ok {
		util.Error(c, http.StatusNotFound, "Category not found")
		return
	}

	category, err := getOwnedCategory(h.DB, user.ID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "fetch category failed")
		}
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseID(c)
	if !ok {
		util.Error(c, http.StatusNotFound, "Category not found")
		return
	}

	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, "invalid category payload")
		return
	}
	if err := req.validate(); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// ownership check and write share one transaction so the mutated row is
	// the row that was checked
	var category *models.Category
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		category, txErr = getOwnedCategory(tx, user.ID, id)
		if txErr != nil {
			return txErr
		}
		category.Name = req.Name
		category.Kind = req.Kind
		return tx.Save(category).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "update category failed")
		}
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}

	id, ok := parseID(c)
	if !ok {
		util.Error(c, http.StatusNotFound, "Category not found")
		return
	}

	// the category's transactions go with it, in the same commit
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		category, txErr := getOwnedCategory(tx, user.ID, id)
		if txErr != nil {
			return txErr
		}
		if txErr := tx.Where("category_id = ? AND owner_id = ?", category.ID, user.ID).
			Delete(&models.Transaction{}).Error; txErr != nil {
			return txErr
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "Category not found")
		} else {
			util.Error(c, http.StatusInternalServerError, "delete category failed")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
