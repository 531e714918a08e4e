package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"finance-tracker/internal/middleware"
	"finance-tracker/internal/models"
	"finance-tracker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves registration, login and the current-user endpoint.
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlMinutes, bcryptCost int) *AuthHandler {
	if ttlMinutes <= 0 {
		ttlMinutes = int(util.DefaultTokenTTL / time.Minute)
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		TokenTTL:   time.Duration(ttlMinutes) * time.Minute,
		BcryptCost: bcryptCost,
	}
}

type registerReq struct {
	Login    string `json:"login" binding:"required,max=100"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"max=200"`
	Disabled bool   `json:"disabled"`
}

// Register creates a new user. The login is immutable once taken; a duplicate
// registers as a plain 400, not a hint about the existing account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, "invalid registration payload")
		return
	}

	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" {
		util.Error(c, http.StatusUnprocessableEntity, "login is empty")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).
		Where("login = ?", req.Login).
		Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "lookup user failed")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, "User already exists")
		return
	}

	hash, err := util.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "hash password failed")
		return
	}

	user := models.User{
		Login:        req.Login,
		FullName:     req.FullName,
		PasswordHash: hash,
		Disabled:     req.Disabled,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "create user failed")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login exchanges form credentials (username, password) for a bearer token.
// Unknown login and wrong password answer identically; a disabled account is
// only reported after the credentials matched.
func (h *AuthHandler) Login(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	if username == "" || password == "" {
		util.Error(c, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	var user models.User
	if err := h.DB.Where("login = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Unauthorized(c, "Incorrect username or password")
		} else {
			util.Error(c, http.StatusInternalServerError, "lookup user failed")
		}
		return
	}

	if !util.CheckPassword(password, user.PasswordHash) {
		util.Unauthorized(c, "Incorrect username or password")
		return
	}

	if user.Disabled {
		util.Error(c, http.StatusBadRequest, "Inactive user")
		return
	}

	token, err := util.GenerateToken(h.JWTSecret, user.Login, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "generate token failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// GetMe returns the authenticated user's profile.
func GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Unauthorized(c, "Not authenticated")
		return
	}
	c.JSON(http.StatusOK, user)
}
