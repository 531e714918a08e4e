package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"finance-tracker/internal/config"
	"finance-tracker/internal/database"
	"finance-tracker/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "handler-test-secret"

// newTestRouter wires the full route table against a fresh in-memory database.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// a unique shared-cache DSN keeps the database alive across the pool's
	// connections but isolated between tests
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	cfg := &config.Config{
		Server:   config.ServerConfig{Mode: gin.TestMode},
		JWT:      config.JWTConfig{Secret: testJWTSecret, ExpireMinutes: 30},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
	return router.SetupRouter(cfg, db)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(t *testing.T, r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

type userResp struct {
	ID       uint   `json:"id"`
	Login    string `json:"login"`
	FullName string `json:"full_name"`
	Disabled bool   `json:"disabled"`
}

type categoryResp struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	OwnerID uint   `json:"owner_id"`
}

type transactionResp struct {
	ID          uint            `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	OccurredAt  time.Time       `json:"occurred_at"`
	OwnerID     uint            `json:"owner_id"`
	CategoryID  uint            `json:"category_id"`
}

type summaryRowResp struct {
	CategoryID   uint            `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Kind         string          `json:"kind"`
	Total        decimal.Decimal `json:"total"`
}

type summaryResp struct {
	IncomeTotal  decimal.Decimal  `json:"income_total"`
	ExpenseTotal decimal.Decimal  `json:"expense_total"`
	Rows         []summaryRowResp `json:"rows"`
}

func registerUser(t *testing.T, r *gin.Engine, login, password string, disabled bool) userResp {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/auth/register", "", gin.H{
		"login":    login,
		"password": password,
		"disabled": disabled,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user userResp
	decode(t, w, &user)
	return user
}

func loginUser(t *testing.T, r *gin.Engine, login, password string) string {
	t.Helper()

	w := doForm(t, r, "/auth/token", url.Values{
		"username": {login},
		"password": {password},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decode(t, w, &body)
	require.Equal(t, "bearer", body.TokenType)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

// registerAndLogin is the common two-step setup for authenticated tests.
func registerAndLogin(t *testing.T, r *gin.Engine, login string) string {
	t.Helper()
	registerUser(t, r, login, "secret1", false)
	return loginUser(t, r, login, "secret1")
}

func createCategory(t *testing.T, r *gin.Engine, token, name, kind string) categoryResp {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/categories", token, gin.H{
		"name": name,
		"kind": kind,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var category categoryResp
	decode(t, w, &category)
	return category
}

func createTransaction(t *testing.T, r *gin.Engine, token, amount string, categoryID uint, occurredAt *time.Time) transactionResp {
	t.Helper()

	body := gin.H{
		"amount":      amount,
		"category_id": categoryID,
	}
	if occurredAt != nil {
		body["occurred_at"] = occurredAt.Format(time.RFC3339)
	}
	w := doJSON(t, r, http.MethodPost, "/transactions", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var tx transactionResp
	decode(t, w, &tx)
	return tx
}
