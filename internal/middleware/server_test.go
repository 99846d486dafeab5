package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ratery_backend/pkg/contextkeys"
	"ratery_backend/test/helpers"
)

func getDBFromContext(t *testing.T, c *gin.Context) *gorm.DB {
	t.Helper()

	val, ok := c.Get(string(contextkeys.DBContextKey))
	require.True(t, ok, "DBMiddleware не положил db в контекст")

	db, ok := val.(*gorm.DB)
	require.True(t, ok, "в контексте лежит не *gorm.DB")
	return db
}

func TestDBMiddleware_PropagatesRequestDeadline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := helpers.NewTestDB(t)

	router := gin.New()
	router.Use(TimeoutMiddleware(10*time.Second), DBMiddleware(db))

	var hasDeadline bool
	router.GET("/ping", func(c *gin.Context) {
		reqDB := getDBFromContext(t, c)
		_, hasDeadline = reqDB.Statement.Context.Deadline()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	// Дедлайн запроса должен ограничивать и запросы к базе
	assert.True(t, hasDeadline)
}

func TestDBMiddleware_PrefersTransactionFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := helpers.NewTestDB(t)
	tx := db.Begin()
	defer tx.Rollback()

	router := gin.New()
	router.Use(DBMiddleware(db))

	var gotTx bool
	router.GET("/ping", func(c *gin.Context) {
		gotTx = getDBFromContext(t, c) == tx
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	ctx := context.WithValue(req.Context(), contextkeys.DBContextKey, tx)
	router.ServeHTTP(w, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotTx)
}
