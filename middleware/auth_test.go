package middleware

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gbp-agency-api/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var operatorColumns = []string{
	"id", "agency_id", "auth_subject", "email", "name", "role",
	"is_active", "last_seen_at", "created_at", "updated_at",
}

func setupAuthRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm: %v", err)
	}
	config.DB = gormDB

	router := gin.New()
	router.GET("/probe", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"operator_id": OperatorID(c),
			"agency_id":   AgencyID(c),
		})
	})
	return router, mock
}

func mintToken(t *testing.T, secret string, operatorID, agencyID uint, ttl time.Duration) string {
	t.Helper()
	claims := &Claims{
		OperatorID: operatorID,
		AgencyID:   agencyID,
		Email:      "ops@agency.example.com",
		Role:       "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func probe(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "unit-secret")
	router, mock := setupAuthRouter(t)

	now := time.Date(2025, 11, 6, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `operators` WHERE id = ? AND agency_id = ? AND is_active = ?")).
		WithArgs(9, 7, true).
		WillReturnRows(sqlmock.NewRows(operatorColumns).
			AddRow(9, 7, "auth0|abc", "ops@agency.example.com", "Jordan", "owner", true, nil, now, now))

	w := probe(router, "Bearer "+mintToken(t, "unit-secret", 9, 7, time.Hour))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAuthMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "unit-secret")
	router, mock := setupAuthRouter(t)

	for _, header := range []string{"", "Token abc", "bearer-less"} {
		if w := probe(router, header); w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, w.Code)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "unit-secret")
	router, mock := setupAuthRouter(t)

	w := probe(router, "Bearer "+mintToken(t, "unit-secret", 9, 7, -time.Hour))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "unit-secret")
	router, mock := setupAuthRouter(t)

	w := probe(router, "Bearer "+mintToken(t, "other-secret", 9, 7, time.Hour))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong signing key, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestAuthMiddlewareRejectsDeactivatedOperator(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "unit-secret")
	router, mock := setupAuthRouter(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `operators` WHERE id = ? AND agency_id = ? AND is_active = ?")).
		WithArgs(9, 7, true).
		WillReturnRows(sqlmock.NewRows(operatorColumns))

	w := probe(router, "Bearer "+mintToken(t, "unit-secret", 9, 7, time.Hour))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deactivated operator, got %d", w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestRequireRole(t *testing.T) {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("role", "staff")
		c.Next()
	})
	router.POST("/restricted", RequireRole("owner", "manager"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/restricted", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for staff, got %d", w.Code)
	}

	allowed := gin.New()
	allowed.Use(func(c *gin.Context) {
		c.Set("role", "manager")
		c.Next()
	})
	allowed.POST("/restricted", RequireRole("owner", "manager"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req = httptest.NewRequest(http.MethodPost, "/restricted", nil)
	w = httptest.NewRecorder()
	allowed.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager, got %d", w.Code)
	}
}
