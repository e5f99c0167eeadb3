package middlewares

import (
	"codequest/internal/services"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(tokens *services.TokenService) *gin.Engine {
	router := gin.New()
	whoami := func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID, "authenticated": ok})
	}
	router.GET("/required", AuthMiddleware(tokens), whoami)
	router.GET("/optional", OptionalAuthMiddleware(tokens), whoami)
	return router
}

func TestAuthMiddleware(t *testing.T) {
	tokens := services.NewTokenService("secret")
	router := newAuthRouter(tokens)

	token, err := tokens.GenerateToken("user-7", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	longToken, err := tokens.GenerateToken(strings.Repeat("x", services.MaxSubjectLength+1), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name       string
		path       string
		setup      func(r *http.Request)
		wantStatus int
		wantUser   string
	}{
		{"cookie", "/required", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "access_token", Value: token}) }, http.StatusOK, "user-7"},
		{"bearer", "/required", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "user-7"},
		{"missing", "/required", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"invalid", "/required", func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") }, http.StatusUnauthorized, ""},
		{"subject too long", "/required", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+longToken) }, http.StatusUnauthorized, ""},
		{"optional anonymous", "/optional", func(*http.Request) {}, http.StatusOK, ""},
		{"optional invalid", "/optional", func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") }, http.StatusOK, ""},
		{"optional valid", "/optional", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, http.StatusOK, "user-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if body["message"] != "Unauthorized" {
					t.Errorf("body = %v; want message Unauthorized", body)
				}
				return
			}
			if body["userId"] != tt.wantUser {
				t.Errorf("userId = %v; want %q", body["userId"], tt.wantUser)
			}
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), ErrorHandlerMiddleware())
	router.GET("/panic", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", rec.Code)
	}
	if rec.Body.String() != `{"message":"Internal server error"}` {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware(), RequestLoggerMiddleware())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := rec.Header().Get(RequestIDHeader)
	if generated == "" || rec.Body.String() != generated {
		t.Errorf("generated id = %q, body = %q", generated, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("propagated id = %q; want abc-123", got)
	}
}

func TestCORSMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}
}
