package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"app/internal/config"
	"app/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func testConfig() config.Config {
	return config.Config{
		SessionSecret: "test-secret",
		GoEnv:         "dev",
	}
}

func sessionEcho(cfg config.Config, captured *string) *echo.Echo {
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error {
		sid, _ := c.Get(middleware.CtxSessionIDKey).(string)
		*captured = sid
		return c.NoContent(http.StatusOK)
	}, middleware.CartSession(cfg))
	return e
}

// Test: Cookieが無ければセッションを発行してCookieを返す
func TestCartSession_IssuesNewSession(t *testing.T) {
	var sid string
	e := sessionEcho(testConfig(), &sid)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, sid)

	cookies := rec.Result().Cookies()
	assert.Len(t, cookies, 1)
	assert.Equal(t, "cart_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

// Test: 有効なCookieなら同じセッションIDが使われ、Cookieは再発行されない
func TestCartSession_ReusesValidSession(t *testing.T) {
	cfg := testConfig()
	var sid string
	e := sessionEcho(cfg, &sid)

	//1回目で発行
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	first := sid
	issued := rec.Result().Cookies()[0]

	//2回目は同じIDのまま
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(issued)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, first, sid)
	assert.Empty(t, rec.Result().Cookies())
}

// Test: 壊れたCookieは作り直す
func TestCartSession_ReplacesInvalidCookie(t *testing.T) {
	var sid string
	e := sessionEcho(testConfig(), &sid)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: "cart_session", Value: "garbage"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, sid)
	assert.Len(t, rec.Result().Cookies(), 1)
}

// Test: 別のシークレットで署名されたCookieは信用しない
func TestCartSession_RejectsForeignSignature(t *testing.T) {
	var sidA string
	eA := sessionEcho(config.Config{SessionSecret: "secret-a", GoEnv: "dev"}, &sidA)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	eA.ServeHTTP(rec, req)
	foreign := rec.Result().Cookies()[0]

	var sidB string
	eB := sessionEcho(config.Config{SessionSecret: "secret-b", GoEnv: "dev"}, &sidB)

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(foreign)
	rec = httptest.NewRecorder()
	eB.ServeHTTP(rec, req)

	assert.NotEmpty(t, sidB)
	assert.NotEqual(t, sidA, sidB)
}
