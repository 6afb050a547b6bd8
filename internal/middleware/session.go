package middleware

import (
	"errors"
	"net/http"
	"time"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// contextに入れるセッションIDのキー（string）
	CtxSessionIDKey = "cart_session_id"

	sessionCookieName = "cart_session"
)

// CartSession はカート用のセッションID（ユーザー認証ではない）を保証する。
// Cookieに署名付きトークンで持ち、無い・壊れている場合は新しく発行する。
// 同じセッションIDなら同じカートに繋がる。
func CartSession(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""

			if ck, err := c.Cookie(sessionCookieName); err == nil {
				sid = parseSessionToken(ck.Value, cfg.SessionSecret)
			}

			//無効なら新規発行してCookieを更新する
			if sid == "" {
				sid = uuid.NewString()

				token, err := signSessionToken(sid, cfg.SessionSecret)
				if err != nil {
					return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
				}

				c.SetCookie(&http.Cookie{
					Name:     sessionCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   cfg.GoEnv != "dev",
					MaxAge:   int((30 * 24 * time.Hour).Seconds()),
				})
			}

			c.Set(CtxSessionIDKey, sid)
			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}

func signSessionToken(sid string, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sid": sid,
		"iat": time.Now().Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// parseSessionToken は検証に失敗したら空文字を返す（呼び出し側で再発行）。
func parseSessionToken(raw string, secret string) string {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return ""
	}

	//中身がUUIDでなければ作り直す
	if _, err := uuid.Parse(sid); err != nil {
		return ""
	}
	return sid
}
