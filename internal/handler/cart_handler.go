package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int64 `json:"quantity"`
}

// /cart, /cart/{productId} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.CartSession(cfg))

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.PATCH("/:productId", h.patchItem)
	g.DELETE("/:productId", h.deleteItem)
	g.DELETE("", h.clearCart)
}

func (h *CartHandler) getCart(c echo.Context) error {
	sid, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), sid)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	sid, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session"})
	}

	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddToCart(c.Request().Context(), sid, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	sid, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateItem(c.Request().Context(), sid, c.Param("productId"), req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	sid, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session"})
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), sid, c.Param("productId"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clearCart(c echo.Context) error {
	sid, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session"})
	}

	out, err := h.uc.ClearCart(c.Request().Context(), sid)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// contextからセッションIDを取り出す
func getSessionIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxSessionIDKey)
	sid, ok := v.(string)
	if !ok || sid == "" {
		return "", false
	}
	return sid, true
}
