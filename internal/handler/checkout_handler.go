package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type PlaceOrderRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/checkout")
	g.Use(middleware.CartSession(cfg))

	g.GET("/quote", h.quote)
	g.POST("/order", h.placeOrder)
}

func (h *CheckoutHandler) quote(c echo.Context) error {
	sid, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session"})
	}

	out, err := h.uc.Quote(c.Request().Context(), sid)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) placeOrder(c echo.Context) error {
	sid, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid session"})
	}

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), sid, usecase.PlaceOrderInput{
		Email:      req.Email,
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		Province:   req.Province,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
