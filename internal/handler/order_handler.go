package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 注文完了ページ用の参照API
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/orders/:id", h.detail)
}

func (h *OrderHandler) detail(c echo.Context) error {
	out, err := h.uc.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
