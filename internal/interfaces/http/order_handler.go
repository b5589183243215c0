package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Compuestos-api/internal/application/dto"
	"github.com/jhoicas/Compuestos-api/internal/application/order"
	"github.com/jhoicas/Compuestos-api/internal/domain"
)

// OrderHandler maneja las peticiones HTTP de órdenes de producción.
type OrderHandler struct {
	uc *order.SubmitOrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *order.SubmitOrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Submit godoc
// @Summary      Enviar orden de producción
// @Description  Planifica los consumos de la fórmula y descuenta todos los
// @Description  materiales en una sola transacción: o todas las deducciones
// @Description  se confirman junto con la orden, o ninguna.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitOrderRequest  true  "datos de planta + selectedFormulaId + numberOfBatches"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Submit(c.Context(), in)
	if err != nil {
		ordersFailed.Inc()
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
		}
		if errors.Is(err, domain.ErrMissingConsumption) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_CONSUMPTION", Message: err.Error()})
		}
		if errors.Is(err, domain.ErrFormulaNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "FORMULA_NOT_FOUND", Message: "fórmula no encontrada"})
		}
		var lf *domain.LedgerFailure
		if errors.As(err, &lf) || errors.Is(err, domain.ErrLedgerFailure) {
			msg := "fallo del libro mayor, ninguna deducción fue aplicada"
			if lf != nil && lf.Ingredient != "" {
				msg = fmt.Sprintf("fallo del libro mayor en %q, ninguna deducción fue aplicada", lf.Ingredient)
			}
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "LEDGER_FAILURE", Message: msg})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	ordersSubmitted.Inc()
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes de producción
// @Tags         orders
// @Produce      json
// @Success      200  {object}  dto.OrderListResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Detalle de orden
// @Tags         orders
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetSheet godoc
// @Summary      Hoja de producción (PDF)
// @Tags         orders
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/sheet [get]
func (h *OrderHandler) GetSheet(c *fiber.Ctx) error {
	sheet, err := h.uc.GenerateSheet(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrFormulaNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "orden no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="order_sheet.pdf"`)
	return c.Send(sheet)
}
