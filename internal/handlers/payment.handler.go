package handlers

import (
	"context"

	"github.com/comanda-pos/comanda/internal/model"
	xhttp "github.com/comanda-pos/comanda/pkg/http"
	"github.com/fasthttp/router"
)

type PaymentService interface {
	Record(ctx context.Context, p model.PaymentCreateRequest) (*model.PaymentResult, error)
	ListByOrder(ctx context.Context, orderID, tenantID int64) ([]*model.Payment, error)
}

type PaymentHandler struct {
	svc PaymentService
}

func RegisterPaymentRoutes(e *router.Group, h *PaymentHandler) {
	e.POST("/orders/{id}/payments", h.RecordPayment)
	e.GET("/orders/{id}/payments", h.ListPayments)
}

func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{
		svc: paymentService,
	}
}

type recordPaymentRequest struct {
	Method    string `json:"method"`
	Amount    int64  `json:"amount"`
	Tip       int64  `json:"tip"`
	Reference string `json:"reference,omitempty"`
}

func (h *PaymentHandler) RecordPayment(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	orderID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid order id")
		return
	}

	var req recordPaymentRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	result, err := h.svc.Record(ctx, model.PaymentCreateRequest{
		OrderID:   orderID,
		TenantID:  tenant,
		Method:    model.PaymentMethod(req.Method),
		Amount:    req.Amount,
		Tip:       req.Tip,
		Reference: req.Reference,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, result)
}

func (h *PaymentHandler) ListPayments(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	orderID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid order id")
		return
	}

	payments, err := h.svc.ListByOrder(ctx, orderID, tenant)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, payments)
}
