package handlers

import (
	"context"
	"strconv"

	"github.com/comanda-pos/comanda/internal/model"
	xhttp "github.com/comanda-pos/comanda/pkg/http"
	"github.com/fasthttp/router"
)

type LoyaltyService interface {
	Enroll(ctx context.Context, p model.EnrollRequest) (*model.CustomerLoyalty, error)
	Redeem(ctx context.Context, p model.RedeemRequest) (*model.RewardRedemption, error)
	GetBalance(ctx context.Context, enrollmentID, tenantID int64) (*model.CustomerLoyalty, error)
	ListTransactions(ctx context.Context, enrollmentID int64, limit, offset int) ([]*model.LoyaltyTransaction, int64, error)
}

type LoyaltyHandler struct {
	svc LoyaltyService
}

func RegisterLoyaltyRoutes(e *router.Group, h *LoyaltyHandler) {
	e.POST("/loyalty/enrollments", h.Enroll)
	e.GET("/loyalty/enrollments/{id}", h.GetBalance)
	e.GET("/loyalty/enrollments/{id}/transactions", h.ListTransactions)
	e.POST("/loyalty/redemptions", h.Redeem)
}

func NewLoyaltyHandler(loyaltyService LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{
		svc: loyaltyService,
	}
}

type enrollRequest struct {
	CustomerID int64 `json:"customer_id"`
	ProgramID  int64 `json:"program_id"`
}

type redeemRequest struct {
	EnrollmentID int64  `json:"enrollment_id"`
	RewardID     int64  `json:"reward_id"`
	OrderID      *int64 `json:"order_id,omitempty"`
}

type transactionsResponse struct {
	Items []*model.LoyaltyTransaction `json:"items"`
	Total int64                       `json:"total"`
}

func (h *LoyaltyHandler) Enroll(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	var req enrollRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	enrollment, err := h.svc.Enroll(ctx, model.EnrollRequest{
		TenantID:   tenant,
		CustomerID: req.CustomerID,
		ProgramID:  req.ProgramID,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, enrollment)
}

func (h *LoyaltyHandler) GetBalance(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid enrollment id")
		return
	}

	enrollment, err := h.svc.GetBalance(ctx, id, tenant)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, enrollment)
}

func (h *LoyaltyHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid enrollment id")
		return
	}

	var limit, offset int
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			offset = n
		}
	}

	items, total, err := h.svc.ListTransactions(ctx, id, limit, offset)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, transactionsResponse{Items: items, Total: total})
}

func (h *LoyaltyHandler) Redeem(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	var req redeemRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	redemption, err := h.svc.Redeem(ctx, model.RedeemRequest{
		TenantID:     tenant,
		EnrollmentID: req.EnrollmentID,
		RewardID:     req.RewardID,
		OrderID:      req.OrderID,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, redemption)
}
