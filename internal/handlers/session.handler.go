package handlers

import (
	"context"
	"time"

	"github.com/comanda-pos/comanda/internal/model"
	xhttp "github.com/comanda-pos/comanda/pkg/http"
	"github.com/fasthttp/router"
)

type SessionService interface {
	Create(ctx context.Context, p model.SessionCreateRequest) (*model.TableSession, error)
	Approve(ctx context.Context, sessionID, branchID int64) (*model.TableSession, error)
	Reject(ctx context.Context, sessionID, branchID int64) (*model.TableSession, error)
	End(ctx context.Context, sessionID, branchID int64) (*model.TableSession, error)
	TableHistory(ctx context.Context, tableID int64, from, to *time.Time) (*model.TableHistory, error)
}

type SessionHandler struct {
	svc SessionService
}

func RegisterSessionRoutes(e *router.Group, h *SessionHandler) {
	e.POST("/sessions", h.CreateSession)
	e.POST("/sessions/{id}/approve", h.ApproveSession)
	e.POST("/sessions/{id}/reject", h.RejectSession)
	e.POST("/sessions/{id}/end", h.EndSession)
	e.GET("/tables/{id}/history", h.TableHistory)
}

func NewSessionHandler(sessionService SessionService) *SessionHandler {
	return &SessionHandler{
		svc: sessionService,
	}
}

type createSessionRequest struct {
	BranchID      int64  `json:"branch_id"`
	TableID       int64  `json:"table_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone,omitempty"`
	AutoApprove   bool   `json:"auto_approve,omitempty"`
}

func (h *SessionHandler) CreateSession(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	var req createSessionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	session, err := h.svc.Create(ctx, model.SessionCreateRequest{
		TenantID:      tenant,
		BranchID:      req.BranchID,
		TableID:       req.TableID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		AutoApprove:   req.AutoApprove,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, session)
}

func (h *SessionHandler) ApproveSession(ctx *xhttp.RequestCtx) {
	h.transition(ctx, h.svc.Approve)
}

func (h *SessionHandler) RejectSession(ctx *xhttp.RequestCtx) {
	h.transition(ctx, h.svc.Reject)
}

func (h *SessionHandler) EndSession(ctx *xhttp.RequestCtx) {
	h.transition(ctx, h.svc.End)
}

func (h *SessionHandler) transition(ctx *xhttp.RequestCtx, fn func(ctx context.Context, sessionID, branchID int64) (*model.TableSession, error)) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid session id")
		return
	}
	branchID, err := queryInt64(ctx, "branch_id")
	if err != nil {
		writeError(ctx, 400, "branch_id is required")
		return
	}

	session, err := fn(ctx, id, branchID)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, session)
}

func (h *SessionHandler) TableHistory(ctx *xhttp.RequestCtx) {
	tableID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid table id")
		return
	}

	var from, to *time.Time
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			from = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			to = &t
		}
	}

	history, err := h.svc.TableHistory(ctx, tableID, from, to)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, history)
}
