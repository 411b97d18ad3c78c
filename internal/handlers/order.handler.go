package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/comanda-pos/comanda/internal/model"
	xhttp "github.com/comanda-pos/comanda/pkg/http"
	"github.com/fasthttp/router"
)

type OrderService interface {
	Create(ctx context.Context, p model.OrderCreateRequest) (*model.Order, error)
	Get(ctx context.Context, id, tenantID int64) (*model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]*model.Order, int64, error)
	UpdateStatus(ctx context.Context, orderID, tenantID int64, next model.OrderStatus) (*model.Order, error)
	Cancel(ctx context.Context, orderID, tenantID int64) (*model.Order, error)
	UpdateItemStatus(ctx context.Context, orderID, itemID, tenantID int64, next model.ItemStatus) (*model.OrderItem, error)
}

type OrderHandler struct {
	svc OrderService
}

func RegisterOrderRoutes(e *router.Group, h *OrderHandler) {
	e.POST("/orders", h.CreateOrder)
	e.GET("/orders", h.ListOrders)
	e.GET("/orders/{id}", h.GetOrder)
	e.PUT("/orders/{id}/status", h.UpdateOrderStatus)
	e.POST("/orders/{id}/cancel", h.CancelOrder)
	e.PUT("/orders/{id}/items/{itemID}/status", h.UpdateItemStatus)
}

func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{
		svc: orderService,
	}
}

type createOrderRequest struct {
	BranchID       int64                    `json:"branch_id"`
	Type           string                   `json:"type"`
	Items          []model.OrderItemRequest `json:"items"`
	CustomerID     *int64                   `json:"customer_id,omitempty"`
	TableSessionID *int64                   `json:"table_session_id,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type listOrdersResponse struct {
	Items []*model.Order `json:"items"`
	Total int64          `json:"total"`
}

/* --------------------------------- Routes ----------------------------------- */

func (h *OrderHandler) CreateOrder(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	var req createOrderRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	order, err := h.svc.Create(ctx, model.OrderCreateRequest{
		TenantID:       tenant,
		BranchID:       req.BranchID,
		Type:           model.OrderType(req.Type),
		Items:          req.Items,
		CustomerID:     req.CustomerID,
		TableSessionID: req.TableSessionID,
	})
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 201, order)
}

func (h *OrderHandler) GetOrder(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid order id")
		return
	}

	order, err := h.svc.Get(ctx, id, tenant)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, order)
}

func (h *OrderHandler) ListOrders(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}

	f := model.OrderFilter{TenantID: &tenant}
	if v := query(ctx, "branch_id"); v != "" {
		if id, e := strconv.ParseInt(v, 10, 64); e == nil {
			f.BranchID = &id
		}
	}
	if v := query(ctx, "status"); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if parts[i] != "" {
				f.Statuses = append(f.Statuses, model.OrderStatus(parts[i]))
			}
		}
	}
	if v := query(ctx, "from"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.From = &t
		}
	}
	if v := query(ctx, "to"); v != "" {
		if t, e := parseTime(v); e == nil {
			f.To = &t
		}
	}
	if v := query(ctx, "limit"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Limit = n
		}
	}
	if v := query(ctx, "offset"); v != "" {
		if n, e := strconv.Atoi(v); e == nil {
			f.Offset = n
		}
	}
	if strings.EqualFold(query(ctx, "order"), "desc") {
		f.Desc = true
	}

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, listOrdersResponse{Items: items, Total: total})
}

func (h *OrderHandler) UpdateOrderStatus(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid order id")
		return
	}

	var req updateStatusRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	order, err := h.svc.UpdateStatus(ctx, id, tenant, model.OrderStatus(req.Status))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, order)
}

func (h *OrderHandler) CancelOrder(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid order id")
		return
	}

	order, err := h.svc.Cancel(ctx, id, tenant)
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, order)
}

func (h *OrderHandler) UpdateItemStatus(ctx *xhttp.RequestCtx) {
	tenant, err := tenantID(ctx)
	if err != nil {
		writeError(ctx, 400, err.Error())
		return
	}
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid order id")
		return
	}
	itemID, err := pathInt64(ctx, "itemID")
	if err != nil {
		writeError(ctx, 400, "invalid item id")
		return
	}

	var req updateStatusRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	item, err := h.svc.UpdateItemStatus(ctx, id, itemID, tenant, model.ItemStatus(req.Status))
	if err != nil {
		writeServiceError(ctx, err)
		return
	}
	writeJSON(ctx, 200, item)
}
