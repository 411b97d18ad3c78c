package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/comanda-pos/comanda/internal/repository"
	"github.com/comanda-pos/comanda/internal/services"
	"github.com/comanda-pos/comanda/internal/statemachine"
	xhttp "github.com/comanda-pos/comanda/pkg/http"
)

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP statuses: missing
// records are 404, state conflicts are 409, everything else is the
// caller's fault until proven otherwise.
func writeServiceError(ctx *xhttp.RequestCtx, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrOrderItemNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrTableNotFound),
		errors.Is(err, repository.ErrProgramNotFound),
		errors.Is(err, repository.ErrEnrollmentNotFound),
		errors.Is(err, repository.ErrRewardNotFound):
		writeError(ctx, 404, err.Error())
	case errors.Is(err, statemachine.ErrInvalidTransition),
		errors.Is(err, statemachine.ErrInvalidItemTransition),
		errors.Is(err, services.ErrNotCancellable),
		errors.Is(err, services.ErrOrderStatusChanged),
		errors.Is(err, services.ErrOrderAlreadyPaid),
		errors.Is(err, services.ErrTableOccupied),
		errors.Is(err, services.ErrPendingSessionNotFound),
		errors.Is(err, services.ErrActiveSessionNotFound),
		errors.Is(err, services.ErrAlreadyEnrolled),
		errors.Is(err, repository.ErrInsufficientPoints):
		writeError(ctx, 409, err.Error())
	default:
		writeError(ctx, 400, err.Error())
	}
}

func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, error) {
	v, ok := ctx.UserValue(name).(string)
	if !ok {
		return 0, errors.New("missing path parameter " + name)
	}
	return strconv.ParseInt(v, 10, 64)
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func queryInt64(ctx *xhttp.RequestCtx, key string) (int64, error) {
	return strconv.ParseInt(query(ctx, key), 10, 64)
}

// tenantID resolves the caller's tenant from the X-Tenant-ID header,
// falling back to the tenant_id query parameter.
func tenantID(ctx *xhttp.RequestCtx) (int64, error) {
	if v := string(ctx.Request.Header.Peek("X-Tenant-ID")); v != "" {
		return strconv.ParseInt(v, 10, 64)
	}
	if v := query(ctx, "tenant_id"); v != "" {
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, errors.New("tenant is required")
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
