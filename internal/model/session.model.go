package model

import (
	"errors"
	"time"
)

type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusRejected  SessionStatus = "rejected"
	SessionStatusCompleted SessionStatus = "completed"
)

type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusOccupied  TableStatus = "occupied"
)

type Table struct {
	ID       int64       `json:"id"`
	TenantID int64       `json:"tenant_id"`
	BranchID int64       `json:"branch_id"`
	Number   int         `json:"number"`
	Status   TableStatus `json:"status"`
}

// TableSession is a customer's ordering window at a table, from approval
// to departure. The token is the opaque bearer credential the customer's
// device presents when placing orders.
type TableSession struct {
	ID            int64         `json:"id"`
	TenantID      int64         `json:"tenant_id"`
	BranchID      int64         `json:"branch_id"`
	TableID       int64         `json:"table_id"`
	Status        SessionStatus `json:"status"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone,omitempty"`
	Token         string        `json:"token,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	EndedAt       *time.Time    `json:"ended_at,omitempty"`
}

type SessionCreateRequest struct {
	TenantID      int64
	BranchID      int64
	TableID       int64
	CustomerName  string
	CustomerPhone string
	// AutoApprove skips the pending step and opens the session active.
	AutoApprove bool
}

func (r SessionCreateRequest) Validate() error {
	if r.TenantID == 0 {
		return errors.New("tenant_id is required")
	}
	if r.BranchID == 0 {
		return errors.New("branch_id is required")
	}
	if r.TableID == 0 {
		return errors.New("table_id is required")
	}
	if r.CustomerName == "" {
		return errors.New("customer_name is required")
	}
	return nil
}

// SessionHistoryEntry is one past session of a table enriched with its
// orders and derived figures.
type SessionHistoryEntry struct {
	Session         *TableSession `json:"session"`
	Orders          []*Order      `json:"orders"`
	Revenue         int64         `json:"revenue"`
	DurationMinutes float64       `json:"duration_minutes"`
}

type TableHistory struct {
	Entries                []*SessionHistoryEntry `json:"entries"`
	TotalRevenue           int64                  `json:"total_revenue"`
	TotalOrders            int                    `json:"total_orders"`
	SessionCount           int                    `json:"session_count"`
	AverageDurationMinutes float64                `json:"average_duration_minutes"`
}
