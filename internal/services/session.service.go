package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/google/uuid"
)

var (
	ErrTableOccupied          = errors.New("table is occupied")
	ErrPendingSessionNotFound = errors.New("no pending session to act on")
	ErrActiveSessionNotFound  = errors.New("no active session to end")
)

type SessionRepository interface {
	Create(ctx context.Context, s *model.TableSession) (*model.TableSession, error)
	GetByID(ctx context.Context, id, branchID int64) (*model.TableSession, error)
	UpdateStatusFrom(ctx context.Context, id, branchID int64, from, to model.SessionStatus) (bool, error)
	ListByTable(ctx context.Context, tableID int64, from, to *time.Time) ([]*model.TableSession, error)
	GetTable(ctx context.Context, id, tenantID int64) (*model.Table, error)
	UpdateTableStatus(ctx context.Context, id int64, status model.TableStatus) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SessionOrderLister is the slice of the order repository table history needs.
type SessionOrderLister interface {
	ListByTableSession(ctx context.Context, sessionID int64) ([]*model.Order, error)
}

type SessionService struct {
	sessionRepo SessionRepository
	orderRepo   SessionOrderLister
}

func NewSessionService(sessionRepo SessionRepository, orderRepo SessionOrderLister) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		orderRepo:   orderRepo,
	}
}

// Create opens a session for a table. An occupied table is refused
// outright rather than queued behind the current party.
func (s *SessionService) Create(ctx context.Context, p model.SessionCreateRequest) (*model.TableSession, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	table, err := s.sessionRepo.GetTable(ctx, p.TableID, p.TenantID)
	if err != nil {
		return nil, err
	}
	if table.Status == model.TableStatusOccupied {
		return nil, fmt.Errorf("table %d: %w", table.Number, ErrTableOccupied)
	}

	status := model.SessionStatusPending
	if p.AutoApprove {
		status = model.SessionStatusActive
	}

	session := &model.TableSession{
		TenantID:      p.TenantID,
		BranchID:      p.BranchID,
		TableID:       p.TableID,
		Status:        status,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		Token:         uuid.NewString(),
		StartedAt:     time.Now(),
	}

	var created *model.TableSession
	err = s.sessionRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.sessionRepo.Create(ctx, session)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		if p.AutoApprove {
			if err := s.sessionRepo.UpdateTableStatus(ctx, p.TableID, model.TableStatusOccupied); err != nil {
				return fmt.Errorf("occupy table: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Approve activates a pending session and marks its table occupied in
// the same transaction, so a crash between the two cannot leave an
// active session at a free table.
func (s *SessionService) Approve(ctx context.Context, sessionID, branchID int64) (*model.TableSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID, branchID)
	if err != nil {
		return nil, err
	}

	err = s.sessionRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.sessionRepo.UpdateStatusFrom(ctx, sessionID, branchID, model.SessionStatusPending, model.SessionStatusActive)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPendingSessionNotFound
		}
		return s.sessionRepo.UpdateTableStatus(ctx, session.TableID, model.TableStatusOccupied)
	})
	if err != nil {
		return nil, err
	}

	session.Status = model.SessionStatusActive
	return session, nil
}

// Reject turns a pending session down. The table was never occupied, so
// its status is left alone.
func (s *SessionService) Reject(ctx context.Context, sessionID, branchID int64) (*model.TableSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID, branchID)
	if err != nil {
		return nil, err
	}

	ok, err := s.sessionRepo.UpdateStatusFrom(ctx, sessionID, branchID, model.SessionStatusPending, model.SessionStatusRejected)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPendingSessionNotFound
	}

	session.Status = model.SessionStatusRejected
	return session, nil
}

// End closes an active session and frees its table in one transaction.
func (s *SessionService) End(ctx context.Context, sessionID, branchID int64) (*model.TableSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID, branchID)
	if err != nil {
		return nil, err
	}

	err = s.sessionRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.sessionRepo.UpdateStatusFrom(ctx, sessionID, branchID, model.SessionStatusActive, model.SessionStatusCompleted)
		if err != nil {
			return err
		}
		if !ok {
			return ErrActiveSessionNotFound
		}
		return s.sessionRepo.UpdateTableStatus(ctx, session.TableID, model.TableStatusAvailable)
	})
	if err != nil {
		return nil, err
	}

	return s.sessionRepo.GetByID(ctx, sessionID, branchID)
}

// TableHistory assembles the past sessions of a table with their orders,
// revenue and duration, plus roll-up figures over the selected window.
func (s *SessionService) TableHistory(ctx context.Context, tableID int64, from, to *time.Time) (*model.TableHistory, error) {
	sessions, err := s.sessionRepo.ListByTable(ctx, tableID, from, to)
	if err != nil {
		return nil, err
	}

	history := &model.TableHistory{
		Entries:      make([]*model.SessionHistoryEntry, 0, len(sessions)),
		SessionCount: len(sessions),
	}

	var totalDuration float64
	var measured int
	for _, session := range sessions {
		orders, err := s.orderRepo.ListByTableSession(ctx, session.ID)
		if err != nil {
			return nil, err
		}

		entry := &model.SessionHistoryEntry{
			Session: session,
			Orders:  orders,
		}
		for _, order := range orders {
			if order.Status != model.OrderStatusCancelled {
				entry.Revenue += order.Total
			}
		}
		if session.EndedAt != nil {
			entry.DurationMinutes = session.EndedAt.Sub(session.StartedAt).Minutes()
			totalDuration += entry.DurationMinutes
			measured++
		}

		history.Entries = append(history.Entries, entry)
		history.TotalRevenue += entry.Revenue
		history.TotalOrders += len(orders)
	}
	if measured > 0 {
		history.AverageDurationMinutes = totalDuration / float64(measured)
	}

	return history, nil
}
