package repository

import (
	"context"
	"errors"
	"time"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrTableNotFound   = errors.New("table not found")
	ErrSessionNotFound = errors.New("session not found")
)

type SessionRepository struct {
	*pg.DB
}

func NewSessionRepository(db *pg.DB) *SessionRepository {
	return &SessionRepository{
		db,
	}
}

func (r *SessionRepository) Create(ctx context.Context, s *model.TableSession) (*model.TableSession, error) {
	entity := toSessionEntity(s)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toSessionModel(entity), nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id, branchID int64) (*model.TableSession, error) {
	var entity TableSessionEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND branch_id = ?", id, branchID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return toSessionModel(&entity), nil
}

// UpdateStatusFrom moves a session from an expected current status to the
// next one. RowsAffected tells the caller whether the precondition held;
// the status check in the WHERE clause is what makes approve/reject/end
// race-safe.
func (r *SessionRepository) UpdateStatusFrom(ctx context.Context, id, branchID int64, from, to model.SessionStatus) (bool, error) {
	updates := map[string]interface{}{"status": string(to)}
	if to == model.SessionStatusCompleted {
		now := time.Now()
		updates["ended_at"] = &now
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&TableSessionEntity{}).
		Where("id = ? AND branch_id = ? AND status = ?", id, branchID, string(from)).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *SessionRepository) ListByTable(ctx context.Context, tableID int64, from, to *time.Time) ([]*model.TableSession, error) {
	q := r.Read(ctx).WithContext(ctx).Where("table_id = ?", tableID)
	if from != nil {
		q = q.Where("started_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("started_at < ?", *to)
	}

	var entities []*TableSessionEntity
	if err := q.Order("started_at ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toSessionModels(entities), nil
}

func (r *SessionRepository) GetTable(ctx context.Context, id, tenantID int64) (*model.Table, error) {
	var entity TableEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return toTableModel(&entity), nil
}

func (r *SessionRepository) UpdateTableStatus(ctx context.Context, id int64, status model.TableStatus) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&TableEntity{}).
		Where("id = ?", id).
		Update("status", string(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTableNotFound
	}
	return nil
}
