package repository

import (
	"time"

	"github.com/comanda-pos/comanda/internal/model"
)

type TableEntity struct {
	ID       int64  `db:"id"        gorm:"primaryKey;autoIncrement;column:id"`
	TenantID int64  `db:"tenant_id" gorm:"column:tenant_id;not null;index"`
	BranchID int64  `db:"branch_id" gorm:"column:branch_id;not null;index"`
	Number   int    `db:"number"    gorm:"column:number;not null"`
	Status   string `db:"status"    gorm:"column:status;not null;default:available"`
}

func (TableEntity) TableName() string {
	return "tables"
}

type TableSessionEntity struct {
	ID            int64      `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	TenantID      int64      `db:"tenant_id"      gorm:"column:tenant_id;not null;index"`
	BranchID      int64      `db:"branch_id"      gorm:"column:branch_id;not null;index"`
	TableID       int64      `db:"table_id"       gorm:"column:table_id;not null;index"`
	Status        string     `db:"status"         gorm:"column:status;not null;default:pending"`
	CustomerName  string     `db:"customer_name"  gorm:"column:customer_name;not null"`
	CustomerPhone string     `db:"customer_phone" gorm:"column:customer_phone"`
	Token         string     `db:"token"          gorm:"column:token;not null"`
	StartedAt     time.Time  `db:"started_at"     gorm:"column:started_at;autoCreateTime"`
	EndedAt       *time.Time `db:"ended_at"       gorm:"column:ended_at"`
}

func (TableSessionEntity) TableName() string {
	return "table_sessions"
}

func toTableModel(e *TableEntity) *model.Table {
	if e == nil {
		return nil
	}
	return &model.Table{
		ID:       e.ID,
		TenantID: e.TenantID,
		BranchID: e.BranchID,
		Number:   e.Number,
		Status:   model.TableStatus(e.Status),
	}
}

func toSessionEntity(m *model.TableSession) *TableSessionEntity {
	if m == nil {
		return nil
	}
	return &TableSessionEntity{
		ID:            m.ID,
		TenantID:      m.TenantID,
		BranchID:      m.BranchID,
		TableID:       m.TableID,
		Status:        string(m.Status),
		CustomerName:  m.CustomerName,
		CustomerPhone: m.CustomerPhone,
		Token:         m.Token,
		StartedAt:     m.StartedAt,
		EndedAt:       m.EndedAt,
	}
}

func toSessionModel(e *TableSessionEntity) *model.TableSession {
	if e == nil {
		return nil
	}
	return &model.TableSession{
		ID:            e.ID,
		TenantID:      e.TenantID,
		BranchID:      e.BranchID,
		TableID:       e.TableID,
		Status:        model.SessionStatus(e.Status),
		CustomerName:  e.CustomerName,
		CustomerPhone: e.CustomerPhone,
		Token:         e.Token,
		StartedAt:     e.StartedAt,
		EndedAt:       e.EndedAt,
	}
}

func toSessionModels(entities []*TableSessionEntity) []*model.TableSession {
	if entities == nil {
		return nil
	}
	models := make([]*model.TableSession, len(entities))
	for i, e := range entities {
		models[i] = toSessionModel(e)
	}
	return models
}
