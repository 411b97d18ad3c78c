package repository

import (
	"time"

	"github.com/comanda-pos/comanda/internal/model"
)

type LoyaltyProgramEntity struct {
	ID            int64  `db:"id"              gorm:"primaryKey;autoIncrement;column:id"`
	TenantID      int64  `db:"tenant_id"       gorm:"column:tenant_id;not null;index"`
	Name          string `db:"name"            gorm:"column:name;not null"`
	PointsPerUnit int    `db:"points_per_unit" gorm:"column:points_per_unit;not null"`
	Active        bool   `db:"active"          gorm:"column:active;not null;default:true"`
}

func (LoyaltyProgramEntity) TableName() string {
	return "loyalty_programs"
}

type LoyaltyTierEntity struct {
	ID        int64  `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	ProgramID int64  `db:"program_id" gorm:"column:program_id;not null;index"`
	Name      string `db:"name"       gorm:"column:name;not null"`
	MinPoints int64  `db:"min_points" gorm:"column:min_points;not null"`
}

func (LoyaltyTierEntity) TableName() string {
	return "loyalty_tiers"
}

type CustomerLoyaltyEntity struct {
	ID                int64     `db:"id"                  gorm:"primaryKey;autoIncrement;column:id"`
	TenantID          int64     `db:"tenant_id"           gorm:"column:tenant_id;not null;index"`
	CustomerID        int64     `db:"customer_id"         gorm:"column:customer_id;not null;index"`
	ProgramID         int64     `db:"program_id"          gorm:"column:program_id;not null;index"`
	TierID            *int64    `db:"tier_id"             gorm:"column:tier_id"`
	PointsBalance     int64     `db:"points_balance"      gorm:"column:points_balance;not null;default:0"`
	TotalPointsEarned int64     `db:"total_points_earned" gorm:"column:total_points_earned;not null;default:0"`
	CreatedAt         time.Time `db:"created_at"          gorm:"column:created_at;autoCreateTime"`
}

func (CustomerLoyaltyEntity) TableName() string {
	return "customer_loyalty"
}

type LoyaltyTransactionEntity struct {
	ID           int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	EnrollmentID int64     `db:"enrollment_id" gorm:"column:enrollment_id;not null;index"`
	Type         string    `db:"type"          gorm:"column:type;not null"`
	Points       int64     `db:"points"        gorm:"column:points;not null"`
	Description  string    `db:"description"   gorm:"column:description"`
	OrderID      *int64    `db:"order_id"      gorm:"column:order_id;index"`
	RedemptionID *int64    `db:"redemption_id" gorm:"column:redemption_id"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (LoyaltyTransactionEntity) TableName() string {
	return "loyalty_transactions"
}

type RewardEntity struct {
	ID         int64  `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	TenantID   int64  `db:"tenant_id"   gorm:"column:tenant_id;not null;index"`
	Name       string `db:"name"        gorm:"column:name;not null"`
	PointsCost int64  `db:"points_cost" gorm:"column:points_cost;not null"`
	Active     bool   `db:"active"      gorm:"column:active;not null;default:true"`
}

func (RewardEntity) TableName() string {
	return "rewards"
}

type RewardRedemptionEntity struct {
	ID           int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	RewardID     int64     `db:"reward_id"     gorm:"column:reward_id;not null;index"`
	EnrollmentID int64     `db:"enrollment_id" gorm:"column:enrollment_id;not null;index"`
	OrderID      *int64    `db:"order_id"      gorm:"column:order_id"`
	PointsSpent  int64     `db:"points_spent"  gorm:"column:points_spent;not null"`
	CreatedAt    time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (RewardRedemptionEntity) TableName() string {
	return "reward_redemptions"
}

func toProgramModel(e *LoyaltyProgramEntity) *model.LoyaltyProgram {
	if e == nil {
		return nil
	}
	return &model.LoyaltyProgram{
		ID:            e.ID,
		TenantID:      e.TenantID,
		Name:          e.Name,
		PointsPerUnit: e.PointsPerUnit,
		Active:        e.Active,
	}
}

func toTierModel(e *LoyaltyTierEntity) *model.LoyaltyTier {
	if e == nil {
		return nil
	}
	return &model.LoyaltyTier{
		ID:        e.ID,
		ProgramID: e.ProgramID,
		Name:      e.Name,
		MinPoints: e.MinPoints,
	}
}

func toTierModels(entities []*LoyaltyTierEntity) []*model.LoyaltyTier {
	if entities == nil {
		return nil
	}
	models := make([]*model.LoyaltyTier, len(entities))
	for i, e := range entities {
		models[i] = toTierModel(e)
	}
	return models
}

func toEnrollmentModel(e *CustomerLoyaltyEntity) *model.CustomerLoyalty {
	if e == nil {
		return nil
	}
	return &model.CustomerLoyalty{
		ID:                e.ID,
		TenantID:          e.TenantID,
		CustomerID:        e.CustomerID,
		ProgramID:         e.ProgramID,
		TierID:            e.TierID,
		PointsBalance:     e.PointsBalance,
		TotalPointsEarned: e.TotalPointsEarned,
		CreatedAt:         e.CreatedAt,
	}
}

func toLoyaltyTransactionEntity(m *model.LoyaltyTransaction) *LoyaltyTransactionEntity {
	if m == nil {
		return nil
	}
	return &LoyaltyTransactionEntity{
		ID:           m.ID,
		EnrollmentID: m.EnrollmentID,
		Type:         string(m.Type),
		Points:       m.Points,
		Description:  m.Description,
		OrderID:      m.OrderID,
		RedemptionID: m.RedemptionID,
		CreatedAt:    m.CreatedAt,
	}
}

func toLoyaltyTransactionModel(e *LoyaltyTransactionEntity) *model.LoyaltyTransaction {
	if e == nil {
		return nil
	}
	return &model.LoyaltyTransaction{
		ID:           e.ID,
		EnrollmentID: e.EnrollmentID,
		Type:         model.LoyaltyTransactionType(e.Type),
		Points:       e.Points,
		Description:  e.Description,
		OrderID:      e.OrderID,
		RedemptionID: e.RedemptionID,
		CreatedAt:    e.CreatedAt,
	}
}

func toLoyaltyTransactionModels(entities []*LoyaltyTransactionEntity) []*model.LoyaltyTransaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.LoyaltyTransaction, len(entities))
	for i, e := range entities {
		models[i] = toLoyaltyTransactionModel(e)
	}
	return models
}

func toRewardModel(e *RewardEntity) *model.Reward {
	if e == nil {
		return nil
	}
	return &model.Reward{
		ID:         e.ID,
		TenantID:   e.TenantID,
		Name:       e.Name,
		PointsCost: e.PointsCost,
		Active:     e.Active,
	}
}

func toRedemptionModel(e *RewardRedemptionEntity) *model.RewardRedemption {
	if e == nil {
		return nil
	}
	return &model.RewardRedemption{
		ID:           e.ID,
		RewardID:     e.RewardID,
		EnrollmentID: e.EnrollmentID,
		OrderID:      e.OrderID,
		PointsSpent:  e.PointsSpent,
		CreatedAt:    e.CreatedAt,
	}
}
