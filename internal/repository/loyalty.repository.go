package repository

import (
	"context"
	"errors"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrProgramNotFound    = errors.New("loyalty program not found")
	ErrEnrollmentNotFound = errors.New("loyalty enrollment not found")
	ErrAlreadyEnrolled    = errors.New("customer already enrolled in program")
	ErrRewardNotFound     = errors.New("reward not found")
	ErrInsufficientPoints = errors.New("insufficient points")
)

type LoyaltyRepository struct {
	*pg.DB
}

func NewLoyaltyRepository(db *pg.DB) *LoyaltyRepository {
	return &LoyaltyRepository{
		db,
	}
}

func (r *LoyaltyRepository) GetActiveProgram(ctx context.Context, tenantID int64) (*model.LoyaltyProgram, error) {
	var entity LoyaltyProgramEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return toProgramModel(&entity), nil
}

func (r *LoyaltyRepository) GetEnrollment(ctx context.Context, id, tenantID int64) (*model.CustomerLoyalty, error) {
	var entity CustomerLoyaltyEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return toEnrollmentModel(&entity), nil
}

func (r *LoyaltyRepository) GetEnrollmentByCustomer(ctx context.Context, customerID, programID, tenantID int64) (*model.CustomerLoyalty, error) {
	var entity CustomerLoyaltyEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("customer_id = ? AND program_id = ? AND tenant_id = ?", customerID, programID, tenantID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, err
	}
	return toEnrollmentModel(&entity), nil
}

func (r *LoyaltyRepository) CreateEnrollment(ctx context.Context, m *model.CustomerLoyalty) (*model.CustomerLoyalty, error) {
	entity := &CustomerLoyaltyEntity{
		TenantID:          m.TenantID,
		CustomerID:        m.CustomerID,
		ProgramID:         m.ProgramID,
		TierID:            m.TierID,
		PointsBalance:     m.PointsBalance,
		TotalPointsEarned: m.TotalPointsEarned,
	}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toEnrollmentModel(entity), nil
}

// AddPoints increments balance and lifetime total in a single statement so
// concurrent awards never lose an update.
func (r *LoyaltyRepository) AddPoints(ctx context.Context, enrollmentID, points int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CustomerLoyaltyEntity{}).
		Where("id = ?", enrollmentID).
		Updates(map[string]interface{}{
			"points_balance":      gorm.Expr("points_balance + ?", points),
			"total_points_earned": gorm.Expr("total_points_earned + ?", points),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

// SpendPoints decrements the balance only when it covers the cost; the
// guard lives in the WHERE clause, not in application code.
func (r *LoyaltyRepository) SpendPoints(ctx context.Context, enrollmentID, points int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CustomerLoyaltyEntity{}).
		Where("id = ? AND points_balance >= ?", enrollmentID, points).
		Update("points_balance", gorm.Expr("points_balance - ?", points))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var entity CustomerLoyaltyEntity
		err := r.Read(ctx).WithContext(ctx).
			Select("id").
			Where("id = ?", enrollmentID).
			First(&entity).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEnrollmentNotFound
		}
		if err != nil {
			return err
		}
		return ErrInsufficientPoints
	}
	return nil
}

func (r *LoyaltyRepository) UpdateTier(ctx context.Context, enrollmentID, tierID int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CustomerLoyaltyEntity{}).
		Where("id = ?", enrollmentID).
		Update("tier_id", tierID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

// ListTiers returns the program's tiers ordered by ascending threshold.
func (r *LoyaltyRepository) ListTiers(ctx context.Context, programID int64) ([]*model.LoyaltyTier, error) {
	var entities []*LoyaltyTierEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("program_id = ?", programID).
		Order("min_points ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toTierModels(entities), nil
}

func (r *LoyaltyRepository) CreateTransaction(ctx context.Context, m *model.LoyaltyTransaction) (*model.LoyaltyTransaction, error) {
	entity := toLoyaltyTransactionEntity(m)
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toLoyaltyTransactionModel(entity), nil
}

// HasEarnedForOrder reports whether an award ledger row already exists for
// the order, the guard against awarding the same completion twice.
func (r *LoyaltyRepository) HasEarnedForOrder(ctx context.Context, enrollmentID, orderID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&LoyaltyTransactionEntity{}).
		Where("enrollment_id = ? AND order_id = ? AND type = ?",
			enrollmentID, orderID, string(model.LoyaltyTransactionEarned)).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *LoyaltyRepository) ListTransactions(ctx context.Context, enrollmentID int64, limit, offset int) ([]*model.LoyaltyTransaction, int64, error) {
	q := r.Read(ctx).WithContext(ctx).
		Model(&LoyaltyTransactionEntity{}).
		Where("enrollment_id = ?", enrollmentID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var entities []*LoyaltyTransactionEntity
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return toLoyaltyTransactionModels(entities), total, nil
}

func (r *LoyaltyRepository) GetReward(ctx context.Context, id, tenantID int64) (*model.Reward, error) {
	var entity RewardEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}
	return toRewardModel(&entity), nil
}

func (r *LoyaltyRepository) CreateRedemption(ctx context.Context, m *model.RewardRedemption) (*model.RewardRedemption, error) {
	entity := &RewardRedemptionEntity{
		RewardID:     m.RewardID,
		EnrollmentID: m.EnrollmentID,
		OrderID:      m.OrderID,
		PointsSpent:  m.PointsSpent,
	}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toRedemptionModel(entity), nil
}
