package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/internal/repository"
	"github.com/comanda-pos/comanda/pkg/logger"
)

var (
	ErrAlreadyEnrolled = errors.New("customer already enrolled in program")
	ErrRewardInactive  = errors.New("reward is not active")
)

type LoyaltyRepository interface {
	GetActiveProgram(ctx context.Context, tenantID int64) (*model.LoyaltyProgram, error)
	GetEnrollment(ctx context.Context, id, tenantID int64) (*model.CustomerLoyalty, error)
	GetEnrollmentByCustomer(ctx context.Context, customerID, programID, tenantID int64) (*model.CustomerLoyalty, error)
	CreateEnrollment(ctx context.Context, m *model.CustomerLoyalty) (*model.CustomerLoyalty, error)
	AddPoints(ctx context.Context, enrollmentID, points int64) error
	SpendPoints(ctx context.Context, enrollmentID, points int64) error
	UpdateTier(ctx context.Context, enrollmentID, tierID int64) error
	ListTiers(ctx context.Context, programID int64) ([]*model.LoyaltyTier, error)
	CreateTransaction(ctx context.Context, m *model.LoyaltyTransaction) (*model.LoyaltyTransaction, error)
	HasEarnedForOrder(ctx context.Context, enrollmentID, orderID int64) (bool, error)
	ListTransactions(ctx context.Context, enrollmentID int64, limit, offset int) ([]*model.LoyaltyTransaction, int64, error)
	GetReward(ctx context.Context, id, tenantID int64) (*model.Reward, error)
	CreateRedemption(ctx context.Context, m *model.RewardRedemption) (*model.RewardRedemption, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type LoyaltyService struct {
	loyaltyRepo LoyaltyRepository
}

func NewLoyaltyService(loyaltyRepo LoyaltyRepository) *LoyaltyService {
	return &LoyaltyService{
		loyaltyRepo: loyaltyRepo,
	}
}

// Enroll adds a customer to a program. One enrollment per customer and
// program; a new member starts at the lowest tier with a zero balance.
func (s *LoyaltyService) Enroll(ctx context.Context, p model.EnrollRequest) (*model.CustomerLoyalty, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.loyaltyRepo.GetEnrollmentByCustomer(ctx, p.CustomerID, p.ProgramID, p.TenantID)
	if err == nil && existing != nil {
		return nil, ErrAlreadyEnrolled
	}
	if err != nil && !errors.Is(err, repository.ErrEnrollmentNotFound) {
		return nil, err
	}

	enrollment := &model.CustomerLoyalty{
		TenantID:   p.TenantID,
		CustomerID: p.CustomerID,
		ProgramID:  p.ProgramID,
	}

	tiers, err := s.loyaltyRepo.ListTiers(ctx, p.ProgramID)
	if err != nil {
		return nil, err
	}
	if len(tiers) > 0 {
		enrollment.TierID = &tiers[0].ID
	}

	return s.loyaltyRepo.CreateEnrollment(ctx, enrollment)
}

// Award grants points for a completed order: floor of the order total in
// major currency units times the program rate. The ledger row carries the
// order id, and an existing earned row for that order makes the whole
// award a no-op.
func (s *LoyaltyService) Award(ctx context.Context, tenantID, customerID, orderID, orderTotal int64, orderNumber string) error {
	program, err := s.loyaltyRepo.GetActiveProgram(ctx, tenantID)
	if err != nil {
		return err
	}

	enrollment, err := s.loyaltyRepo.GetEnrollmentByCustomer(ctx, customerID, program.ID, tenantID)
	if err != nil {
		return err
	}

	awarded, err := s.loyaltyRepo.HasEarnedForOrder(ctx, enrollment.ID, orderID)
	if err != nil {
		return err
	}
	if awarded {
		logger.Info("loyalty award skipped, order already credited",
			"order_id", orderID,
			"enrollment_id", enrollment.ID)
		return nil
	}

	points := (orderTotal / 100) * int64(program.PointsPerUnit)
	if points <= 0 {
		return nil
	}

	// One transaction for the whole award: a failed tier write rolls the
	// points and the ledger row back too, so a retry is not fenced off by
	// the already-credited check with the tier still stale.
	return s.loyaltyRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.loyaltyRepo.AddPoints(ctx, enrollment.ID, points); err != nil {
			return fmt.Errorf("add points: %w", err)
		}
		_, err := s.loyaltyRepo.CreateTransaction(ctx, &model.LoyaltyTransaction{
			EnrollmentID: enrollment.ID,
			Type:         model.LoyaltyTransactionEarned,
			Points:       points,
			Description:  fmt.Sprintf("Points earned for order %s", orderNumber),
			OrderID:      &orderID,
		})
		if err != nil {
			return fmt.Errorf("create ledger row: %w", err)
		}
		return s.recomputeTier(ctx, enrollment, points)
	})
}

// recomputeTier moves the enrollment to the highest tier whose threshold
// the lifetime total now clears. Writes only on change.
func (s *LoyaltyService) recomputeTier(ctx context.Context, enrollment *model.CustomerLoyalty, earned int64) error {
	tiers, err := s.loyaltyRepo.ListTiers(ctx, enrollment.ProgramID)
	if err != nil {
		return err
	}

	lifetime := enrollment.TotalPointsEarned + earned
	var target *model.LoyaltyTier
	for _, tier := range tiers {
		if lifetime >= tier.MinPoints {
			target = tier
		}
	}
	if target == nil {
		return nil
	}
	if enrollment.TierID != nil && *enrollment.TierID == target.ID {
		return nil
	}

	if err := s.loyaltyRepo.UpdateTier(ctx, enrollment.ID, target.ID); err != nil {
		return err
	}
	logger.Info("loyalty tier updated",
		"enrollment_id", enrollment.ID,
		"tier", target.Name)
	return nil
}

// Redeem exchanges points for a reward: one transaction covering the
// balance decrement, the negative ledger row and the redemption record.
func (s *LoyaltyService) Redeem(ctx context.Context, p model.RedeemRequest) (*model.RewardRedemption, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	reward, err := s.loyaltyRepo.GetReward(ctx, p.RewardID, p.TenantID)
	if err != nil {
		return nil, err
	}
	if !reward.Active {
		return nil, fmt.Errorf("reward %q: %w", reward.Name, ErrRewardInactive)
	}

	if _, err := s.loyaltyRepo.GetEnrollment(ctx, p.EnrollmentID, p.TenantID); err != nil {
		return nil, err
	}

	var redemption *model.RewardRedemption
	err = s.loyaltyRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.loyaltyRepo.SpendPoints(ctx, p.EnrollmentID, reward.PointsCost); err != nil {
			return err
		}

		redemption, err = s.loyaltyRepo.CreateRedemption(ctx, &model.RewardRedemption{
			RewardID:     reward.ID,
			EnrollmentID: p.EnrollmentID,
			OrderID:      p.OrderID,
			PointsSpent:  reward.PointsCost,
		})
		if err != nil {
			return fmt.Errorf("create redemption: %w", err)
		}

		_, err = s.loyaltyRepo.CreateTransaction(ctx, &model.LoyaltyTransaction{
			EnrollmentID: p.EnrollmentID,
			Type:         model.LoyaltyTransactionRedeemed,
			Points:       -reward.PointsCost,
			Description:  fmt.Sprintf("Redeemed reward %s", reward.Name),
			OrderID:      p.OrderID,
			RedemptionID: &redemption.ID,
		})
		if err != nil {
			return fmt.Errorf("create ledger row: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return redemption, nil
}

func (s *LoyaltyService) GetBalance(ctx context.Context, enrollmentID, tenantID int64) (*model.CustomerLoyalty, error) {
	return s.loyaltyRepo.GetEnrollment(ctx, enrollmentID, tenantID)
}

func (s *LoyaltyService) ListTransactions(ctx context.Context, enrollmentID int64, limit, offset int) ([]*model.LoyaltyTransaction, int64, error) {
	return s.loyaltyRepo.ListTransactions(ctx, enrollmentID, limit, offset)
}
