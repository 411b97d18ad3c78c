package model

import (
	"errors"
	"time"
)

type LoyaltyProgram struct {
	ID       int64  `json:"id"`
	TenantID int64  `json:"tenant_id"`
	Name     string `json:"name"`
	// PointsPerUnit is points awarded per whole major currency unit spent.
	PointsPerUnit int  `json:"points_per_unit"`
	Active        bool `json:"active"`
}

// LoyaltyTier is a bracket unlocked by lifetime earned points, independent
// of the spendable balance.
type LoyaltyTier struct {
	ID        int64  `json:"id"`
	ProgramID int64  `json:"program_id"`
	Name      string `json:"name"`
	MinPoints int64  `json:"min_points"`
}

// CustomerLoyalty is one enrollment of a customer in a program.
// PointsBalance only decreases via redemption and only increases via
// award; TotalPointsEarned is monotonic.
type CustomerLoyalty struct {
	ID                int64     `json:"id"`
	TenantID          int64     `json:"tenant_id"`
	CustomerID        int64     `json:"customer_id"`
	ProgramID         int64     `json:"program_id"`
	TierID            *int64    `json:"tier_id,omitempty"`
	PointsBalance     int64     `json:"points_balance"`
	TotalPointsEarned int64     `json:"total_points_earned"`
	CreatedAt         time.Time `json:"created_at"`
}

type LoyaltyTransactionType string

const (
	LoyaltyTransactionEarned   LoyaltyTransactionType = "earned"
	LoyaltyTransactionRedeemed LoyaltyTransactionType = "redeemed"
)

// LoyaltyTransaction is the append-only ledger row balances reconcile
// against. Points is signed: positive for awards, negative for redemptions.
type LoyaltyTransaction struct {
	ID           int64                  `json:"id"`
	EnrollmentID int64                  `json:"enrollment_id"`
	Type         LoyaltyTransactionType `json:"type"`
	Points       int64                  `json:"points"`
	Description  string                 `json:"description"`
	OrderID      *int64                 `json:"order_id,omitempty"`
	RedemptionID *int64                 `json:"redemption_id,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

type Reward struct {
	ID         int64  `json:"id"`
	TenantID   int64  `json:"tenant_id"`
	Name       string `json:"name"`
	PointsCost int64  `json:"points_cost"`
	Active     bool   `json:"active"`
}

type RewardRedemption struct {
	ID           int64     `json:"id"`
	RewardID     int64     `json:"reward_id"`
	EnrollmentID int64     `json:"enrollment_id"`
	OrderID      *int64    `json:"order_id,omitempty"`
	PointsSpent  int64     `json:"points_spent"`
	CreatedAt    time.Time `json:"created_at"`
}

type EnrollRequest struct {
	TenantID   int64
	CustomerID int64
	ProgramID  int64
}

func (r EnrollRequest) Validate() error {
	if r.TenantID == 0 {
		return errors.New("tenant_id is required")
	}
	if r.CustomerID == 0 {
		return errors.New("customer_id is required")
	}
	if r.ProgramID == 0 {
		return errors.New("program_id is required")
	}
	return nil
}

type RedeemRequest struct {
	TenantID     int64
	EnrollmentID int64
	RewardID     int64
	OrderID      *int64
}

func (r RedeemRequest) Validate() error {
	if r.TenantID == 0 {
		return errors.New("tenant_id is required")
	}
	if r.EnrollmentID == 0 {
		return errors.New("enrollment_id is required")
	}
	if r.RewardID == 0 {
		return errors.New("reward_id is required")
	}
	return nil
}
