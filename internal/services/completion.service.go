package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comanda-pos/comanda/internal/model"
	"github.com/comanda-pos/comanda/internal/repository"
	"github.com/comanda-pos/comanda/pkg/logger"
	"github.com/comanda-pos/comanda/pkg/redis"
)

const completionLockTTL = 30 * time.Second

// RecipeBook is the ingredient-mapping collaborator: which stock items a
// menu item consumes, per unit sold.
type RecipeBook interface {
	Recipe(ctx context.Context, tenantID, menuItemID int64) ([]model.RecipeLine, error)
}

type InventoryRepository interface {
	RecordConsumption(ctx context.Context, itemID int64, quantity float64, orderID int64) error
}

// CompletionOrderRepository is the slice of the order repository the
// orchestrator needs.
type CompletionOrderRepository interface {
	GetByID(ctx context.Context, id, tenantID int64) (*model.Order, error)
	MarkInventoryDeducted(ctx context.Context, id, tenantID int64) error
}

// LoyaltyAwarder is the slice of the loyalty service completion needs.
type LoyaltyAwarder interface {
	Award(ctx context.Context, tenantID, customerID, orderID, orderTotal int64, orderNumber string) error
}

// CompletionService runs the side effects of an order reaching completed:
// stock deduction and loyalty award. Every step is idempotent so the same
// order can be replayed after a crash or queue redelivery without double
// charging stock or points.
type CompletionService struct {
	orderRepo     CompletionOrderRepository
	inventoryRepo InventoryRepository
	recipes       RecipeBook
	loyalty       LoyaltyAwarder
	cache         redis.RedisAdapter
}

func NewCompletionService(orderRepo CompletionOrderRepository, inventoryRepo InventoryRepository, recipes RecipeBook, loyalty LoyaltyAwarder, cache redis.RedisAdapter) *CompletionService {
	return &CompletionService{
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		recipes:       recipes,
		loyalty:       loyalty,
		cache:         cache,
	}
}

func (s *CompletionService) Complete(ctx context.Context, orderID, tenantID int64) error {
	if s.cache != nil {
		ok, err := s.cache.SetNX(completionLockKey(orderID), []byte("1"), completionLockTTL)
		if err != nil {
			logger.Warn("completion lock unavailable, proceeding without it",
				"order_id", orderID,
				"error", err)
		} else if !ok {
			logger.Info("completion already in flight, skipping",
				"order_id", orderID)
			return nil
		} else {
			defer func() {
				if err := s.cache.Del(completionLockKey(orderID)); err != nil {
					logger.Warn("failed to release completion lock",
						"order_id", orderID,
						"error", err)
				}
			}()
		}
	}

	order, err := s.orderRepo.GetByID(ctx, orderID, tenantID)
	if err != nil {
		return err
	}

	if err := s.deductInventory(ctx, order); err != nil {
		return fmt.Errorf("deduct inventory: %w", err)
	}

	if err := s.awardLoyalty(ctx, order); err != nil {
		return fmt.Errorf("award loyalty: %w", err)
	}

	return nil
}

// deductInventory records one consumption movement per ingredient of every
// line item, then flips the order's inventory_deducted flag. The flag is
// checked up front and set via a guarded update, so losing a race to a
// concurrent run leaves the stock untouched.
func (s *CompletionService) deductInventory(ctx context.Context, order *model.Order) error {
	if order.InventoryDeducted {
		logger.Info("inventory already deducted, skipping",
			"order_id", order.ID)
		return nil
	}

	for _, item := range order.Items {
		lines, err := s.recipes.Recipe(ctx, order.TenantID, item.MenuItemID)
		if err != nil {
			return fmt.Errorf("recipe for item %d: %w", item.MenuItemID, err)
		}
		for _, line := range lines {
			quantity := line.Quantity * float64(item.Quantity)
			if err := s.inventoryRepo.RecordConsumption(ctx, line.IngredientID, quantity, order.ID); err != nil {
				return fmt.Errorf("consume ingredient %d: %w", line.IngredientID, err)
			}
		}
	}

	err := s.orderRepo.MarkInventoryDeducted(ctx, order.ID, order.TenantID)
	if errors.Is(err, repository.ErrAlreadyDeducted) {
		logger.Warn("concurrent completion already marked inventory deducted",
			"order_id", order.ID)
		return nil
	}
	return err
}

// awardLoyalty hands off to the loyalty subsystem when the order belongs
// to a customer. No enrollment or no active program is a normal outcome,
// not an error.
func (s *CompletionService) awardLoyalty(ctx context.Context, order *model.Order) error {
	if order.CustomerID == nil {
		return nil
	}

	err := s.loyalty.Award(ctx, order.TenantID, *order.CustomerID, order.ID, order.Total, order.OrderNumber)
	if errors.Is(err, repository.ErrProgramNotFound) || errors.Is(err, repository.ErrEnrollmentNotFound) {
		return nil
	}
	return err
}

func completionLockKey(orderID int64) string {
	return fmt.Sprintf("completion:lock:%d", orderID)
}
