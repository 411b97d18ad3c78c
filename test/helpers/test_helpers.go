package helpers

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/comanda-pos/comanda/internal/repository"
	"github.com/comanda-pos/comanda/pkg/pg"
	"github.com/comanda-pos/comanda/pkg/redis"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.OrderEntity{},
		&repository.OrderItemEntity{},
		&repository.PaymentEntity{},
		&repository.TableEntity{},
		&repository.TableSessionEntity{},
		&repository.LoyaltyProgramEntity{},
		&repository.LoyaltyTierEntity{},
		&repository.CustomerLoyaltyEntity{},
		&repository.LoyaltyTransactionEntity{},
		&repository.RewardEntity{},
		&repository.RewardRedemptionEntity{},
		&repository.InventoryItemEntity{},
		&repository.InventoryMovementEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Unique connection name per test; the adapter is cached globally by name.
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	adapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestTable(t *testing.T, db *pg.DB, tenantID, branchID int64, number int) *repository.TableEntity {
	ctx := context.Background()
	table := &repository.TableEntity{
		TenantID: tenantID,
		BranchID: branchID,
		Number:   number,
		Status:   "available",
	}
	err := db.Write(ctx).Create(table).Error
	require.NoError(t, err)
	return table
}

func CreateTestSession(t *testing.T, db *pg.DB, tenantID, branchID, tableID int64, status string) *repository.TableSessionEntity {
	ctx := context.Background()
	session := &repository.TableSessionEntity{
		TenantID:     tenantID,
		BranchID:     branchID,
		TableID:      tableID,
		Status:       status,
		CustomerName: "Test Customer",
		Token:        uuid.NewString(),
		StartedAt:    time.Now(),
	}
	err := db.Write(ctx).Create(session).Error
	require.NoError(t, err)
	return session
}

func CreateTestProgram(t *testing.T, db *pg.DB, tenantID int64, pointsPerUnit int) *repository.LoyaltyProgramEntity {
	ctx := context.Background()
	program := &repository.LoyaltyProgramEntity{
		TenantID:      tenantID,
		Name:          "Test Rewards",
		PointsPerUnit: pointsPerUnit,
		Active:        true,
	}
	err := db.Write(ctx).Create(program).Error
	require.NoError(t, err)
	return program
}

func CreateTestTier(t *testing.T, db *pg.DB, programID int64, name string, minPoints int64) *repository.LoyaltyTierEntity {
	ctx := context.Background()
	tier := &repository.LoyaltyTierEntity{
		ProgramID: programID,
		Name:      name,
		MinPoints: minPoints,
	}
	err := db.Write(ctx).Create(tier).Error
	require.NoError(t, err)
	return tier
}

func CreateTestInventoryItem(t *testing.T, db *pg.DB, tenantID int64, name, unit string, stock float64) *repository.InventoryItemEntity {
	ctx := context.Background()
	item := &repository.InventoryItemEntity{
		TenantID:     tenantID,
		Name:         name,
		Unit:         unit,
		CurrentStock: stock,
	}
	err := db.Write(ctx).Create(item).Error
	require.NoError(t, err)
	return item
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
