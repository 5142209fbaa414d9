package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/inventory_management_app/internal/adapters/locking"
	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/core/services"
)

func pendingAdjustment(productID string, qty int, dir domain.StockDirection, attempts int, createdAt time.Time) domain.StockAdjustment {
	txnID := uuid.NewString()
	return domain.StockAdjustment{
		ID:            uuid.NewString(),
		TransactionID: &txnID,
		ProductID:     productID,
		Quantity:      qty,
		Direction:     dir,
		Operation:     domain.OperationUpdate,
		Status:        domain.AdjustmentPending,
		Attempts:      attempts,
		AuditFields:   domain.AuditFields{CreatedAt: createdAt, UpdatedAt: createdAt},
	}
}

func newReconcilerFixture(stock int, cfg services.ReconcilerConfig) (*memoryStore, *fakeLedger, *services.StockReconciler, string) {
	productID := uuid.NewString()
	store := newMemoryStore()
	ledger := newFakeLedger(domain.Product{ID: productID, Name: "Desk", Category: "Furniture", Stock: stock})
	return store, ledger, services.NewStockReconciler(store, ledger, locking.NewMemoryLocker(), cfg), productID
}

func TestReconciler_AppliesOldestFirst(t *testing.T) {
	store, ledger, r, productID := newReconcilerFixture(1, services.ReconcilerConfig{MaxAttempts: 3})
	old := time.Now().Add(-2 * time.Minute)
	// Out of order the decrease would be refused.
	require.NoError(t, store.SaveStockAdjustment(context.Background(), pendingAdjustment(productID, 4, domain.Increase, 0, old)))
	require.NoError(t, store.SaveStockAdjustment(context.Background(), pendingAdjustment(productID, 5, domain.Decrease, 0, old.Add(time.Second))))

	report, err := r.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, portssvc.ReconcileReport{Examined: 2, Applied: 2}, report)
	assert.Equal(t, 0, ledger.stockOf(productID))
}

func TestReconciler_RecordsFailureAndAbandonsAtMaxAttempts(t *testing.T) {
	store, ledger, r, productID := newReconcilerFixture(10, services.ReconcilerConfig{MaxAttempts: 3})
	old := time.Now().Add(-time.Minute)
	retrying := pendingAdjustment(productID, 1, domain.Increase, 0, old)
	lastChance := pendingAdjustment(productID, 1, domain.Increase, 2, old.Add(time.Second))
	require.NoError(t, store.SaveStockAdjustment(context.Background(), retrying))
	require.NoError(t, store.SaveStockAdjustment(context.Background(), lastChance))
	ledger.failAdjust(errUnreachable, errUnreachable)

	report, err := r.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, portssvc.ReconcileReport{Examined: 2, Failed: 1, Abandoned: 1}, report)

	got, err := store.FindStockAdjustmentByID(context.Background(), retrying.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdjustmentPending, got.Status)
	assert.Equal(t, 1, got.Attempts)
	require.NotNil(t, got.LastError)
	assert.Contains(t, *got.LastError, apperrors.MsgRemoteUnreachable)

	got, err = store.FindStockAdjustmentByID(context.Background(), lastChance.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AdjustmentAbandoned, got.Status)
	assert.Equal(t, 10, ledger.stockOf(productID))
}

func TestReconciler_SkipsAdjustmentsInsideGracePeriod(t *testing.T) {
	store, ledger, r, productID := newReconcilerFixture(10, services.ReconcilerConfig{Grace: time.Hour})
	require.NoError(t, store.SaveStockAdjustment(context.Background(), pendingAdjustment(productID, 3, domain.Increase, 0, time.Now())))

	report, err := r.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Zero(t, report.Examined)
	assert.Equal(t, 10, ledger.stockOf(productID))
}

func TestReconciler_StartStopsWithContext(t *testing.T) {
	_, _, r, _ := newReconcilerFixture(0, services.ReconcilerConfig{Interval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- r.Start(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}

func TestReconciler_ListAdjustments(t *testing.T) {
	store, _, r, productID := newReconcilerFixture(0, services.ReconcilerConfig{})
	for i := 0; i < 3; i++ {
		require.NoError(t, store.SaveStockAdjustment(context.Background(), pendingAdjustment(productID, 1, domain.Increase, 0, time.Now())))
	}

	adjs, _, err := r.ListAdjustments(context.Background(), domain.AdjustmentPending, 2, nil)
	require.NoError(t, err)
	assert.Len(t, adjs, 2)

	_, _, err = r.ListAdjustments(context.Background(), domain.AdjustmentStatus("stuck"), 10, nil)
	assert.Equal(t, apperrors.KindValidationFailed, apperrors.KindOf(err))
}
