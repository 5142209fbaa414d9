package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/inventory_management_app/internal/adapters/locking"
	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/core/services"
	"github.com/SscSPs/inventory_management_app/internal/dto"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *memoryStore
	ledger     *fakeLedger
	locker     *locking.MemoryLocker
	service    portssvc.TransactionSvcFacade
	reconciler *services.StockReconciler
	productID  string
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.productID = uuid.NewString()
	suite.store = newMemoryStore()
	suite.ledger = newFakeLedger(domain.Product{
		ID:       suite.productID,
		Name:     "Laptop",
		Category: "Electronics",
		Price:    decimal.NewFromInt(1000),
		Stock:    10,
		IsActive: true,
	})
	suite.locker = locking.NewMemoryLocker()
	suite.service = services.NewTransactionService(suite.store, suite.store, suite.ledger, services.WithProductLocker(suite.locker))
	suite.reconciler = services.NewStockReconciler(suite.store, suite.ledger, suite.locker, services.ReconcilerConfig{
		Interval:    time.Hour,
		Grace:       0,
		BatchSize:   10,
		MaxAttempts: 3,
	})
}

func (suite *TransactionServiceTestSuite) setStock(n int) {
	suite.ledger.mu.Lock()
	p := suite.ledger.products[suite.productID]
	p.Stock = n
	suite.ledger.products[suite.productID] = p
	suite.ledger.mu.Unlock()
}

func (suite *TransactionServiceTestSuite) create(txnType string, qty int, price string) (*domain.TransactionView, error) {
	return suite.service.CreateTransaction(suite.ctx, dto.CreateTransactionRequest{
		ProductID:       suite.productID,
		TransactionType: txnType,
		Quantity:        qty,
		UnitPrice:       decimal.RequireFromString(price),
	})
}

func (suite *TransactionServiceTestSuite) update(id, txnType string, qty int, price string) (*domain.TransactionView, error) {
	return suite.service.UpdateTransaction(suite.ctx, id, dto.UpdateTransactionRequest{
		TransactionType: txnType,
		Quantity:        qty,
		UnitPrice:       decimal.RequireFromString(price),
	})
}

func (suite *TransactionServiceTestSuite) TestCreate_PurchaseRaisesStock() {
	view, err := suite.create("Purchase", 5, "12.50")

	suite.Require().NoError(err)
	suite.Equal(15, suite.ledger.stockOf(suite.productID))
	suite.Equal(15, view.CurrentStock)
	suite.Equal("Laptop", view.ProductName)
	suite.Equal("Electronics", view.ProductCategory)
	suite.True(view.TotalPrice.Equal(decimal.RequireFromString("62.50")))
	suite.False(view.TransactionDate.IsZero())
	suite.Empty(suite.store.byStatus(domain.AdjustmentPending))

	applied := suite.store.byStatus(domain.AdjustmentApplied)
	suite.Require().Len(applied, 1)
	suite.Equal(domain.OperationCreate, applied[0].Operation)
	suite.Equal(domain.Increase, applied[0].Direction)
}

func (suite *TransactionServiceTestSuite) TestCreate_SaleLowersStock() {
	view, err := suite.create("Sale", 4, "1000")

	suite.Require().NoError(err)
	suite.Equal(6, suite.ledger.stockOf(suite.productID))
	suite.Equal(6, view.CurrentStock)
}

func (suite *TransactionServiceTestSuite) TestCreate_KeepsGivenTransactionDate() {
	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	view, err := suite.service.CreateTransaction(suite.ctx, dto.CreateTransactionRequest{
		ProductID:       suite.productID,
		TransactionDate: &when,
		TransactionType: "Purchase",
		Quantity:        1,
		UnitPrice:       decimal.NewFromInt(3),
	})

	suite.Require().NoError(err)
	suite.True(view.TransactionDate.Equal(when))
}

func (suite *TransactionServiceTestSuite) TestCreate_SaleInsufficientPersistsNothing() {
	suite.setStock(2)

	_, err := suite.create("Sale", 3, "10")

	suite.Equal(apperrors.KindInsufficientStock, apperrors.KindOf(err))
	suite.Equal("Insufficient stock. Available: 2, Required: 3", apperrors.MessageOf(err, ""))
	suite.Equal(0, suite.store.transactionCount())
	suite.Empty(suite.store.byStatus(""))
	suite.Equal(2, suite.ledger.stockOf(suite.productID))
}

func (suite *TransactionServiceTestSuite) TestCreate_ProductNotFound() {
	suite.ledger.remove(suite.productID)

	_, err := suite.create("Purchase", 1, "10")

	suite.Equal(apperrors.KindProductNotFound, apperrors.KindOf(err))
	suite.Equal(apperrors.MsgProductNotFound, apperrors.MessageOf(err, ""))
	suite.Equal(0, suite.store.transactionCount())
}

func (suite *TransactionServiceTestSuite) TestCreate_ValidationBeforeAnyRemoteCall() {
	_, err := suite.create("Refund", 0, "0")

	suite.Equal(apperrors.KindValidationFailed, apperrors.KindOf(err))
	suite.True(errors.Is(err, apperrors.ErrValidation))
	suite.Len(apperrors.DetailsOf(err), 3)
	gets, adjusts := suite.ledger.calls()
	suite.Zero(gets)
	suite.Zero(adjusts)
}

func (suite *TransactionServiceTestSuite) TestCreate_TypeIsCaseSensitive() {
	_, err := suite.create("purchase", 1, "1")

	suite.Equal(apperrors.KindValidationFailed, apperrors.KindOf(err))
}

func (suite *TransactionServiceTestSuite) TestCreate_AdjustFailureRemovesRow() {
	suite.ledger.failAdjust(errUnreachable)

	_, err := suite.create("Purchase", 5, "10")

	suite.Equal(apperrors.KindStockUpdateFailed, apperrors.KindOf(err))
	suite.Equal(apperrors.MsgStockUpdateFailed, apperrors.MessageOf(err, ""))
	suite.Equal(0, suite.store.transactionCount())
	suite.Empty(suite.store.byStatus(""))
	suite.Equal(10, suite.ledger.stockOf(suite.productID))

	all, total, err := suite.service.ListTransactions(suite.ctx, domain.TransactionFilter{})
	suite.Require().NoError(err)
	suite.Empty(all)
	suite.Zero(total)
}

func (suite *TransactionServiceTestSuite) TestCreate_FailedRevertIsReconciled() {
	suite.ledger.failAdjust(errUnreachable)
	suite.store.failRevert = errors.New("connection reset")

	_, err := suite.create("Purchase", 5, "10")

	suite.Equal(apperrors.KindStockUpdateFailed, apperrors.KindOf(err))
	suite.Equal(1, suite.store.transactionCount())
	suite.Len(suite.store.byStatus(domain.AdjustmentPending), 1)

	report, err := suite.reconciler.RunOnce(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(portssvc.ReconcileReport{Examined: 1, Applied: 1}, report)
	suite.Equal(15, suite.ledger.stockOf(suite.productID))
	suite.Empty(suite.store.byStatus(domain.AdjustmentPending))
}

func (suite *TransactionServiceTestSuite) TestCreate_StorageFailure() {
	suite.store.failCreate = errors.New("disk full")

	_, err := suite.create("Purchase", 5, "10")

	suite.Equal(apperrors.KindStorageFailure, apperrors.KindOf(err))
	suite.Equal(10, suite.ledger.stockOf(suite.productID))
	_, adjusts := suite.ledger.calls()
	suite.Zero(adjusts)
}

func (suite *TransactionServiceTestSuite) TestGetByID_AfterFailedCreateIsNotFound() {
	var minted []string
	svc := services.NewTransactionService(suite.store, suite.store, suite.ledger,
		services.WithProductLocker(suite.locker),
		services.WithIDGenerator(func() string {
			id := uuid.NewString()
			minted = append(minted, id)
			return id
		}))
	suite.ledger.failAdjust(errUnreachable)

	_, err := svc.CreateTransaction(suite.ctx, dto.CreateTransactionRequest{
		ProductID: suite.productID, TransactionType: "Sale", Quantity: 1, UnitPrice: decimal.NewFromInt(10),
	})
	suite.Require().Error(err)
	suite.Require().NotEmpty(minted)

	_, err = svc.GetTransactionByID(suite.ctx, minted[0])
	suite.Equal(apperrors.KindTransactionNotFound, apperrors.KindOf(err))
	suite.Equal(apperrors.MsgTransactionNotFound, apperrors.MessageOf(err, ""))
}

func (suite *TransactionServiceTestSuite) TestTotalAlwaysQuantityTimesPrice() {
	cases := []struct {
		qty   int
		price string
		total string
	}{
		{1, "0.01", "0.01"},
		{3, "19.99", "59.97"},
		{7, "1000", "7000"},
	}
	for _, tc := range cases {
		view, err := suite.create("Purchase", tc.qty, tc.price)
		suite.Require().NoError(err)
		suite.True(view.TotalPrice.Equal(decimal.RequireFromString(tc.total)), "create %d x %s", tc.qty, tc.price)

		updated, err := suite.update(view.ID, "Purchase", tc.qty+1, tc.price)
		suite.Require().NoError(err)
		want := decimal.RequireFromString(tc.price).Mul(decimal.NewFromInt(int64(tc.qty + 1)))
		suite.True(updated.TotalPrice.Equal(want), "update %d x %s", tc.qty+1, tc.price)
	}
}

func (suite *TransactionServiceTestSuite) TestUnitPriceMustFitStoredScale() {
	cases := []struct {
		price string
		qty   int
		want  string
	}{
		{"0.005", 3, "UnitPrice cannot have more than 2 decimal places"},
		{"0.004", 1, "UnitPrice cannot have more than 2 decimal places"},
		{"100000000", 1, "UnitPrice cannot exceed 99999999.99"},
		{"99999999.99", 1000, "TotalPrice cannot exceed 9999999999.99"},
	}
	for _, tc := range cases {
		_, err := suite.create("Purchase", tc.qty, tc.price)

		suite.Equal(apperrors.KindValidationFailed, apperrors.KindOf(err), tc.price)
		suite.Equal([]string{tc.want}, apperrors.DetailsOf(err), tc.price)
	}
	suite.Equal(0, suite.store.transactionCount())

	view, err := suite.create("Purchase", 2, "0.50")
	suite.Require().NoError(err)
	_, err = suite.update(view.ID, "Purchase", 3, "0.333")
	suite.Equal(apperrors.KindValidationFailed, apperrors.KindOf(err))
	_, adjusts := suite.ledger.calls()
	suite.Equal(1, adjusts)
}

func (suite *TransactionServiceTestSuite) TestUpdate_PurchaseFiveToThreeNetsThree() {
	suite.setStock(6)
	view, err := suite.create("Purchase", 5, "10")
	suite.Require().NoError(err)
	suite.Equal(11, suite.ledger.stockOf(suite.productID))

	updated, err := suite.update(view.ID, "Purchase", 3, "10")

	suite.Require().NoError(err)
	suite.Equal(9, suite.ledger.stockOf(suite.productID))
	suite.Equal(9, updated.CurrentStock)
	suite.Equal(3, updated.Quantity)
	suite.False(updated.StockSyncPending)
	suite.True(updated.CreatedAt.Equal(view.CreatedAt))
}

func (suite *TransactionServiceTestSuite) TestUpdate_PurchaseToSaleSwapsEffect() {
	view, err := suite.create("Purchase", 2, "10")
	suite.Require().NoError(err)

	_, err = suite.update(view.ID, "Sale", 3, "10")

	suite.Require().NoError(err)
	suite.Equal(7, suite.ledger.stockOf(suite.productID))
}

func (suite *TransactionServiceTestSuite) TestUpdate_InsufficientForNewSaleRestoresOriginal() {
	suite.setStock(0)
	view, err := suite.create("Purchase", 2, "10")
	suite.Require().NoError(err)

	_, err = suite.update(view.ID, "Sale", 5, "10")

	suite.Equal(apperrors.KindInsufficientStock, apperrors.KindOf(err))
	suite.Equal(2, suite.ledger.stockOf(suite.productID))
	stored, err := suite.service.GetTransactionByID(suite.ctx, view.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.Purchase, stored.TransactionType)
	suite.Equal(2, stored.Quantity)
}

func (suite *TransactionServiceTestSuite) TestUpdate_FailedRestoreIsRecorded() {
	suite.setStock(0)
	view, err := suite.create("Purchase", 2, "10")
	suite.Require().NoError(err)
	// reversal succeeds, restore fails
	suite.ledger.failAdjust(nil, errUnreachable)

	_, err = suite.update(view.ID, "Sale", 5, "10")

	suite.Equal(apperrors.KindInsufficientStock, apperrors.KindOf(err))
	suite.Equal(0, suite.ledger.stockOf(suite.productID))
	pending := suite.store.byStatus(domain.AdjustmentPending)
	suite.Require().Len(pending, 1)
	suite.Equal(domain.OperationRestore, pending[0].Operation)
	suite.Equal(domain.Increase, pending[0].Direction)

	_, err = suite.reconciler.RunOnce(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(2, suite.ledger.stockOf(suite.productID))
}

func (suite *TransactionServiceTestSuite) TestUpdate_ReverseFailureChangesNothing() {
	view, err := suite.create("Purchase", 2, "10")
	suite.Require().NoError(err)
	suite.ledger.failAdjust(errUnreachable)

	_, err = suite.update(view.ID, "Purchase", 8, "10")

	suite.Equal(apperrors.KindStockUpdateFailed, apperrors.KindOf(err))
	suite.Equal(12, suite.ledger.stockOf(suite.productID))
	stored, err := suite.service.GetTransactionByID(suite.ctx, view.ID)
	suite.Require().NoError(err)
	suite.Equal(2, stored.Quantity)
}

func (suite *TransactionServiceTestSuite) TestUpdate_ForwardFailureLeftPendingThenReconciled() {
	view, err := suite.create("Purchase", 5, "10")
	suite.Require().NoError(err)
	suite.ledger.failAdjust(nil, errUnreachable)

	updated, err := suite.update(view.ID, "Purchase", 3, "10")

	suite.Require().NoError(err)
	suite.True(updated.StockSyncPending)
	suite.Equal(10, suite.ledger.stockOf(suite.productID))
	suite.Len(suite.store.byStatus(domain.AdjustmentPending), 1)

	report, err := suite.reconciler.RunOnce(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(1, report.Applied)
	suite.Equal(13, suite.ledger.stockOf(suite.productID))
}

// leavePendingDecrease turns a 5 unit sale into a 3 unit sale whose forward call fails,
// leaving stock at 10 with 3 units owed to a pending decrease.
func (suite *TransactionServiceTestSuite) leavePendingDecrease() {
	view, err := suite.create("Sale", 5, "10")
	suite.Require().NoError(err)
	suite.ledger.failAdjust(nil, errUnreachable)

	updated, err := suite.update(view.ID, "Sale", 3, "10")
	suite.Require().NoError(err)
	suite.Require().True(updated.StockSyncPending)
	suite.Require().Equal(10, suite.ledger.stockOf(suite.productID))
}

func (suite *TransactionServiceTestSuite) TestSale_SettlesPendingDecreaseBeforeCheck() {
	suite.leavePendingDecrease()

	_, err := suite.create("Sale", 10, "10")

	suite.Equal(apperrors.KindInsufficientStock, apperrors.KindOf(err))
	suite.Equal("Insufficient stock. Available: 7, Required: 10", apperrors.MessageOf(err, ""))
	suite.Equal(7, suite.ledger.stockOf(suite.productID))
	suite.Empty(suite.store.byStatus(domain.AdjustmentPending))

	report, err := suite.reconciler.RunOnce(suite.ctx)
	suite.Require().NoError(err)
	suite.Zero(report.Examined)
	suite.Equal(7, suite.ledger.stockOf(suite.productID))
}

func (suite *TransactionServiceTestSuite) TestSale_RefusedWhileDecreaseStillOwed() {
	suite.leavePendingDecrease()
	suite.ledger.failAdjust(errUnreachable)

	_, err := suite.create("Sale", 1, "10")

	suite.Equal(apperrors.KindStockUpdateFailed, apperrors.KindOf(err))
	suite.Equal(apperrors.MsgStockUpdateFailed, apperrors.MessageOf(err, ""))
	suite.Equal(1, suite.store.transactionCount())
	suite.Equal(10, suite.ledger.stockOf(suite.productID))
	pending := suite.store.byStatus(domain.AdjustmentPending)
	suite.Require().Len(pending, 1)
	suite.Equal(1, pending[0].Attempts)

	report, err := suite.reconciler.RunOnce(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(portssvc.ReconcileReport{Examined: 1, Applied: 1}, report)
	suite.Equal(7, suite.ledger.stockOf(suite.productID))
}

func (suite *TransactionServiceTestSuite) TestUpdate_ToSaleRefusedWhileDecreaseStillOwed() {
	other, err := suite.create("Purchase", 1, "10")
	suite.Require().NoError(err)
	suite.setStock(10)
	suite.leavePendingDecrease()
	suite.ledger.failAdjust(errUnreachable)

	_, err = suite.update(other.ID, "Sale", 2, "10")

	suite.Equal(apperrors.KindStockUpdateFailed, apperrors.KindOf(err))
	suite.Equal(10, suite.ledger.stockOf(suite.productID))
	suite.Len(suite.store.byStatus(domain.AdjustmentPending), 1)
	stored, err := suite.service.GetTransactionByID(suite.ctx, other.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.Purchase, stored.TransactionType)
}

func (suite *TransactionServiceTestSuite) TestPurchase_ProceedsWhileDecreaseStillOwed() {
	suite.leavePendingDecrease()
	suite.ledger.failAdjust(errUnreachable)

	_, err := suite.create("Purchase", 2, "10")

	suite.Require().NoError(err)
	suite.Equal(12, suite.ledger.stockOf(suite.productID))

	_, err = suite.reconciler.RunOnce(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(9, suite.ledger.stockOf(suite.productID))
	suite.Empty(suite.store.byStatus(domain.AdjustmentPending))
}

func (suite *TransactionServiceTestSuite) TestUpdate_NotFound() {
	_, err := suite.update(uuid.NewString(), "Purchase", 1, "1")

	suite.Equal(apperrors.KindTransactionNotFound, apperrors.KindOf(err))
	_, adjusts := suite.ledger.calls()
	suite.Zero(adjusts)
}

func (suite *TransactionServiceTestSuite) TestDelete_PurchaseRestoresStock() {
	suite.setStock(6)
	view, err := suite.create("Purchase", 4, "10")
	suite.Require().NoError(err)
	suite.Equal(10, suite.ledger.stockOf(suite.productID))

	err = suite.service.DeleteTransaction(suite.ctx, view.ID)

	suite.Require().NoError(err)
	suite.Equal(6, suite.ledger.stockOf(suite.productID))
	_, err = suite.service.GetTransactionByID(suite.ctx, view.ID)
	suite.Equal(apperrors.KindTransactionNotFound, apperrors.KindOf(err))
}

func (suite *TransactionServiceTestSuite) TestDelete_RemoteFailureLeftPendingThenReconciled() {
	view, err := suite.create("Sale", 4, "10")
	suite.Require().NoError(err)
	suite.ledger.failAdjust(errUnreachable)

	err = suite.service.DeleteTransaction(suite.ctx, view.ID)

	suite.Require().NoError(err)
	suite.Equal(0, suite.store.transactionCount())
	suite.Equal(6, suite.ledger.stockOf(suite.productID))
	pending := suite.store.byStatus(domain.AdjustmentPending)
	suite.Require().Len(pending, 1)
	suite.Equal(domain.OperationDelete, pending[0].Operation)
	suite.Require().NotNil(pending[0].TransactionID)
	suite.Equal(view.ID, *pending[0].TransactionID)

	_, err = suite.reconciler.RunOnce(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(10, suite.ledger.stockOf(suite.productID))
}

func (suite *TransactionServiceTestSuite) TestDelete_NotFound() {
	err := suite.service.DeleteTransaction(suite.ctx, uuid.NewString())

	suite.Equal(apperrors.KindTransactionNotFound, apperrors.KindOf(err))
}

func (suite *TransactionServiceTestSuite) TestSellOutThenInsufficient() {
	_, err := suite.create("Sale", 10, "5")
	suite.Require().NoError(err)
	suite.Equal(0, suite.ledger.stockOf(suite.productID))

	_, err = suite.create("Sale", 1, "5")

	suite.Equal(apperrors.KindInsufficientStock, apperrors.KindOf(err))
	history, err := suite.service.GetProductHistory(suite.ctx, suite.productID)
	suite.Require().NoError(err)
	suite.Len(history, 1)
}

func (suite *TransactionServiceTestSuite) TestReadPathsDoNotMutate() {
	view, err := suite.create("Purchase", 2, "10")
	suite.Require().NoError(err)
	_, adjustsBefore := suite.ledger.calls()
	adjsBefore := len(suite.store.byStatus(""))

	_, err = suite.service.GetTransactionByID(suite.ctx, view.ID)
	suite.Require().NoError(err)
	_, _, err = suite.service.ListTransactions(suite.ctx, domain.TransactionFilter{Page: 1, PageSize: 10})
	suite.Require().NoError(err)
	_, err = suite.service.GetProductHistory(suite.ctx, suite.productID)
	suite.Require().NoError(err)

	_, adjustsAfter := suite.ledger.calls()
	suite.Equal(adjustsBefore, adjustsAfter)
	suite.Equal(adjsBefore, len(suite.store.byStatus("")))
	suite.Equal(1, suite.store.transactionCount())
	suite.Equal(12, suite.ledger.stockOf(suite.productID))
}

func (suite *TransactionServiceTestSuite) TestList_FetchesEachProductOnce() {
	other := domain.Product{ID: uuid.NewString(), Name: "Mouse", Category: "Accessories", Stock: 50}
	suite.ledger.products[other.ID] = other

	for i := 0; i < 3; i++ {
		_, err := suite.create("Purchase", 1, "1")
		suite.Require().NoError(err)
	}
	_, err := suite.service.CreateTransaction(suite.ctx, dto.CreateTransactionRequest{
		ProductID: other.ID, TransactionType: "Sale", Quantity: 1, UnitPrice: decimal.NewFromInt(1),
	})
	suite.Require().NoError(err)
	getsBefore, _ := suite.ledger.calls()

	views, total, err := suite.service.ListTransactions(suite.ctx, domain.TransactionFilter{Page: 1, PageSize: 10})

	suite.Require().NoError(err)
	suite.Equal(4, total)
	suite.Len(views, 4)
	getsAfter, _ := suite.ledger.calls()
	suite.Equal(2, getsAfter-getsBefore)
	for _, v := range views {
		if v.ProductID == other.ID {
			suite.Equal("Mouse", v.ProductName)
		} else {
			suite.Equal("Laptop", v.ProductName)
		}
	}
}

func (suite *TransactionServiceTestSuite) TestList_OutOfRangePageIsEmptyWithTotals() {
	_, err := suite.create("Purchase", 1, "1")
	suite.Require().NoError(err)

	views, total, err := suite.service.ListTransactions(suite.ctx, domain.TransactionFilter{Page: 5, PageSize: 10})

	suite.Require().NoError(err)
	suite.Empty(views)
	suite.Equal(1, total)
}

func (suite *TransactionServiceTestSuite) TestHistory_UnknownProductPlaceholders() {
	_, err := suite.create("Purchase", 1, "1")
	suite.Require().NoError(err)
	suite.ledger.remove(suite.productID)

	history, err := suite.service.GetProductHistory(suite.ctx, suite.productID)

	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	suite.Equal("Unknown Product", history[0].ProductName)
	suite.Equal("Unknown", history[0].ProductCategory)
	suite.Zero(history[0].CurrentStock)
}

func (suite *TransactionServiceTestSuite) TestConcurrentSalesAreSerialized() {
	suite.setStock(5)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.create("Sale", 1, "1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		// Under the lock every loser is turned away by the availability check, never by the ledger.
		suite.Equal(apperrors.KindInsufficientStock, apperrors.KindOf(err))
	}
	suite.Equal(5, succeeded)
	suite.Equal(0, suite.ledger.stockOf(suite.productID))
	suite.Equal(5, suite.store.transactionCount())
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}
