package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/inventory_management_app/internal/adapters/locking"
	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/inventory_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/dto"
	"github.com/SscSPs/inventory_management_app/internal/platform/metrics"
)

const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"

	unknownProductName     = "Unknown Product"
	unknownProductCategory = "Unknown"

	// productLookupLimit bounds concurrent product fetches while enriching a listing.
	productLookupLimit = 4
)

// transactionService records purchases and sales and keeps the remote stock in step with them.
//
// Each mutating operation holds the product lock for its whole sequence. Any remote change
// is preceded by a pending stock adjustment committed together with the local write, so a
// remote failure after the local commit is picked up by the reconciler instead of being lost.
type transactionService struct {
	BaseService
	txnRepo portsrepo.TransactionRepositoryWithTx
	adjRepo portsrepo.StockAdjustmentRepositoryFacade
	stock   portssvc.StockLedgerClient
	locker  portssvc.ProductLocker
	now     func() time.Time
	newID   func() string
	tracer  trace.Tracer
}

// TransactionServiceOption configures optional collaborators of the transaction service.
type TransactionServiceOption func(*transactionService)

// WithProductLocker replaces the default in-process product lock.
func WithProductLocker(locker portssvc.ProductLocker) TransactionServiceOption {
	return func(s *transactionService) {
		if locker != nil {
			s.locker = locker
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) TransactionServiceOption {
	return func(s *transactionService) {
		s.now = now
	}
}

// WithIDGenerator overrides how transaction and adjustment ids are minted.
func WithIDGenerator(newID func() string) TransactionServiceOption {
	return func(s *transactionService) {
		s.newID = newID
	}
}

// NewTransactionService creates the transaction coordinator.
func NewTransactionService(
	txnRepo portsrepo.TransactionRepositoryWithTx,
	adjRepo portsrepo.StockAdjustmentRepositoryFacade,
	stock portssvc.StockLedgerClient,
	opts ...TransactionServiceOption,
) portssvc.TransactionSvcFacade {
	s := &transactionService{
		txnRepo: txnRepo,
		adjRepo: adjRepo,
		stock:   stock,
		locker:  locking.NewMemoryLocker(),
		now:     time.Now,
		newID:   uuid.NewString,
		tracer:  otel.Tracer("transaction-coordinator"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// validateTransactionInput collects every rule the request breaks so the caller sees them all at once.
func validateTransactionInput(txnType string, quantity int, unitPrice decimal.Decimal, details *string) (domain.TransactionType, error) {
	var problems []string
	t := domain.TransactionType(txnType)
	if !t.IsValid() {
		problems = append(problems, "TransactionType must be either 'Purchase' or 'Sale'")
	}
	if quantity <= 0 {
		problems = append(problems, "Quantity must be greater than 0")
	}
	switch {
	case !unitPrice.IsPositive():
		problems = append(problems, "UnitPrice must be greater than 0")
	case !domain.FitsPriceScale(unitPrice):
		problems = append(problems, fmt.Sprintf("UnitPrice cannot have more than %d decimal places", domain.PriceScale))
	case unitPrice.GreaterThan(domain.MaxUnitPrice):
		problems = append(problems, fmt.Sprintf("UnitPrice cannot exceed %s", domain.MaxUnitPrice))
	case quantity > 0 && unitPrice.Mul(decimal.NewFromInt(int64(quantity))).GreaterThan(domain.MaxTotalPrice):
		problems = append(problems, fmt.Sprintf("TotalPrice cannot exceed %s", domain.MaxTotalPrice))
	}
	if details != nil && utf8.RuneCountInString(*details) > domain.MaxDetailsLength {
		problems = append(problems, fmt.Sprintf("Details cannot exceed %d characters", domain.MaxDetailsLength))
	}
	if len(problems) > 0 {
		return "", apperrors.Validation(problems...)
	}
	return t, nil
}

// CreateTransaction records a purchase or sale and applies its stock effect.
func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest) (view *domain.TransactionView, err error) {
	ctx, span := s.tracer.Start(ctx, "coordinator.create", trace.WithAttributes(attribute.String("product.id", req.ProductID)))
	defer func() { s.endSaga(span, opCreate, err, false) }()

	txnType, err := validateTransactionInput(req.TransactionType, req.Quantity, req.UnitPrice, req.Details)
	if err != nil {
		return nil, err
	}
	if uuid.Validate(req.ProductID) != nil {
		return nil, apperrors.Validation("ProductId must be a valid identifier")
	}

	unlock, err := s.lockProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Remote steps are detached from request cancellation; the client timeout bounds each call.
	stepCtx := context.WithoutCancel(ctx)
	logger := s.sagaLogger(ctx, opCreate, req.ProductID, "")

	owed, err := s.settlePending(stepCtx, logger, req.ProductID)
	if err != nil {
		return nil, err
	}
	if txnType == domain.Sale && owed > 0 {
		return nil, stockStillOwed(owed)
	}

	product, err := s.stock.GetProduct(stepCtx, req.ProductID)
	if err != nil {
		logger.Warn("Product lookup failed", slog.String("error", err.Error()))
		return nil, classifyRemote(err)
	}

	if txnType == domain.Sale {
		avail, err := s.stock.CheckAvailability(stepCtx, req.ProductID, req.Quantity)
		if err != nil {
			logger.Warn("Stock availability check failed", slog.String("error", err.Error()))
			return nil, classifyRemote(err)
		}
		if !avail.Available {
			return nil, insufficientStock(avail)
		}
	}

	now := s.now().UTC()
	txn := domain.Transaction{
		ID:              s.newID(),
		ProductID:       req.ProductID,
		TransactionDate: now,
		TransactionType: txnType,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		Details:         req.Details,
		CreatedAt:       now,
	}
	if req.TransactionDate != nil {
		txn.TransactionDate = req.TransactionDate.UTC()
	}
	txn.RecomputeTotal()
	logger = logger.With(slog.String("transaction_id", txn.ID))

	qty, dir := txn.StockEffect()
	adj := s.newAdjustment(txn.ID, txn.ProductID, qty, dir, domain.OperationCreate)
	if err := s.txnRepo.CreateTransactionWithAdjustment(stepCtx, txn, adj); err != nil {
		logger.Error("Failed to persist transaction", slog.String("error", err.Error()))
		return nil, apperrors.Wrap(apperrors.KindStorageFailure, apperrors.MsgStorageFailure, err)
	}

	if err := s.stock.AdjustStock(stepCtx, txn.ProductID, qty, dir); err != nil {
		logger.Error("Stock update failed, removing transaction",
			slog.String("adjustment_id", adj.ID),
			slog.String("error", err.Error()))
		if revertErr := s.txnRepo.RevertTransactionCreate(stepCtx, txn.ID, adj.ID); revertErr != nil {
			// The pending adjustment survives with the row, so the reconciler brings stock in line with it.
			logger.Error("Failed to remove transaction after stock update failure",
				slog.String("adjustment_id", adj.ID),
				slog.String("error", revertErr.Error()))
		}
		return nil, apperrors.Wrap(apperrors.KindStockUpdateFailed, apperrors.MsgStockUpdateFailed, err)
	}
	s.markApplied(stepCtx, logger, adj.ID)

	v := newTransactionView(txn, product)
	v.CurrentStock = product.Stock + dir.Signed(qty)
	logger.Info("Transaction created", slog.String("transaction_type", string(txn.TransactionType)), slog.Int("quantity", txn.Quantity))
	return &v, nil
}

// UpdateTransaction reverses the stored stock effect, then applies the new one.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest) (view *domain.TransactionView, err error) {
	ctx, span := s.tracer.Start(ctx, "coordinator.update", trace.WithAttributes(attribute.String("transaction.id", transactionID)))
	defer func() { s.endSaga(span, opUpdate, err, view != nil && view.StockSyncPending) }()

	newType, err := validateTransactionInput(req.TransactionType, req.Quantity, req.UnitPrice, req.Details)
	if err != nil {
		return nil, err
	}

	current, err := s.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockProduct(ctx, current.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stepCtx := context.WithoutCancel(ctx)
	// Re-read under the lock; a concurrent update may have changed the effect we are about to reverse.
	if current, err = s.loadTransaction(stepCtx, transactionID); err != nil {
		return nil, err
	}
	logger := s.sagaLogger(ctx, opUpdate, current.ProductID, transactionID)

	owed, err := s.settlePending(stepCtx, logger, current.ProductID)
	if err != nil {
		return nil, err
	}
	if newType == domain.Sale && owed > 0 {
		return nil, stockStillOwed(owed)
	}

	origQty, origDir := current.StockEffect()
	if err := s.stock.AdjustStock(stepCtx, current.ProductID, origQty, origDir.Reverse()); err != nil {
		logger.Error("Failed to reverse original stock effect", slog.String("error", err.Error()))
		return nil, apperrors.Wrap(apperrors.KindStockUpdateFailed, apperrors.MsgStockUpdateFailed, err)
	}

	if newType == domain.Sale {
		avail, checkErr := s.stock.CheckAvailability(stepCtx, current.ProductID, req.Quantity)
		if checkErr != nil || !avail.Available {
			s.restoreEffect(stepCtx, logger, *current)
			if checkErr != nil {
				logger.Warn("Stock availability check failed", slog.String("error", checkErr.Error()))
				return nil, classifyRemote(checkErr)
			}
			return nil, insufficientStock(avail)
		}
	}

	updated := *current
	updated.TransactionType = newType
	updated.Quantity = req.Quantity
	updated.UnitPrice = req.UnitPrice
	updated.Details = req.Details
	if req.TransactionDate != nil {
		updated.TransactionDate = req.TransactionDate.UTC()
	}
	updated.RecomputeTotal()

	newQty, newDir := updated.StockEffect()
	adj := s.newAdjustment(updated.ID, updated.ProductID, newQty, newDir, domain.OperationUpdate)
	if err := s.txnRepo.UpdateTransactionWithAdjustment(stepCtx, updated, adj); err != nil {
		logger.Error("Failed to persist updated transaction", slog.String("error", err.Error()))
		s.restoreEffect(stepCtx, logger, *current)
		return nil, storageFailure(err)
	}

	pending := false
	if err := s.stock.AdjustStock(stepCtx, updated.ProductID, newQty, newDir); err != nil {
		logger.Error("Failed to apply new stock effect, left pending for reconciliation",
			slog.String("adjustment_id", adj.ID),
			slog.String("error", err.Error()))
		pending = true
	} else {
		s.markApplied(stepCtx, logger, adj.ID)
	}

	product, err := s.stock.GetProduct(stepCtx, updated.ProductID)
	if err != nil {
		logger.Warn("Failed to refresh product info", slog.String("error", err.Error()))
		product = nil
	}
	v := newTransactionView(updated, product)
	v.StockSyncPending = pending
	return &v, nil
}

// DeleteTransaction removes the transaction and reverses its stock effect.
func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string) (err error) {
	pending := false
	ctx, span := s.tracer.Start(ctx, "coordinator.delete", trace.WithAttributes(attribute.String("transaction.id", transactionID)))
	defer func() { s.endSaga(span, opDelete, err, pending) }()

	current, err := s.loadTransaction(ctx, transactionID)
	if err != nil {
		return err
	}

	unlock, err := s.lockProduct(ctx, current.ProductID)
	if err != nil {
		return err
	}
	defer unlock()

	stepCtx := context.WithoutCancel(ctx)
	if current, err = s.loadTransaction(stepCtx, transactionID); err != nil {
		return err
	}
	logger := s.sagaLogger(ctx, opDelete, current.ProductID, transactionID)

	qty, dir := current.StockEffect()
	adj := s.newAdjustment(current.ID, current.ProductID, qty, dir.Reverse(), domain.OperationDelete)
	if err := s.txnRepo.DeleteTransactionWithAdjustment(stepCtx, current.ID, adj); err != nil {
		logger.Error("Failed to delete transaction", slog.String("error", err.Error()))
		return storageFailure(err)
	}

	if err := s.stock.AdjustStock(stepCtx, current.ProductID, qty, dir.Reverse()); err != nil {
		logger.Error("Failed to reverse stock effect of deleted transaction, left pending for reconciliation",
			slog.String("adjustment_id", adj.ID),
			slog.String("error", err.Error()))
		pending = true
		return nil
	}
	s.markApplied(stepCtx, logger, adj.ID)

	logger.Info("Transaction deleted")
	return nil
}

// GetTransactionByID returns one transaction enriched with its product.
func (s *transactionService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.TransactionView, error) {
	txn, err := s.loadTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	views := s.enrich(ctx, []domain.Transaction{*txn})
	return &views[0], nil
}

// ListTransactions returns one page of transactions and the total match count.
func (s *transactionService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.TransactionView, int, error) {
	txns, total, err := s.txnRepo.ListTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, 0, apperrors.Wrap(apperrors.KindStorageFailure, "Error retrieving transactions", err)
	}
	return s.enrich(ctx, txns), total, nil
}

// GetProductHistory lists every transaction of a product with one shared product snapshot.
func (s *transactionService) GetProductHistory(ctx context.Context, productID string) ([]domain.TransactionView, error) {
	product, err := s.stock.GetProduct(ctx, productID)
	if err != nil {
		s.LogDebug(ctx, "Product lookup failed for history", slog.String("product_id", productID), slog.String("error", err.Error()))
		product = nil
	}

	txns, err := s.txnRepo.ListTransactionsByProduct(ctx, productID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load product history", slog.String("product_id", productID))
		return nil, apperrors.Wrap(apperrors.KindStorageFailure, "Error retrieving product history", err)
	}

	views := make([]domain.TransactionView, len(txns))
	for i, txn := range txns {
		views[i] = newTransactionView(txn, product)
	}
	return views, nil
}

// enrich attaches product snapshots, fetching each distinct product once. Failed lookups fall back to placeholders.
func (s *transactionService) enrich(ctx context.Context, txns []domain.Transaction) []domain.TransactionView {
	var ids []string
	seen := make(map[string]int)
	for _, txn := range txns {
		if _, ok := seen[txn.ProductID]; !ok {
			seen[txn.ProductID] = len(ids)
			ids = append(ids, txn.ProductID)
		}
	}

	products := make([]*domain.Product, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(productLookupLimit)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.stock.GetProduct(gctx, id)
			if err != nil {
				s.LogDebug(ctx, "Product lookup failed while enriching transactions", slog.String("product_id", id), slog.String("error", err.Error()))
				return nil
			}
			products[i] = p
			return nil
		})
	}
	_ = g.Wait()

	views := make([]domain.TransactionView, len(txns))
	for i, txn := range txns {
		views[i] = newTransactionView(txn, products[seen[txn.ProductID]])
	}
	return views
}

func newTransactionView(txn domain.Transaction, product *domain.Product) domain.TransactionView {
	v := domain.TransactionView{
		Transaction:     txn,
		ProductName:     unknownProductName,
		ProductCategory: unknownProductCategory,
	}
	if product != nil {
		v.ProductName = product.Name
		v.ProductCategory = product.Category
		v.CurrentStock = product.Stock
	}
	return v
}

func (s *transactionService) loadTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.New(apperrors.KindTransactionNotFound, apperrors.MsgTransactionNotFound)
		}
		s.LogError(ctx, err, "Failed to load transaction", slog.String("transaction_id", transactionID))
		return nil, apperrors.Wrap(apperrors.KindStorageFailure, "Error retrieving transaction", err)
	}
	return txn, nil
}

func (s *transactionService) lockProduct(ctx context.Context, productID string) (func(), error) {
	unlock, err := s.locker.Lock(ctx, productID)
	if err != nil {
		s.LogError(ctx, err, "Failed to acquire product lock", slog.String("product_id", productID))
		return nil, apperrors.Wrap(apperrors.KindStorageFailure, "Failed to acquire product lock", err)
	}
	return unlock, nil
}

func (s *transactionService) newAdjustment(txnID, productID string, qty int, dir domain.StockDirection, op domain.AdjustmentOperation) domain.StockAdjustment {
	now := s.now().UTC()
	return domain.StockAdjustment{
		ID:            s.newID(),
		TransactionID: &txnID,
		ProductID:     productID,
		Quantity:      qty,
		Direction:     dir,
		Operation:     op,
		Status:        domain.AdjustmentPending,
		AuditFields:   domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
}

// restoreEffect re-applies the stored effect after a speculative reversal.
// If the restore itself fails it is persisted for the reconciler.
func (s *transactionService) restoreEffect(ctx context.Context, logger *slog.Logger, txn domain.Transaction) {
	qty, dir := txn.StockEffect()
	err := s.stock.AdjustStock(ctx, txn.ProductID, qty, dir)
	if err == nil {
		return
	}

	adj := s.newAdjustment(txn.ID, txn.ProductID, qty, dir, domain.OperationRestore)
	logger.Error("Failed to restore original stock effect, left pending for reconciliation",
		slog.String("adjustment_id", adj.ID),
		slog.String("error", err.Error()))
	if saveErr := s.adjRepo.SaveStockAdjustment(ctx, adj); saveErr != nil {
		logger.Error("Failed to record pending restore, manual reconciliation required",
			slog.Int("quantity", qty),
			slog.String("direction", string(dir)),
			slog.String("error", saveErr.Error()))
	}
}

// settlePending applies the product's pending adjustments oldest first and stops at the first
// failure. It returns the units still owed to pending decreases; a sale must not take them.
func (s *transactionService) settlePending(ctx context.Context, logger *slog.Logger, productID string) (int, error) {
	pending, err := s.adjRepo.ListPendingAdjustmentsByProduct(ctx, productID)
	if err != nil {
		logger.Error("Failed to load pending stock adjustments", slog.String("error", err.Error()))
		return 0, apperrors.Wrap(apperrors.KindStorageFailure, "Error retrieving stock adjustments", err)
	}

	for i, adj := range pending {
		if err := s.stock.AdjustStock(ctx, adj.ProductID, adj.Quantity, adj.Direction); err != nil {
			logger.Warn("Pending stock adjustment still failing",
				slog.String("adjustment_id", adj.ID),
				slog.String("error", err.Error()))
			if recErr := s.adjRepo.RecordAdjustmentFailure(ctx, adj.ID, err.Error(), false); recErr != nil {
				logger.Error("Failed to record stock adjustment failure", slog.String("adjustment_id", adj.ID), slog.String("error", recErr.Error()))
			}
			owed := 0
			for _, rest := range pending[i:] {
				if rest.Direction == domain.Decrease {
					owed += rest.Quantity
				}
			}
			return owed, nil
		}
		s.markApplied(ctx, logger, adj.ID)
		metrics.ReconcileResults.WithLabelValues(string(domain.AdjustmentApplied)).Inc()
		logger.Info("Pending stock adjustment applied", slog.String("adjustment_id", adj.ID))
	}
	return 0, nil
}

func (s *transactionService) markApplied(ctx context.Context, logger *slog.Logger, adjustmentID string) {
	if err := s.adjRepo.MarkAdjustmentApplied(ctx, adjustmentID); err != nil {
		// Still pending in storage: the reconciler would apply it a second time.
		logger.Error("Stock adjustment applied but not marked", slog.String("adjustment_id", adjustmentID), slog.String("error", err.Error()))
	}
}

func (s *transactionService) sagaLogger(ctx context.Context, op, productID, transactionID string) *slog.Logger {
	logger := s.GetLogger(ctx).With(slog.String("operation", op), slog.String("product_id", productID))
	if transactionID != "" {
		logger = logger.With(slog.String("transaction_id", transactionID))
	}
	return logger
}

func (s *transactionService) endSaga(span trace.Span, op string, err error, pending bool) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = apperrors.KindOf(err).String()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case pending:
		outcome = "pending"
	}
	span.SetAttributes(attribute.String("saga.outcome", outcome))
	span.End()
	metrics.SagaOutcomes.WithLabelValues(op, outcome).Inc()
}

func stockStillOwed(units int) error {
	return apperrors.Wrap(apperrors.KindStockUpdateFailed, apperrors.MsgStockUpdateFailed,
		fmt.Errorf("%d units are still owed to pending stock adjustments", units))
}

func insufficientStock(avail domain.Availability) error {
	msg := avail.Reason
	if msg == "" {
		msg = apperrors.MsgInsufficientStock
	}
	return apperrors.New(apperrors.KindInsufficientStock, msg)
}

// classifyRemote keeps the kind chosen by the stock client and tags anything else as Unexpected.
func classifyRemote(err error) error {
	if apperrors.KindOf(err) == apperrors.KindUnknown {
		return apperrors.Wrap(apperrors.KindUnexpected, apperrors.MsgRemoteUnreachable, err)
	}
	return err
}

func storageFailure(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.New(apperrors.KindTransactionNotFound, apperrors.MsgTransactionNotFound)
	}
	return apperrors.Wrap(apperrors.KindStorageFailure, apperrors.MsgStorageFailure, err)
}
