package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SscSPs/inventory_management_app/internal/apperrors"
	"github.com/SscSPs/inventory_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/inventory_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/inventory_management_app/internal/core/ports/services"
	"github.com/SscSPs/inventory_management_app/internal/utils/pagination"
)

// memoryStore is an in-memory transaction store with the stock adjustment table beside it.
type memoryStore struct {
	mu   sync.Mutex
	txns map[string]domain.Transaction
	adjs map[string]domain.StockAdjustment

	failCreate error
	failRevert error
}

var (
	_ portsrepo.TransactionRepositoryWithTx     = (*memoryStore)(nil)
	_ portsrepo.StockAdjustmentRepositoryFacade = (*memoryStore)(nil)
)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		txns: make(map[string]domain.Transaction),
		adjs: make(map[string]domain.StockAdjustment),
	}
}

func (m *memoryStore) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }

func (m *memoryStore) Commit(ctx context.Context, tx pgx.Tx) error { return nil }

func (m *memoryStore) Rollback(ctx context.Context, tx pgx.Tx) error { return nil }

func (m *memoryStore) InTx(ctx context.Context, fn func(pgx.Tx) error) error { return fn(nil) }

func (m *memoryStore) FindTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.txns[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &txn, nil
}

func (m *memoryStore) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, int, error) {
	m.mu.Lock()
	var all []domain.Transaction
	for _, txn := range m.txns {
		if filter.ProductID == "" || txn.ProductID == filter.ProductID {
			all = append(all, txn)
		}
	}
	m.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].TransactionDate.After(all[j].TransactionDate) })
	page := pagination.NewPage(filter.Page, filter.PageSize)
	if page.Offset() >= len(all) {
		return []domain.Transaction{}, len(all), nil
	}
	end := page.Offset() + page.Size
	if end > len(all) {
		end = len(all)
	}
	return all[page.Offset():end], len(all), nil
}

func (m *memoryStore) ListTransactionsByProduct(ctx context.Context, productID string) ([]domain.Transaction, error) {
	txns, _, err := m.ListTransactions(ctx, domain.TransactionFilter{ProductID: productID, PageSize: pagination.MaxPageSize})
	return txns, err
}

func (m *memoryStore) CreateTransactionWithAdjustment(ctx context.Context, txn domain.Transaction, adj domain.StockAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	m.txns[txn.ID] = txn
	m.adjs[adj.ID] = adj
	return nil
}

func (m *memoryStore) UpdateTransactionWithAdjustment(ctx context.Context, txn domain.Transaction, adj domain.StockAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[txn.ID]; !ok {
		return apperrors.ErrNotFound
	}
	m.txns[txn.ID] = txn
	m.adjs[adj.ID] = adj
	return nil
}

func (m *memoryStore) DeleteTransactionWithAdjustment(ctx context.Context, id string, adj domain.StockAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txns[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.txns, id)
	m.adjs[adj.ID] = adj
	return nil
}

func (m *memoryStore) RevertTransactionCreate(ctx context.Context, txnID, adjID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRevert != nil {
		return m.failRevert
	}
	delete(m.txns, txnID)
	delete(m.adjs, adjID)
	return nil
}

func (m *memoryStore) FindStockAdjustmentByID(ctx context.Context, id string) (*domain.StockAdjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	adj, ok := m.adjs[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &adj, nil
}

func (m *memoryStore) ListDueAdjustments(ctx context.Context, cutoff time.Time, limit int) ([]domain.StockAdjustment, error) {
	due := m.byStatus(domain.AdjustmentPending)
	out := due[:0]
	for _, adj := range due {
		if !adj.CreatedAt.After(cutoff) {
			out = append(out, adj)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) ListPendingAdjustmentsByProduct(ctx context.Context, productID string) ([]domain.StockAdjustment, error) {
	var out []domain.StockAdjustment
	for _, adj := range m.byStatus(domain.AdjustmentPending) {
		if adj.ProductID == productID {
			out = append(out, adj)
		}
	}
	return out, nil
}

func (m *memoryStore) ListStockAdjustments(ctx context.Context, status domain.AdjustmentStatus, limit int, nextToken *string) ([]domain.StockAdjustment, *string, error) {
	adjs := m.byStatus(status)
	if len(adjs) > limit {
		adjs = adjs[:limit]
	}
	return adjs, nil, nil
}

func (m *memoryStore) CountPendingAdjustments(ctx context.Context) (int, error) {
	return len(m.byStatus(domain.AdjustmentPending)), nil
}

func (m *memoryStore) SaveStockAdjustment(ctx context.Context, adj domain.StockAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjs[adj.ID] = adj
	return nil
}

func (m *memoryStore) MarkAdjustmentApplied(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	adj, ok := m.adjs[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	adj.Status = domain.AdjustmentApplied
	m.adjs[id] = adj
	return nil
}

func (m *memoryStore) RecordAdjustmentFailure(ctx context.Context, id string, lastError string, abandon bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	adj, ok := m.adjs[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	adj.Attempts++
	adj.LastError = &lastError
	if abandon {
		adj.Status = domain.AdjustmentAbandoned
	}
	m.adjs[id] = adj
	return nil
}

// byStatus returns adjustments with status (all when empty), oldest first.
func (m *memoryStore) byStatus(status domain.AdjustmentStatus) []domain.StockAdjustment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StockAdjustment
	for _, adj := range m.adjs {
		if status == "" || adj.Status == status {
			out = append(out, adj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (m *memoryStore) transactionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.txns)
}

// fakeLedger is a stock ledger that enforces stock >= 0 and can be told to fail AdjustStock calls.
type fakeLedger struct {
	mu       sync.Mutex
	products map[string]domain.Product

	// adjustFailures is consumed one entry per AdjustStock call; a nil entry lets the call through.
	adjustFailures []error

	getCalls    int
	adjustCalls int
}

var _ portssvc.StockLedgerClient = (*fakeLedger)(nil)

func newFakeLedger(products ...domain.Product) *fakeLedger {
	l := &fakeLedger{products: make(map[string]domain.Product)}
	for _, p := range products {
		l.products[p.ID] = p
	}
	return l
}

func (l *fakeLedger) failAdjust(errs ...error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.adjustFailures = append(l.adjustFailures, errs...)
}

func (l *fakeLedger) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.getCalls++
	p, ok := l.products[productID]
	if !ok {
		return nil, apperrors.New(apperrors.KindProductNotFound, apperrors.MsgProductNotFound)
	}
	return &p, nil
}

func (l *fakeLedger) CheckAvailability(ctx context.Context, productID string, requiredQty int) (domain.Availability, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.products[productID]
	if !ok {
		return domain.Availability{}, apperrors.New(apperrors.KindProductNotFound, apperrors.MsgProductNotFound)
	}
	if p.Stock >= requiredQty {
		return domain.Availability{Available: true}, nil
	}
	return domain.Availability{Reason: insufficientMessage(p.Stock, requiredQty)}, nil
}

func (l *fakeLedger) AdjustStock(ctx context.Context, productID string, qty int, direction domain.StockDirection) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.adjustCalls++
	if len(l.adjustFailures) > 0 {
		err := l.adjustFailures[0]
		l.adjustFailures = l.adjustFailures[1:]
		if err != nil {
			return err
		}
	}
	p, ok := l.products[productID]
	if !ok {
		return apperrors.New(apperrors.KindProductNotFound, apperrors.MsgProductNotFound)
	}
	next := p.Stock + direction.Signed(qty)
	if next < 0 {
		return apperrors.New(apperrors.KindInsufficientStock, insufficientMessage(p.Stock, qty))
	}
	p.Stock = next
	l.products[productID] = p
	return nil
}

func (l *fakeLedger) stockOf(productID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.products[productID].Stock
}

func (l *fakeLedger) remove(productID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.products, productID)
}

func (l *fakeLedger) calls() (gets, adjusts int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getCalls, l.adjustCalls
}

var errUnreachable = apperrors.Wrap(apperrors.KindRemoteUnreachable, apperrors.MsgRemoteUnreachable, errors.New("dial tcp: connection refused"))

func insufficientMessage(available, required int) string {
	return fmt.Sprintf("Insufficient stock. Available: %d, Required: %d", available, required)
}
