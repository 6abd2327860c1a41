package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"agrostock/internal/core/apperror"
	"agrostock/internal/core/appctx"
	"agrostock/internal/core/id"
	"agrostock/internal/core/types"
)

// --- in-memory test doubles ---

type memStore struct {
	mu   sync.Mutex
	aggs map[string]StockAggregate
}

func newMemStore() *memStore {
	return &memStore{aggs: make(map[string]StockAggregate)}
}

func aggKey(tenantID, productID id.ID) string {
	return tenantID.String() + "|" + productID.String()
}

func (s *memStore) Get(_ context.Context, tenantID, productID id.ID) (StockAggregate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.aggs[aggKey(tenantID, productID)]
	return agg, ok, nil
}

func (s *memStore) GetForUpdate(ctx context.Context, tenantID, productID id.ID) (StockAggregate, bool, error) {
	return s.Get(ctx, tenantID, productID)
}

func (s *memStore) Apply(_ context.Context, tenantID, productID id.ID, delta types.Quantity, incomingCost types.Cost) (StockAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := aggKey(tenantID, productID)
	now := time.Now().UTC()
	agg, ok := s.aggs[key]
	if !ok {
		agg = NewAggregate(tenantID, productID, delta, incomingCost, now)
	} else {
		agg = agg.ApplyDelta(delta, incomingCost, now)
	}
	s.aggs[key] = agg
	return agg, nil
}

func (s *memStore) AssertSufficient(ctx context.Context, tenantID, productID id.ID, required types.Quantity) error {
	agg, found, err := s.Get(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	available := types.Quantity(0)
	if found {
		available = agg.Quantity
	}
	if available < required {
		return apperror.NewInsufficientStock(productID.String(), required.Float64(), available.Float64())
	}
	return nil
}

func (s *memStore) List(_ context.Context, tenantID id.ID, filter AggregateFilter) ([]StockAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []StockAggregate
	for key, agg := range s.aggs {
		if !strings.HasPrefix(key, tenantID.String()+"|") {
			continue
		}
		if filter.ExcludeZero && agg.Quantity.IsZero() {
			continue
		}
		out = append(out, agg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductID.String() < out[j].ProductID.String()
	})
	return out, nil
}

func (s *memStore) snapshot() map[string]StockAggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]StockAggregate, len(s.aggs))
	for k, v := range s.aggs {
		cp[k] = v
	}
	return cp
}

func (s *memStore) restore(snap map[string]StockAggregate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggs = snap
}

type memEntryRepo struct {
	mu      sync.Mutex
	entries map[id.ID]*Entry
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make(map[id.ID]*Entry)}
}

func (r *memEntryRepo) Create(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

func (r *memEntryRepo) GetByID(_ context.Context, tenantID, entryID id.ID) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryID]
	if !ok || e.TenantID != tenantID || e.DeletionMark {
		return nil, apperror.NewNotFound("entry", entryID.String())
	}
	cp := *e
	return &cp, nil
}

func (r *memEntryRepo) Update(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[entry.ID]
	if !ok || existing.TenantID != entry.TenantID {
		return apperror.NewNotFound("entry", entry.ID.String())
	}
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

func (r *memEntryRepo) Delete(_ context.Context, tenantID, entryID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[entryID]
	if !ok || e.TenantID != tenantID {
		return apperror.NewNotFound("entry", entryID.String())
	}
	e.MarkDeleted()
	return nil
}

func (r *memEntryRepo) List(_ context.Context, tenantID id.ID, filter EntryFilter) (MovementPage[*Entry], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Entry
	for _, e := range r.entries {
		if e.TenantID != tenantID || e.DeletionMark {
			continue
		}
		if !id.IsNil(filter.ProductID) && e.ProductID != filter.ProductID {
			continue
		}
		if !id.IsNil(filter.SupplierID) && e.SupplierID != filter.SupplierID {
			continue
		}
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		cp := *e
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Number < items[j].Number })
	return MovementPage[*Entry]{Items: items, Total: int64(len(items))}, nil
}

func (r *memEntryRepo) ExistsByProduct(_ context.Context, tenantID, productID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.ProductID == productID && !e.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEntryRepo) ExistsBySupplier(_ context.Context, tenantID, supplierID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.TenantID == tenantID && e.SupplierID == supplierID && !e.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

func (r *memEntryRepo) snapshot() map[id.ID]*Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[id.ID]*Entry, len(r.entries))
	for k, v := range r.entries {
		e := *v
		cp[k] = &e
	}
	return cp
}

func (r *memEntryRepo) restore(snap map[id.ID]*Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = snap
}

type memExitRepo struct {
	mu    sync.Mutex
	exits map[id.ID]*Exit
}

func newMemExitRepo() *memExitRepo {
	return &memExitRepo{exits: make(map[id.ID]*Exit)}
}

func (r *memExitRepo) Create(_ context.Context, exit *Exit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *exit
	r.exits[exit.ID] = &cp
	return nil
}

func (r *memExitRepo) GetByID(_ context.Context, tenantID, exitID id.ID) (*Exit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exits[exitID]
	if !ok || e.TenantID != tenantID || e.DeletionMark {
		return nil, apperror.NewNotFound("exit", exitID.String())
	}
	cp := *e
	return &cp, nil
}

func (r *memExitRepo) Update(_ context.Context, exit *Exit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.exits[exit.ID]
	if !ok || existing.TenantID != exit.TenantID {
		return apperror.NewNotFound("exit", exit.ID.String())
	}
	cp := *exit
	r.exits[exit.ID] = &cp
	return nil
}

func (r *memExitRepo) Delete(_ context.Context, tenantID, exitID id.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.exits[exitID]
	if !ok || e.TenantID != tenantID {
		return apperror.NewNotFound("exit", exitID.String())
	}
	e.MarkDeleted()
	return nil
}

func (r *memExitRepo) List(_ context.Context, tenantID id.ID, filter ExitFilter) (MovementPage[*Exit], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*Exit
	for _, e := range r.exits {
		if e.TenantID != tenantID || e.DeletionMark {
			continue
		}
		if !id.IsNil(filter.ProductID) && e.ProductID != filter.ProductID {
			continue
		}
		if !id.IsNil(filter.FieldID) && e.FieldID != filter.FieldID {
			continue
		}
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		cp := *e
		items = append(items, &cp)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Number < items[j].Number })
	return MovementPage[*Exit]{Items: items, Total: int64(len(items))}, nil
}

func (r *memExitRepo) ExistsByProduct(_ context.Context, tenantID, productID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exits {
		if e.TenantID == tenantID && e.ProductID == productID && !e.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

func (r *memExitRepo) ExistsByField(_ context.Context, tenantID, fieldID id.ID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exits {
		if e.TenantID == tenantID && e.FieldID == fieldID && !e.DeletionMark {
			return true, nil
		}
	}
	return false, nil
}

func (r *memExitRepo) snapshot() map[id.ID]*Exit {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[id.ID]*Exit, len(r.exits))
	for k, v := range r.exits {
		e := *v
		cp[k] = &e
	}
	return cp
}

func (r *memExitRepo) restore(snap map[id.ID]*Exit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exits = snap
}

// snapshotTxManager emulates transactional rollback over the in-memory
// doubles: state is snapshotted before the function runs and restored when it
// returns an error.
type snapshotTxManager struct {
	store   *memStore
	entries *memEntryRepo
	exits   *memExitRepo
}

func (m *snapshotTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	aggSnap := m.store.snapshot()
	var entrySnap map[id.ID]*Entry
	var exitSnap map[id.ID]*Exit
	if m.entries != nil {
		entrySnap = m.entries.snapshot()
	}
	if m.exits != nil {
		exitSnap = m.exits.snapshot()
	}
	if err := fn(ctx); err != nil {
		m.store.restore(aggSnap)
		if m.entries != nil {
			m.entries.restore(entrySnap)
		}
		if m.exits != nil {
			m.exits.restore(exitSnap)
		}
		return err
	}
	return nil
}

type memResolver struct {
	products  map[id.ID]bool
	suppliers map[id.ID]bool
	fields    map[id.ID]bool
}

func (r *memResolver) ProductExists(_ context.Context, _, productID id.ID) (bool, error) {
	return r.products[productID], nil
}

func (r *memResolver) SupplierExists(_ context.Context, _, supplierID id.ID) (bool, error) {
	return r.suppliers[supplierID], nil
}

func (r *memResolver) FieldExists(_ context.Context, _, fieldID id.ID) (bool, error) {
	return r.fields[fieldID], nil
}

type memNumerator struct {
	mu   sync.Mutex
	seqs map[string]int
}

func (n *memNumerator) Next(_ context.Context, tenantID id.ID, kind string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.seqs == nil {
		n.seqs = make(map[string]int)
	}
	key := tenantID.String() + "|" + kind
	n.seqs[key]++
	return fmt.Sprintf("%s-%06d", kind, n.seqs[key]), nil
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, id.ID, id.ID, string, string, id.ID, any) {}

// fixture wires both services over shared in-memory state.
type fixture struct {
	store     *memStore
	entryRepo *memEntryRepo
	exitRepo  *memExitRepo
	resolver  *memResolver
	entries   *EntryService
	exits     *ExitService

	tenantID  id.ID
	userID    id.ID
	productID id.ID
	supplier  id.ID
	fieldID   id.ID
}

func newFixture() *fixture {
	f := &fixture{
		store:     newMemStore(),
		entryRepo: newMemEntryRepo(),
		exitRepo:  newMemExitRepo(),
		tenantID:  id.New(),
		userID:    id.New(),
		productID: id.New(),
		supplier:  id.New(),
		fieldID:   id.New(),
	}
	f.resolver = &memResolver{
		products:  map[id.ID]bool{f.productID: true},
		suppliers: map[id.ID]bool{f.supplier: true},
		fields:    map[id.ID]bool{f.fieldID: true},
	}
	txm := &snapshotTxManager{store: f.store, entries: f.entryRepo, exits: f.exitRepo}
	num := &memNumerator{}
	f.entries = NewEntryService(f.entryRepo, f.store, f.resolver, txm, num, noopAudit{})
	f.exits = NewExitService(f.exitRepo, f.store, f.resolver, txm, num, noopAudit{})
	return f
}

func (f *fixture) ctx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:   f.userID.String(),
		TenantID: f.tenantID.String(),
		Email:    "agronomist@example.com",
		Role:     appctx.RoleUser,
	})
}

func (f *fixture) ctxAs(userID id.ID) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:   userID.String(),
		TenantID: f.tenantID.String(),
		Role:     appctx.RoleUser,
	})
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func (f *fixture) newEntry(q, cost float64) *Entry {
	return &Entry{
		Type:       EntryPurchase,
		ProductID:  f.productID,
		SupplierID: f.supplier,
		Quantity:   qty(q),
		UnitCost:   types.NewCost(cost),
	}
}

func (f *fixture) newTransferIn(q float64) *Entry {
	return &Entry{
		Type:      EntryPositiveTransfer,
		ProductID: f.productID,
		Quantity:  qty(q),
	}
}

func (f *fixture) newExit(q float64) *Exit {
	return &Exit{
		Type:      ExitApplication,
		ProductID: f.productID,
		FieldID:   f.fieldID,
		Quantity:  qty(q),
	}
}

func (f *fixture) newTransferOut(q float64) *Exit {
	return &Exit{
		Type:      ExitNegativeTransfer,
		ProductID: f.productID,
		Quantity:  qty(q),
	}
}

func (f *fixture) aggregate() StockAggregate {
	agg, _, _ := f.store.Get(context.Background(), f.tenantID, f.productID)
	return agg
}
