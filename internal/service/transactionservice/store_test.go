package transactionservice

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/bankapi/internal/domain"
	"github.com/GlebRadaev/bankapi/internal/notify"
	"github.com/GlebRadaev/bankapi/internal/pg"
)

// store is an in-memory stand-in for Postgres. Row locks taken by
// FindByIDForUpdate are held until the surrounding fake transaction ends and
// ApplyDelta is a conditional update, matching the SQL the repositories run.
// Balances are kept at NUMERIC(20,2) precision.
type store struct {
	mu           sync.Mutex
	clock        time.Time
	users        map[uuid.UUID]*domain.User
	wallets      map[uuid.UUID]*domain.Wallet
	transactions map[uuid.UUID]*domain.Transaction
	deposits     map[uuid.UUID]*domain.Deposit
	references   map[string]bool
	rowLocks     map[uuid.UUID]*sync.Mutex
}

func newStore() *store {
	return &store{
		clock:        time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		users:        make(map[uuid.UUID]*domain.User),
		wallets:      make(map[uuid.UUID]*domain.Wallet),
		transactions: make(map[uuid.UUID]*domain.Transaction),
		deposits:     make(map[uuid.UUID]*domain.Deposit),
		references:   make(map[string]bool),
		rowLocks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// addUser registers a user whose PIN is "1234" together with a wallet.
func (s *store) addUser(saving, checking string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = &domain.User{ID: id, Fullname: "Jane Doe", Email: "jane@bank.test", PinHash: "hashed:1234", Role: domain.RoleUser}
	s.wallets[id] = &domain.Wallet{
		ID:       uuid.New(),
		UserID:   id,
		Saving:   decimal.RequireFromString(saving),
		Checking: decimal.RequireFromString(checking),
		Currency: "USD",
	}
	return id
}

func (s *store) wallet(userID uuid.UUID) domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.wallets[userID]
}

func (s *store) setBalance(userID uuid.UUID, account domain.Account, amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.wallets[userID]
	if account == domain.AccountSaving {
		w.Saving = decimal.RequireFromString(amount)
	} else {
		w.Checking = decimal.RequireFromString(amount)
	}
}

func (s *store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type fakeTx struct {
	unlocks []func()
}

type fakeTxKey struct{}

type fakeTXManager struct{}

func (fakeTXManager) Begin(ctx context.Context, fn pg.TransactionalFn) error {
	if _, ok := ctx.Value(fakeTxKey{}).(*fakeTx); ok {
		return fn(ctx)
	}
	tx := &fakeTx{}
	defer func() {
		for i := len(tx.unlocks) - 1; i >= 0; i-- {
			tx.unlocks[i]()
		}
	}()
	return fn(context.WithValue(ctx, fakeTxKey{}, tx))
}

func (s *store) lockRow(ctx context.Context, id uuid.UUID) {
	s.mu.Lock()
	l, ok := s.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.rowLocks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	if tx, ok := ctx.Value(fakeTxKey{}).(*fakeTx); ok {
		tx.unlocks = append(tx.unlocks, l.Unlock)
		return
	}
	l.Unlock()
}

type fakeUsers struct{ *store }

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

type fakeWallets struct{ *store }

func (f fakeWallets) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

func (f fakeWallets) ApplyDelta(_ context.Context, userID uuid.UUID, account domain.Account, delta decimal.Decimal) (*domain.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[userID]
	if !ok {
		return nil, nil
	}
	current, err := w.Balance(account)
	if err != nil {
		return nil, err
	}
	next := current.Add(delta).Round(domain.CurrencyPlaces)
	if next.IsNegative() {
		return nil, nil
	}
	if account == domain.AccountSaving {
		w.Saving = next
	} else {
		w.Checking = next
	}
	c := *w
	return &c, nil
}

type fakeTransactions struct{ *store }

func (f fakeTransactions) Create(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.references[tx.Reference] {
		return nil, domain.ErrDuplicateReference
	}
	f.references[tx.Reference] = true
	tx.ID = uuid.New()
	tx.CreatedAt = f.tick()
	tx.UpdatedAt = tx.CreatedAt
	c := *tx
	f.transactions[tx.ID] = &c
	return tx, nil
}

func (f fakeTransactions) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	f.lockRow(ctx, id)
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.transactions[id]
	if !ok {
		return nil, nil
	}
	c := *tx
	return &c, nil
}

func (f fakeTransactions) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TxStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.transactions[id]
	if !ok {
		return domain.ErrNotFound
	}
	tx.Status = status
	return nil
}

func (f fakeTransactions) List(_ context.Context, filter domain.RecordFilter) ([]domain.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range f.transactions {
		if filter.UserID == nil || *filter.UserID == tx.UserID {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakeDeposits struct{ *store }

func (f fakeDeposits) Create(_ context.Context, d *domain.Deposit) (*domain.Deposit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.references[d.Reference] {
		return nil, domain.ErrDuplicateReference
	}
	f.references[d.Reference] = true
	d.ID = uuid.New()
	d.CreatedAt = f.tick()
	d.UpdatedAt = d.CreatedAt
	c := *d
	f.deposits[d.ID] = &c
	return d, nil
}

func (f fakeDeposits) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Deposit, error) {
	f.lockRow(ctx, id)
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deposits[id]
	if !ok {
		return nil, nil
	}
	c := *d
	return &c, nil
}

func (f fakeDeposits) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TxStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deposits[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	return nil
}

func (f fakeDeposits) List(_ context.Context, filter domain.RecordFilter) ([]domain.Deposit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Deposit
	for _, d := range f.deposits {
		if filter.UserID == nil || *filter.UserID == d.UserID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// plainHash treats "hashed:<secret>" as the hash of secret.
type plainHash struct{}

func (plainHash) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHash) ComparePassword(hashedPassword, password string) bool {
	return strings.TrimPrefix(hashedPassword, "hashed:") == password && hashedPassword != password
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

func newLedger() (*Service, *store, *recordingNotifier) {
	st := newStore()
	notifier := &recordingNotifier{}
	service := New(fakeUsers{st}, fakeWallets{st}, fakeTransactions{st}, fakeDeposits{st}, fakeTXManager{}, plainHash{}, notifier)
	return service, st, notifier
}
