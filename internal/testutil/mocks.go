package testutil

import (
	"context"
	"math/big"
	"sync"

	"github.com/bimakw/token-ledger/internal/domain/entities"
)

// MockCall records a single mock invocation
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockTokenRepository is an in-memory TokenRepository
type MockTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*entities.Token

	// Function hooks for custom behavior
	GetByAddressFunc func(ctx context.Context, address string) (*entities.Token, error)
	InsertFunc       func(ctx context.Context, token *entities.Token) error

	// Call tracking
	Calls []MockCall
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{
		tokens: make(map[string]*entities.Token),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockTokenRepository) GetByAddress(ctx context.Context, address string) (*entities.Token, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByAddress", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens[address], nil
}

func (m *MockTokenRepository) Insert(ctx context.Context, token *entities.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Insert", Args: []interface{}{token}})

	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, token)
	}

	if _, exists := m.tokens[token.Address]; !exists {
		m.tokens[token.Address] = token
	}
	return nil
}

// InsertCount returns how many Insert calls were made
func (m *MockTokenRepository) InsertCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, c := range m.Calls {
		if c.Method == "Insert" {
			count++
		}
	}
	return count
}

// MockAccountRepository is an in-memory AccountRepository
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*entities.Account

	GetByAddressFunc func(ctx context.Context, address string) (*entities.Account, error)
	InsertFunc       func(ctx context.Context, account *entities.Account) error

	Calls []MockCall
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*entities.Account),
		Calls:    make([]MockCall, 0),
	}
}

func (m *MockAccountRepository) GetByAddress(ctx context.Context, address string) (*entities.Account, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByAddress", Args: []interface{}{address}})
	m.mu.Unlock()

	if m.GetByAddressFunc != nil {
		return m.GetByAddressFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.accounts[address], nil
}

func (m *MockAccountRepository) Insert(ctx context.Context, account *entities.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Insert", Args: []interface{}{account}})

	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, account)
	}

	if _, exists := m.accounts[account.Address]; !exists {
		m.accounts[account.Address] = account
	}
	return nil
}

// Has reports whether an account exists in the mock store
func (m *MockAccountRepository) Has(address string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.accounts[address]
	return ok
}

// Len returns the number of stored accounts
func (m *MockAccountRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts)
}

// MockBalanceRepository is an in-memory BalanceRepository
type MockBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]*entities.TokenBalance

	GetByIDFunc func(ctx context.Context, id string) (*entities.TokenBalance, error)
	UpsertFunc  func(ctx context.Context, balance *entities.TokenBalance) error

	Calls []MockCall
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		balances: make(map[string]*entities.TokenBalance),
		Calls:    make([]MockCall, 0),
	}
}

func (m *MockBalanceRepository) GetByID(ctx context.Context, id string) (*entities.TokenBalance, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByID", Args: []interface{}{id}})
	m.mu.Unlock()

	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[id], nil
}

func (m *MockBalanceRepository) Upsert(ctx context.Context, balance *entities.TokenBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Upsert", Args: []interface{}{balance}})

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, balance)
	}

	m.balances[balance.ID] = balance
	return nil
}

// Amount returns the stored amount for a balance id, nil if absent
func (m *MockBalanceRepository) Amount(id string) *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if b, ok := m.balances[id]; ok {
		return b.Amount
	}
	return nil
}

// Len returns the number of stored balance rows
func (m *MockBalanceRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.balances)
}

// MockAllowanceRepository is an in-memory AllowanceRepository
type MockAllowanceRepository struct {
	mu         sync.RWMutex
	allowances map[string]*entities.TokenAllowance

	GetByIDFunc func(ctx context.Context, id string) (*entities.TokenAllowance, error)
	UpsertFunc  func(ctx context.Context, allowance *entities.TokenAllowance) error

	Calls []MockCall
}

func NewMockAllowanceRepository() *MockAllowanceRepository {
	return &MockAllowanceRepository{
		allowances: make(map[string]*entities.TokenAllowance),
		Calls:      make([]MockCall, 0),
	}
}

func (m *MockAllowanceRepository) GetByID(ctx context.Context, id string) (*entities.TokenAllowance, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByID", Args: []interface{}{id}})
	m.mu.Unlock()

	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.allowances[id], nil
}

func (m *MockAllowanceRepository) Upsert(ctx context.Context, allowance *entities.TokenAllowance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Upsert", Args: []interface{}{allowance}})

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, allowance)
	}

	m.allowances[allowance.ID] = allowance
	return nil
}

// Amount returns the stored amount for an allowance id, nil if absent
func (m *MockAllowanceRepository) Amount(id string) *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if a, ok := m.allowances[id]; ok {
		return a.Amount
	}
	return nil
}

// MockTransactionRepository is an in-memory TransactionRepository
type MockTransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*entities.Transaction
	order        []string

	GetByIDFunc func(ctx context.Context, id string) (*entities.Transaction, error)
	InsertFunc  func(ctx context.Context, tx *entities.Transaction) error

	Calls []MockCall
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[string]*entities.Transaction),
		Calls:        make([]MockCall, 0),
	}
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id string) (*entities.Transaction, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetByID", Args: []interface{}{id}})
	m.mu.Unlock()

	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transactions[id], nil
}

func (m *MockTransactionRepository) Insert(ctx context.Context, tx *entities.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Method: "Insert", Args: []interface{}{tx}})

	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, tx)
	}

	// Conflict-ignore, like the real repository
	if _, exists := m.transactions[tx.ID]; !exists {
		m.transactions[tx.ID] = tx
		m.order = append(m.order, tx.ID)
	}
	return nil
}

// All returns the stored audit records in insertion order
func (m *MockTransactionRepository) All() []*entities.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*entities.Transaction, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.transactions[id])
	}
	return out
}

// MockCursorRepository is an in-memory CursorRepository
type MockCursorRepository struct {
	mu        sync.RWMutex
	lastBlock int64

	Calls []MockCall
}

func NewMockCursorRepository() *MockCursorRepository {
	return &MockCursorRepository{Calls: make([]MockCall, 0)}
}

func (m *MockCursorRepository) GetLastBlock(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "GetLastBlock"})
	return m.lastBlock, nil
}

func (m *MockCursorRepository) SetLastBlock(ctx context.Context, blockNumber int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "SetLastBlock", Args: []interface{}{blockNumber}})
	m.lastBlock = blockNumber
	return nil
}

// MockContractReader serves ERC-20 metadata reads from fixed values. Any of
// the four reads can be made to revert via its hook.
type MockContractReader struct {
	mu sync.Mutex

	TryNameFunc        func(ctx context.Context, address string) (string, error)
	TrySymbolFunc      func(ctx context.Context, address string) (string, error)
	TryDecimalsFunc    func(ctx context.Context, address string) (*big.Int, error)
	TryTotalSupplyFunc func(ctx context.Context, address string) (*big.Int, error)

	Calls []MockCall
}

func NewMockContractReader() *MockContractReader {
	return &MockContractReader{Calls: make([]MockCall, 0)}
}

func (m *MockContractReader) record(method, address string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: []interface{}{address}})
	m.mu.Unlock()
}

func (m *MockContractReader) TryName(ctx context.Context, address string) (string, error) {
	m.record("TryName", address)
	if m.TryNameFunc != nil {
		return m.TryNameFunc(ctx, address)
	}
	return "Test Token", nil
}

func (m *MockContractReader) TrySymbol(ctx context.Context, address string) (string, error) {
	m.record("TrySymbol", address)
	if m.TrySymbolFunc != nil {
		return m.TrySymbolFunc(ctx, address)
	}
	return "TST", nil
}

func (m *MockContractReader) TryDecimals(ctx context.Context, address string) (*big.Int, error) {
	m.record("TryDecimals", address)
	if m.TryDecimalsFunc != nil {
		return m.TryDecimalsFunc(ctx, address)
	}
	return big.NewInt(18), nil
}

func (m *MockContractReader) TryTotalSupply(ctx context.Context, address string) (*big.Int, error) {
	m.record("TryTotalSupply", address)
	if m.TryTotalSupplyFunc != nil {
		return m.TryTotalSupplyFunc(ctx, address)
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(21), nil), nil
}

// CallCount returns how many calls were made for a method
func (m *MockContractReader) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, c := range m.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}
