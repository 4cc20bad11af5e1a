// Package memhost is a reference, in-memory implementation of the host
// interfaces, used by tests and the local enginectl CLI. It is not part of
// the engine's domain logic — a real deployment replaces every type here
// with the actual chain host.
package memhost

import (
	"fmt"
	"math/big"
	"sync"
)

// Oracle is a settable in-memory price oracle.
type Oracle struct {
	mu     sync.RWMutex
	prices map[string]quote
}

type quote struct {
	price     *big.Int
	timestamp int64
}

func NewOracle() *Oracle {
	return &Oracle{prices: make(map[string]quote)}
}

// SetPrice records the current price for asset, as reported at timestamp.
func (o *Oracle) SetPrice(asset string, price *big.Int, timestamp int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[asset] = quote{price: new(big.Int).Set(price), timestamp: timestamp}
}

func (o *Oracle) LastPrice(asset string) (*big.Int, int64, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	q, ok := o.prices[asset]
	if !ok {
		return nil, 0, false
	}
	return new(big.Int).Set(q.price), q.timestamp, true
}

// Token is a simple in-memory fungible ledger.
type Token struct {
	mu       sync.Mutex
	balances map[string]*big.Int
}

func NewToken() *Token {
	return &Token{balances: make(map[string]*big.Int)}
}

// Mint credits addr with amount, for test setup (e.g. seeding vault TVL).
func (t *Token) Mint(addr string, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bal := t.balanceLocked(addr)
	t.balances[addr] = new(big.Int).Add(bal, amount)
}

func (t *Token) BalanceOf(addr string) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.balanceLocked(addr))
}

func (t *Token) balanceLocked(addr string) *big.Int {
	bal, ok := t.balances[addr]
	if !ok {
		return big.NewInt(0)
	}
	return bal
}

func (t *Token) Transfer(from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("memhost: transfer amount must be positive")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fromBal := t.balanceLocked(from)
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("memhost: %s has insufficient balance", from)
	}
	t.balances[from] = new(big.Int).Sub(fromBal, amount)
	t.balances[to] = new(big.Int).Add(t.balanceLocked(to), amount)
	return nil
}

// ShareToken is a simple in-memory mintable/burnable ledger for vault
// shares.
type ShareToken struct {
	mu       sync.Mutex
	balances map[string]*big.Int
	supply   *big.Int
}

func NewShareToken() *ShareToken {
	return &ShareToken{balances: make(map[string]*big.Int), supply: big.NewInt(0)}
}

func (s *ShareToken) Mint(to string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("memhost: mint amount must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[to] = new(big.Int).Add(s.balanceLocked(to), amount)
	s.supply.Add(s.supply, amount)
	return nil
}

func (s *ShareToken) Burn(from string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("memhost: burn amount must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bal := s.balanceLocked(from)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("memhost: %s has insufficient shares", from)
	}
	s.balances[from] = new(big.Int).Sub(bal, amount)
	s.supply.Sub(s.supply, amount)
	return nil
}

func (s *ShareToken) Transfer(from, to string, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return fmt.Errorf("memhost: share transfer amount must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fromBal := s.balanceLocked(from)
	if fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("memhost: %s has insufficient shares", from)
	}
	s.balances[from] = new(big.Int).Sub(fromBal, amount)
	s.balances[to] = new(big.Int).Add(s.balanceLocked(to), amount)
	return nil
}

func (s *ShareToken) BalanceOf(addr string) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.balanceLocked(addr))
}

func (s *ShareToken) balanceLocked(addr string) *big.Int {
	bal, ok := s.balances[addr]
	if !ok {
		return big.NewInt(0)
	}
	return bal
}

func (s *ShareToken) TotalSupply() *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return new(big.Int).Set(s.supply)
}

// Authorizer always authorizes every caller; tests that need to exercise a
// denial implement host.Authorizer directly.
type Authorizer struct{}

func (Authorizer) RequireAuth(addr string) error { return nil }

// Clock is a settable fake wall-clock for deterministic tests.
type Clock struct {
	mu  sync.Mutex
	now int64
}

func NewClock(now int64) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Clock) Advance(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += delta
}
