package engine

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger is an in-process Settler keeping per-agent balances.
// The daemon and tests use it; real-money settlement lives behind the
// same interface outside this repo.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
	seq      uint64
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]int64)}
}

// Fund sets an agent's balance in cents.
func (l *MemoryLedger) Fund(agentID string, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[agentID] = amount
}

// Balance returns an agent's current balance in cents.
func (l *MemoryLedger) Balance(agentID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[agentID]
}

// Debit implements Settler.
func (l *MemoryLedger) Debit(_ context.Context, gameID, agentID string, amount int64) (TxRef, error) {
	if amount < 0 {
		return "", fmt.Errorf("ledger: negative debit %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[agentID] < amount {
		return "", fmt.Errorf("%w: agent %s has %d, needs %d",
			ErrInsufficientFunds, agentID, l.balances[agentID], amount)
	}
	l.balances[agentID] -= amount
	l.seq++
	return TxRef(fmt.Sprintf("mem-%s-%d", gameID, l.seq)), nil
}

// Credit implements Settler.
func (l *MemoryLedger) Credit(_ context.Context, gameID, agentID string, amount int64) (TxRef, error) {
	if amount < 0 {
		return "", fmt.Errorf("ledger: negative credit %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[agentID] += amount
	l.seq++
	return TxRef(fmt.Sprintf("mem-%s-%d", gameID, l.seq)), nil
}
