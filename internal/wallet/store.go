// Package wallet tracks the connected wallet, polls its balance and runs
// signed transactions against a Solana cluster.
package wallet

import (
	"sync"
	"time"

	"github.com/yourusername/trader-arena/internal/models"
)

// State is a point-in-time copy of the wallet.
type State struct {
	Connected bool
	PublicKey string
	Balance   models.Lamports
	UpdatedAt time.Time
}

// Reader is the read-only view of the wallet handed to everything except
// BalanceSync.
type Reader interface {
	Snapshot() State
	Connected() bool
	PublicKey() string
	Balance() models.Lamports
}

// Store holds wallet state. BalanceSync is its only writer.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners []func(State)
}

// NewStore returns a disconnected store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Connected reports whether a wallet is connected.
func (s *Store) Connected() bool {
	return s.Snapshot().Connected
}

// PublicKey returns the connected wallet's base58 address.
func (s *Store) PublicKey() string {
	return s.Snapshot().PublicKey
}

// Balance returns the last fetched balance, zero when disconnected.
func (s *Store) Balance() models.Lamports {
	return s.Snapshot().Balance
}

// Subscribe registers fn to receive every state change.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) update(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	s.state.UpdatedAt = time.Now()
	state := s.state
	listeners := make([]func(State), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

func (s *Store) setConnected(publicKey string) {
	s.update(func(st *State) {
		st.Connected = true
		st.PublicKey = publicKey
	})
}

func (s *Store) setBalance(balance models.Lamports) {
	s.update(func(st *State) {
		if st.Connected {
			st.Balance = balance
		}
	})
}

func (s *Store) disconnect() {
	s.update(func(st *State) {
		*st = State{}
	})
}
