// Package memory implements repositories.Store on plain maps. It backs
// the service tests and behaves like the database does: reads hand out
// copies, writes only stick via Update/Create, and a failed transaction
// restores the previous state.
package memory

import (
	"sort"
	"sync"

	"cardvault/internal/models"
	"cardvault/internal/repositories"

	"github.com/google/uuid"
)

type Store struct {
	mu           sync.Mutex
	users        map[uint]models.User
	cards        map[uint]models.Card
	limits       map[uint]models.Limit
	transactions map[uint]models.Transaction
	nextID       uint
}

func NewStore() *Store {
	return &Store{
		users:        map[uint]models.User{},
		cards:        map[uint]models.Card{},
		limits:       map[uint]models.Limit{},
		transactions: map[uint]models.Transaction{},
	}
}

func (s *Store) Users() repositories.UserRepository {
	return &userRepo{s}
}

func (s *Store) Cards() repositories.CardRepository {
	return &cardRepo{s}
}

func (s *Store) Limits() repositories.LimitRepository {
	return &limitRepo{s}
}

func (s *Store) Transactions() repositories.TransactionRepository {
	return &transactionRepo{s}
}

// ExecuteInTransaction snapshots the maps and restores them when fn
// fails, mirroring a database rollback.
func (s *Store) ExecuteInTransaction(fn func(repositories.Store) error) error {
	s.mu.Lock()
	users := cloneUsers(s.users)
	cards := cloneCards(s.cards)
	limits := cloneLimits(s.limits)
	transactions := cloneTransactions(s.transactions)
	nextID := s.nextID
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.users = users
		s.cards = cards
		s.limits = limits
		s.transactions = transactions
		s.nextID = nextID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) allocID() uint {
	s.nextID++
	return s.nextID
}

func cloneUsers(in map[uint]models.User) map[uint]models.User {
	out := make(map[uint]models.User, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneCards(in map[uint]models.Card) map[uint]models.Card {
	out := make(map[uint]models.Card, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneLimit(l models.Limit) models.Limit {
	if l.DateLastTransaction != nil {
		d := *l.DateLastTransaction
		l.DateLastTransaction = &d
	}
	if l.PendingLimitAmount != nil {
		p := *l.PendingLimitAmount
		l.PendingLimitAmount = &p
	}
	return l
}

func cloneLimits(in map[uint]models.Limit) map[uint]models.Limit {
	out := make(map[uint]models.Limit, len(in))
	for k, v := range in {
		out[k] = cloneLimit(v)
	}
	return out
}

func cloneTransaction(t models.Transaction) models.Transaction {
	if t.DestinationCardID != nil {
		d := *t.DestinationCardID
		t.DestinationCardID = &d
	}
	return t
}

func cloneTransactions(in map[uint]models.Transaction) map[uint]models.Transaction {
	out := make(map[uint]models.Transaction, len(in))
	for k, v := range in {
		out[k] = cloneTransaction(v)
	}
	return out
}

func sortedIDs[T any](in map[uint]T) []uint {
	ids := make([]uint, 0, len(in))
	for id := range in {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func ensureUUID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}
