package repositories

import "gorm.io/gorm"

// Store bundles the per-entity repositories behind a single handle so a
// service can run several repository calls in one database transaction.
// The fn passed to ExecuteInTransaction receives a Store bound to that
// transaction; any error rolls the whole unit of work back.
type Store interface {
	Users() UserRepository
	Cards() CardRepository
	Limits() LimitRepository
	Transactions() TransactionRepository
	ExecuteInTransaction(fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *gormStore) Cards() CardRepository {
	return NewCardRepository(s.db)
}

func (s *gormStore) Limits() LimitRepository {
	return NewLimitRepository(s.db)
}

func (s *gormStore) Transactions() TransactionRepository {
	return NewTransactionRepository(s.db)
}

func (s *gormStore) ExecuteInTransaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
