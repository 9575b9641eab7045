package memory

import (
	"time"

	"cardvault/internal/models"
	"cardvault/internal/repositories"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = r.s.allocID()
	user.UUID = ensureUUID(user.UUID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.users) {
		if r.s.users[id].Email == email {
			u := r.s.users[id]
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepo) ExistsByEmail(email string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

type cardRepo struct {
	s *Store
}

func (r *cardRepo) Create(card *models.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	card.ID = r.s.allocID()
	card.UUID = ensureUUID(card.UUID)
	card.CreatedAt = time.Now()
	card.UpdatedAt = card.CreatedAt
	r.s.cards[card.ID] = *card
	return nil
}

func (r *cardRepo) GetByID(id uint) (*models.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cards[id]
	if !ok {
		return nil, repositories.ErrCardNotFound
	}
	return &c, nil
}

func (r *cardRepo) GetByIDForUpdate(id uint) (*models.Card, error) {
	return r.GetByID(id)
}

func (r *cardRepo) GetByMaskedNumber(masked string) (*models.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.cards) {
		if r.s.cards[id].MaskedNumber == masked {
			c := r.s.cards[id]
			return &c, nil
		}
	}
	return nil, repositories.ErrCardNotFound
}

func (r *cardRepo) ListByOwner(ownerID uint) ([]*models.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Card
	for _, id := range sortedIDs(r.s.cards) {
		if r.s.cards[id].OwnerID == ownerID {
			c := r.s.cards[id]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *cardRepo) ListByOwnerForUpdate(ownerID uint) ([]*models.Card, error) {
	return r.ListByOwner(ownerID)
}

func (r *cardRepo) ListByStatus(status models.CardStatus) ([]*models.Card, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Card
	for _, id := range sortedIDs(r.s.cards) {
		if r.s.cards[id].Status == status {
			c := r.s.cards[id]
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *cardRepo) Update(card *models.Card) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cards[card.ID]; !ok {
		return repositories.ErrCardNotFound
	}
	card.UpdatedAt = time.Now()
	r.s.cards[card.ID] = *card
	return nil
}

func (r *cardRepo) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.cards[id]; !ok {
		return repositories.ErrCardNotFound
	}
	delete(r.s.cards, id)
	return nil
}

type limitRepo struct {
	s *Store
}

func (r *limitRepo) Create(limit *models.Limit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	limit.ID = r.s.allocID()
	limit.UUID = ensureUUID(limit.UUID)
	limit.CreatedAt = time.Now()
	limit.UpdatedAt = limit.CreatedAt
	r.s.limits[limit.ID] = cloneLimit(*limit)
	return nil
}

func (r *limitRepo) GetByID(id uint) (*models.Limit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.limits[id]
	if !ok {
		return nil, repositories.ErrLimitNotFound
	}
	l = cloneLimit(l)
	return &l, nil
}

func (r *limitRepo) GetForUser(userID uint, lt models.LimitType, tt models.TransactionType) (*models.Limit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range sortedIDs(r.s.limits) {
		l := r.s.limits[id]
		if l.UserID == userID && l.LimitType == lt && l.TransactionType == tt {
			l = cloneLimit(l)
			return &l, nil
		}
	}
	return nil, repositories.ErrLimitNotFound
}

func (r *limitRepo) GetForUserForUpdate(userID uint, lt models.LimitType, tt models.TransactionType) (*models.Limit, error) {
	return r.GetForUser(userID, lt, tt)
}

func (r *limitRepo) ExistsForUser(userID uint, lt models.LimitType, tt models.TransactionType) (bool, error) {
	_, err := r.GetForUser(userID, lt, tt)
	if err == repositories.ErrLimitNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *limitRepo) ListByUser(userID uint) ([]*models.Limit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Limit
	for _, id := range sortedIDs(r.s.limits) {
		if r.s.limits[id].UserID == userID {
			l := cloneLimit(r.s.limits[id])
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *limitRepo) ListPendingByType(lt models.LimitType) ([]*models.Limit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Limit
	for _, id := range sortedIDs(r.s.limits) {
		l := r.s.limits[id]
		if l.LimitType == lt && l.HasPendingUpdate {
			l = cloneLimit(l)
			out = append(out, &l)
		}
	}
	return out, nil
}

func (r *limitRepo) ResetByType(lt models.LimitType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, l := range r.s.limits {
		if l.LimitType == lt {
			l.CurrentExpenses = 0
			l.DateLastTransaction = nil
			l.UpdatedAt = time.Now()
			r.s.limits[id] = l
		}
	}
	return nil
}

func (r *limitRepo) Update(limit *models.Limit) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.limits[limit.ID]; !ok {
		return repositories.ErrLimitNotFound
	}
	limit.UpdatedAt = time.Now()
	r.s.limits[limit.ID] = cloneLimit(*limit)
	return nil
}

func (r *limitRepo) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.limits[id]; !ok {
		return repositories.ErrLimitNotFound
	}
	delete(r.s.limits, id)
	return nil
}

type transactionRepo struct {
	s *Store
}

func (r *transactionRepo) Create(tx *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	tx.ID = r.s.allocID()
	tx.UUID = ensureUUID(tx.UUID)
	tx.CreatedAt = time.Now()
	r.s.transactions[tx.ID] = cloneTransaction(*tx)
	return nil
}

func (r *transactionRepo) GetByID(id uint) (*models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	t = cloneTransaction(t)
	return &t, nil
}

func (r *transactionRepo) List(limit, offset int) ([]*models.Transaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := sortedIDs(r.s.transactions)
	// Newest first, same as the database ordering.
	var all []*models.Transaction
	for i := len(ids) - 1; i >= 0; i-- {
		t := cloneTransaction(r.s.transactions[ids[i]])
		all = append(all, &t)
	}
	return paginate(all, limit, offset), int64(len(all)), nil
}

func (r *transactionRepo) ListByUser(userID uint, limit, offset int) ([]*models.Transaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := sortedIDs(r.s.transactions)
	var all []*models.Transaction
	for i := len(ids) - 1; i >= 0; i-- {
		if r.s.transactions[ids[i]].UserID == userID {
			t := cloneTransaction(r.s.transactions[ids[i]])
			all = append(all, &t)
		}
	}
	return paginate(all, limit, offset), int64(len(all)), nil
}

func (r *transactionRepo) Delete(id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.transactions[id]; !ok {
		return repositories.ErrTransactionNotFound
	}
	delete(r.s.transactions, id)
	return nil
}

func paginate(all []*models.Transaction, limit, offset int) []*models.Transaction {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
