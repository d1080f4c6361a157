package account

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	users    map[string]User
	attempts map[string][]Attempt
}

// NewMemoryStore returns a process-local Store.
func NewMemoryStore() Store {
	return &memoryStore{
		users:    map[string]User{},
		attempts: map[string][]Attempt{},
	}
}

func (m *memoryStore) CreateUser(_ context.Context, u User) error {
	u.Email = NormalizeEmail(u.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return ErrConflict
	}
	m.users[u.Email] = u
	return nil
}

func (m *memoryStore) FindByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[NormalizeEmail(email)]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *memoryStore) ListUsers(_ context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memoryStore) UpdateUser(_ context.Context, u User) error {
	u.Email = NormalizeEmail(u.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLocked(u)
}

func (m *memoryStore) updateLocked(u User) error {
	prev, ok := m.users[u.Email]
	if !ok {
		return ErrNotFound
	}
	// credentials and identity are not writable through stat updates
	u.PasswordHash = prev.PasswordHash
	u.CreatedAt = prev.CreatedAt
	m.users[u.Email] = u
	return nil
}

func (m *memoryStore) AppendAttempt(_ context.Context, email string, a Attempt) error {
	email = NormalizeEmail(email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[email]; !ok {
		return ErrNotFound
	}
	m.attempts[email] = append(m.attempts[email], a)
	return nil
}

func (m *memoryStore) RecordAttempt(_ context.Context, u User, a Attempt) error {
	u.Email = NormalizeEmail(u.Email)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.updateLocked(u); err != nil {
		return err
	}
	m.attempts[u.Email] = append(m.attempts[u.Email], a)
	return nil
}

func (m *memoryStore) ListAttempts(_ context.Context, email string) ([]Attempt, error) {
	email = NormalizeEmail(email)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.users[email]; !ok {
		return nil, ErrNotFound
	}
	return append([]Attempt(nil), m.attempts[email]...), nil
}

func (m *memoryStore) GetProgress(ctx context.Context, email string) (map[string]ProgressEntry, error) {
	list, err := m.ListAttempts(ctx, email)
	if err != nil {
		return nil, err
	}
	return BuildProgress(list), nil
}

func (m *memoryStore) AllProgress(_ context.Context) (map[string]map[string]ProgressEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := map[string]map[string]ProgressEntry{}
	for email, list := range m.attempts {
		if len(list) > 0 {
			out[email] = BuildProgress(list)
		}
	}
	return out, nil
}
