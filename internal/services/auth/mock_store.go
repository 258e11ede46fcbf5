package auth

import "sync"

// MockStore is an in-memory token store for testing. SaveErr, when set, is
// returned from Save.
type MockStore struct {
	mu      sync.Mutex
	token   string
	present bool
	SaveErr error
}

func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.token = token
	m.present = true
	return nil
}

func (m *MockStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.present {
		return "", ErrTokenNotFound
	}
	return m.token, nil
}

func (m *MockStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.present = false
	return nil
}
