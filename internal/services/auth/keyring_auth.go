package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

type KeyringStore struct {
	serviceName string
}

func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) Save(token string) error {
	return keyring.Set(k.serviceName, TokenKey, token)
}

func (k *KeyringStore) Load() (string, error) {
	token, err := keyring.Get(k.serviceName, TokenKey)
	if err == nil {
		return token, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrTokenNotFound
	}
	return "", err
}

// Clear removes the token. Clearing an empty store is not an error.
func (k *KeyringStore) Clear() error {
	err := keyring.Delete(k.serviceName, TokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
