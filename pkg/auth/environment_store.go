package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// This is primarily for CI and one-off runs.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve gets credentials from environment variables
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	sessdata := os.Getenv("BILIFETCH_SESSDATA")
	biliJct := os.Getenv("BILIFETCH_BILI_JCT")

	if sessdata == "" || biliJct == "" {
		return nil, ErrCredentialsNotFound
	}

	// Environment variables don't carry an account name
	if name == "" {
		name = "default"
	}

	return &Account{
		Name:         name,
		SESSDATA:     sessdata,
		BiliJct:      biliJct,
		Buvid3:       os.Getenv("BILIFETCH_BUVID3"),
		DedeUserID:   os.Getenv("BILIFETCH_DEDEUSERID"),
		UserAgent:    os.Getenv("BILIFETCH_USER_AGENT"),
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("BILIFETCH_SESSDATA") != "" && os.Getenv("BILIFETCH_BILI_JCT") != ""
}
