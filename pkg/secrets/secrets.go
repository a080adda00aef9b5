// pkg/secrets/secrets.go
package secrets

import (
	"context"
	"errors"
	"os"
)

// ErrCredentialNotFound means the provider credential is absent. This is a
// deployment error, not a per-request one: the service cannot initiate any
// charge without it.
var ErrCredentialNotFound = errors.New("payment provider credential not configured")

// Store resolves the payment provider's bearer credential. It is read at
// call time rather than at startup so a rotated secret takes effect without
// a restart.
type Store interface {
	GetProviderCredential(ctx context.Context) (string, error)
}

type envStore struct {
	key string
}

// NewEnvStore reads the credential from the environment, the same way the
// rest of the service is configured. key defaults to FLW_SECRET_KEY.
func NewEnvStore(key string) Store {
	if key == "" {
		key = "FLW_SECRET_KEY"
	}
	return &envStore{key: key}
}

func (s *envStore) GetProviderCredential(ctx context.Context) (string, error) {
	value := os.Getenv(s.key)
	if value == "" {
		return "", ErrCredentialNotFound
	}
	return value, nil
}

// StaticStore returns a fixed credential; test use.
type StaticStore struct {
	Credential string
}

func (s *StaticStore) GetProviderCredential(ctx context.Context) (string, error) {
	if s.Credential == "" {
		return "", ErrCredentialNotFound
	}
	return s.Credential, nil
}
