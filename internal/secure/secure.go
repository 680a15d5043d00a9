// Package secure encrypts tenant mailing addresses before they are stored.
package secure

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

// Vault wraps a fernet key used to encrypt and decrypt PII columns.
type Vault struct {
	key *fernet.Key
}

// NewVault creates a Vault from a base64-encoded fernet key. An empty key
// generates a process-local one, which is fine for development and tests but
// means stored values cannot be read back after a restart.
func NewVault(encodedKey string) (*Vault, error) {
	if encodedKey == "" {
		var key fernet.Key
		if err := key.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate fernet key: %w", err)
		}
		return &Vault{key: &key}, nil
	}

	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}

	return &Vault{key: key}, nil
}

// Encrypt returns the fernet token for the given value. Empty stays empty.
func (v *Vault) Encrypt(value string) (string, error) {
	if value == "" {
		return "", nil
	}

	token, err := fernet.EncryptAndSign([]byte(value), v.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}

	return string(token), nil
}

// Decrypt reverses Encrypt. Values that are not valid tokens (written before
// encryption was configured) pass through unchanged.
func (v *Vault) Decrypt(value string) string {
	if value == "" {
		return ""
	}

	plain := fernet.VerifyAndDecrypt([]byte(value), 0, []*fernet.Key{v.key})
	if plain == nil {
		return value
	}

	return string(plain)
}
