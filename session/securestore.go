package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// saltKey is a reserved key in the underlying store holding the random salt
// for key derivation. It is stored in the clear; only values are encrypted.
const saltKey = "_salt"

const saltSize = 16

// SecureStore wraps any Store and encrypts values at rest with AES-GCM under
// a key derived from a passphrase via argon2id. Tokens on a shared machine
// should not be readable by anyone who can open the session file.
type SecureStore struct {
	inner Store
	key   []byte
}

// NewSecureStore derives the encryption key and returns the wrapping store.
// The salt is created on first use and persisted in the underlying store.
func NewSecureStore(inner Store, passphrase []byte) (*SecureStore, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}

	encodedSalt, err := inner.Get(saltKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}

	var salt []byte
	if encodedSalt == "" {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		if err := inner.Set(saltKey, base64.StdEncoding.EncodeToString(salt)); err != nil {
			return nil, fmt.Errorf("failed to persist salt: %w", err)
		}
	} else {
		salt, err = base64.StdEncoding.DecodeString(encodedSalt)
		if err != nil {
			return nil, fmt.Errorf("failed to decode stored salt: %w", err)
		}
	}

	key := argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
	return &SecureStore{inner: inner, key: key}, nil
}

func (s *SecureStore) Get(key string) (string, error) {
	stored, err := s.inner.Get(key)
	if err != nil || stored == "" {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", fmt.Errorf("failed to decode stored value: %w", err)
	}

	gcm, err := s.newGCM()
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", fmt.Errorf("stored value too short")
	}
	nonce, ciphertext := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt stored value: %w", err)
	}
	return string(plaintext), nil
}

func (s *SecureStore) Set(key, value string) error {
	gcm, err := s.newGCM()
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(value), nil)
	return s.inner.Set(key, base64.StdEncoding.EncodeToString(sealed))
}

func (s *SecureStore) Delete(key string) error {
	return s.inner.Delete(key)
}

func (s *SecureStore) newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
