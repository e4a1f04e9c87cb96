package filestorage

import (
	"context"
	"fmt"
	"io"

	"filippo.io/age"
	"github.com/rs/zerolog"
)

// EncryptedStorage wraps another Storage and encrypts every payload with
// age before it reaches the backing store. Private uploads never touch disk
// in clear text.
type EncryptedStorage struct {
	backend   Storage
	recipient age.Recipient
	identity  age.Identity
	logger    zerolog.Logger
}

// NewEncryptedStorage parses the X25519 recipient and identity strings and
// wraps backend.
func NewEncryptedStorage(backend Storage, recipientStr, identityStr string, logger zerolog.Logger) (*EncryptedStorage, error) {
	recipient, err := age.ParseX25519Recipient(recipientStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse age recipient: %w", err)
	}
	identity, err := age.ParseX25519Identity(identityStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse age identity: %w", err)
	}
	return &EncryptedStorage{
		backend:   backend,
		recipient: recipient,
		identity:  identity,
		logger:    logger,
	}, nil
}

// Save encrypts content and stores the ciphertext under the backend key.
func (s *EncryptedStorage) Save(ctx context.Context, category string, filename string, content io.Reader) (string, error) {
	pr, pw := io.Pipe()

	go func() {
		enc, err := age.Encrypt(pw, s.recipient)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("failed to start encryption: %w", err))
			return
		}
		if _, err := io.Copy(enc, content); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to encrypt content: %w", err))
			return
		}
		if err := enc.Close(); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to finalize encryption: %w", err))
			return
		}
		pw.Close()
	}()

	key, err := s.backend.Save(ctx, category, filename, pr)
	if err != nil {
		return "", err
	}
	s.logger.Debug().Str("key", key).Msg("Encrypted file stored")
	return key, nil
}

// Open decrypts the stored object on the fly.
func (s *EncryptedStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	raw, err := s.backend.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	dec, err := age.Decrypt(raw, s.identity)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("failed to decrypt file: %w", err)
	}
	return &decryptReader{Reader: dec, underlying: raw}, nil
}

// Delete removes the stored object.
func (s *EncryptedStorage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

type decryptReader struct {
	io.Reader
	underlying io.ReadCloser
}

func (r *decryptReader) Close() error {
	return r.underlying.Close()
}
