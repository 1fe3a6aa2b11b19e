package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/crmkit/authcore/internal/domain"
)

const (
	keySize    = 32 // AES-256
	ivSize     = 12 // 96-bit IV, the GCM recommendation
	tagSize    = 16 // 128-bit authentication tag
	minBlobLen = ivSize + tagSize
)

// Encryptor provides authenticated symmetric encryption for values at rest.
// Blobs are base64(IV || ciphertext+tag); this byte layout is a
// compatibility surface for previously persisted values.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor creates an encryptor from a base64-encoded 256-bit key.
// An empty key generates an ephemeral one and logs a loud warning: every
// value encrypted with it becomes unrecoverable after restart. That path is
// a misconfiguration hazard and must never be reachable in production.
func NewEncryptor(base64Key string, logger zerolog.Logger) (*Encryptor, error) {
	var key []byte

	if base64Key == "" {
		key = make([]byte, keySize)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, fmt.Errorf("%w: generate ephemeral key: %v", domain.ErrEncryption, err)
		}
		logger.Warn().
			Msg("ENCRYPTION_KEY is not configured; using an ephemeral key - encrypted values will NOT survive a restart")
	} else {
		decoded, err := base64.StdEncoding.DecodeString(base64Key)
		if err != nil {
			return nil, fmt.Errorf("%w: key is not valid base64: %v", domain.ErrEncryption, err)
		}
		if len(decoded) != keySize {
			return nil, fmt.Errorf("%w: key must be %d bytes, got %d", domain.ErrEncryption, keySize, len(decoded))
		}
		key = decoded
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: init cipher: %v", domain.ErrEncryption, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: init GCM: %v", domain.ErrEncryption, err)
	}

	return &Encryptor{aead: aead}, nil
}

// GenerateKey returns a fresh random 256-bit key, base64-encoded, suitable
// for the ENCRYPTION_KEY setting.
func GenerateKey() (string, error) {
	key := make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", fmt.Errorf("%w: generate key: %v", domain.ErrEncryption, err)
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// Encrypt encrypts plaintext with a fresh random IV and returns
// base64(IV || ciphertext+tag). Encryption is non-deterministic: two calls
// on the same plaintext produce different blobs. Empty input passes through
// unchanged.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return plaintext, nil
	}

	iv := make([]byte, ivSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("%w: generate IV: %v", domain.ErrEncryption, err)
	}

	sealed := e.aead.Seal(nil, iv, []byte(plaintext), nil)

	blob := make([]byte, 0, ivSize+len(sealed))
	blob = append(blob, iv...)
	blob = append(blob, sealed...)

	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt reverses Encrypt. Tag verification failure (tampered data, wrong
// key) fails with an error wrapping domain.ErrEncryption; corrupted
// plaintext is never returned. Empty input passes through unchanged.
func (e *Encryptor) Decrypt(blob string) (string, error) {
	if blob == "" {
		return blob, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: blob is not valid base64: %v", domain.ErrEncryption, err)
	}
	if len(decoded) < minBlobLen {
		return "", fmt.Errorf("%w: blob too short: %d bytes", domain.ErrEncryption, len(decoded))
	}

	iv := decoded[:ivSize]
	ciphertext := decoded[ivSize:]

	plaintext, err := e.aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", domain.ErrEncryption)
	}

	return string(plaintext), nil
}

// IsEncrypted is a best-effort classifier: valid base64 whose decoded form
// is long enough to hold an IV and a tag. Not a security boundary.
func (e *Encryptor) IsEncrypted(data string) bool {
	if data == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return false
	}
	return len(decoded) >= minBlobLen
}
