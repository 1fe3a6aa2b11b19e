package config

import (
	"strings"
	"sync"

	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/crypto"
)

const (
	encPrefix = "ENC("
	encSuffix = ")"
)

// SecureConfig resolves configuration properties, transparently decrypting
// values wrapped as ENC(<base64-blob>) and caching the results. The cache
// belongs to this instance, is guarded by a lock, and is invalidated only
// by an explicit Clear.
type SecureConfig struct {
	encryptor *crypto.Encryptor
	masker    *crypto.Masker

	mu    sync.RWMutex
	props map[string]string
	cache map[string]string
}

// NewSecureConfig wraps a property map with decrypting lookup.
func NewSecureConfig(props map[string]string, encryptor *crypto.Encryptor) *SecureConfig {
	copied := make(map[string]string, len(props))
	for k, v := range props {
		copied[k] = v
	}
	return &SecureConfig{
		props:     copied,
		encryptor: encryptor,
		masker:    crypto.NewMasker(),
		cache:     make(map[string]string),
	}
}

// IsEncryptedProperty reports whether a raw value uses the ENC(...) wrapper.
func IsEncryptedProperty(raw string) bool {
	return strings.HasPrefix(raw, encPrefix) && strings.HasSuffix(raw, encSuffix)
}

// GetProperty resolves a property. ENC(...)-wrapped values are decrypted
// once and memoized; a decryption failure surfaces as a SecureConfigError
// naming the property key, never the secret value.
func (s *SecureConfig) GetProperty(key string) (string, bool, error) {
	s.mu.RLock()
	raw, ok := s.props[key]
	cached, hit := s.cache[key]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	if !IsEncryptedProperty(raw) {
		return raw, true, nil
	}
	if hit {
		return cached, true, nil
	}

	blob := strings.TrimSuffix(strings.TrimPrefix(raw, encPrefix), encSuffix)
	plain, err := s.encryptor.Decrypt(blob)
	if err != nil {
		return "", true, &domain.SecureConfigError{Key: key, Err: err}
	}

	s.mu.Lock()
	s.cache[key] = plain
	s.mu.Unlock()

	return plain, true, nil
}

// SetProperty adds or replaces a raw property value and drops any stale
// cache entry for it.
func (s *SecureConfig) SetProperty(key, raw string) {
	s.mu.Lock()
	delete(s.cache, key)
	s.props[key] = raw
	s.mu.Unlock()
}

// Clear drops every cached decrypted value.
func (s *SecureConfig) Clear() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// MaskedProperties returns all properties for diagnostics output. Values of
// sensitively named properties are masked regardless of whether they are
// encrypted, and encrypted values are never shown decrypted.
func (s *SecureConfig) MaskedProperties() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.props))
	for key, raw := range s.props {
		switch {
		case s.masker.IsSensitiveName(key):
			out[key] = crypto.Mask
		case IsEncryptedProperty(raw):
			out[key] = crypto.Mask
		default:
			out[key] = raw
		}
	}
	return out
}
