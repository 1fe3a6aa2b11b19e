package config_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/config"
	"github.com/crmkit/authcore/internal/infrastructure/crypto"
)

func newSecureConfig(t *testing.T, props map[string]string) (*config.SecureConfig, *crypto.Encryptor) {
	t.Helper()

	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	enc, err := crypto.NewEncryptor(key, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}
	return config.NewSecureConfig(props, enc), enc
}

func TestGetPropertyPlain(t *testing.T) {
	t.Parallel()

	sc, _ := newSecureConfig(t, map[string]string{"http_port": "8080"})

	got, ok, err := sc.GetProperty("http_port")
	if err != nil || !ok || got != "8080" {
		t.Fatalf("expected plain value, got %q, %v, %v", got, ok, err)
	}

	_, ok, err = sc.GetProperty("missing")
	if err != nil || ok {
		t.Fatalf("expected absent property, got %v, %v", ok, err)
	}
}

func TestGetPropertyDecryptsEncValues(t *testing.T) {
	t.Parallel()

	sc, enc := newSecureConfig(t, nil)

	blob, err := enc.Encrypt("db-password-123")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	sc.SetProperty("database.password", "ENC("+blob+")")

	got, ok, err := sc.GetProperty("database.password")
	if err != nil || !ok {
		t.Fatalf("expected decrypted value, got %v, %v", ok, err)
	}
	if got != "db-password-123" {
		t.Fatalf("expected db-password-123, got %q", got)
	}

	// Second lookup is served from the cache and still correct.
	again, _, err := sc.GetProperty("database.password")
	if err != nil || again != "db-password-123" {
		t.Fatalf("cached lookup failed: %q, %v", again, err)
	}
}

func TestGetPropertyDecryptionFailure(t *testing.T) {
	t.Parallel()

	sc, _ := newSecureConfig(t, map[string]string{
		"broken.secret": "ENC(bm90LWEtcmVhbC1ibG9iLWJ1dC1sb25nLWVub3VnaA==)",
	})

	_, _, err := sc.GetProperty("broken.secret")
	if !errors.Is(err, domain.ErrSecureConfig) {
		t.Fatalf("expected ErrSecureConfig, got %v", err)
	}

	var sce *domain.SecureConfigError
	if !errors.As(err, &sce) {
		t.Fatalf("expected SecureConfigError, got %T", err)
	}
	if sce.Key != "broken.secret" {
		t.Fatalf("expected offending key in error, got %q", sce.Key)
	}
}

func TestClearDropsCache(t *testing.T) {
	t.Parallel()

	sc, enc := newSecureConfig(t, nil)

	blob, err := enc.Encrypt("value-1")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	sc.SetProperty("app.secret_seed", "ENC("+blob+")")

	if got, _, err := sc.GetProperty("app.secret_seed"); err != nil || got != "value-1" {
		t.Fatalf("first lookup failed: %q, %v", got, err)
	}

	sc.Clear()

	if got, _, err := sc.GetProperty("app.secret_seed"); err != nil || got != "value-1" {
		t.Fatalf("post-clear lookup failed: %q, %v", got, err)
	}
}

func TestMaskedProperties(t *testing.T) {
	t.Parallel()

	sc, enc := newSecureConfig(t, map[string]string{
		"http_port":         "8080",
		"database.password": "plaintext-oops",
		"api_token":         "tok-12345",
	})

	blob, err := enc.Encrypt("db-password-123")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	sc.SetProperty("smtp.relay", "ENC("+blob+")")

	dump := sc.MaskedProperties()

	if dump["http_port"] != "8080" {
		t.Fatalf("plain property must pass through, got %q", dump["http_port"])
	}
	// Sensitive names are masked even when the value is not encrypted.
	if dump["database.password"] != crypto.Mask {
		t.Fatalf("password property must be masked, got %q", dump["database.password"])
	}
	if dump["api_token"] != crypto.Mask {
		t.Fatalf("token property must be masked, got %q", dump["api_token"])
	}
	// Encrypted values are masked even when the name looks harmless.
	if dump["smtp.relay"] != crypto.Mask {
		t.Fatalf("encrypted property must be masked, got %q", dump["smtp.relay"])
	}
}

func TestGetPropertyConcurrent(t *testing.T) {
	t.Parallel()

	sc, enc := newSecureConfig(t, nil)

	blob, err := enc.Encrypt("shared-secret")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	sc.SetProperty("shared.credential", "ENC("+blob+")")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, _, err := sc.GetProperty("shared.credential")
				if err != nil || got != "shared-secret" {
					t.Errorf("concurrent lookup failed: %q, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSetPropertyConcurrentWithReads(t *testing.T) {
	t.Parallel()

	sc, _ := newSecureConfig(t, map[string]string{"service.name": "authcore"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sc.SetProperty("service.name", "authcore")
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, ok, err := sc.GetProperty("service.name")
				if err != nil || !ok || got != "authcore" {
					t.Errorf("concurrent read failed: %q, %v, %v", got, ok, err)
					return
				}
				if dump := sc.MaskedProperties(); dump["service.name"] != "authcore" {
					t.Errorf("unexpected masked dump entry %q", dump["service.name"])
					return
				}
			}
		}()
	}
	wg.Wait()
}
