package auth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/crmkit/authcore/internal/domain"
	"github.com/crmkit/authcore/internal/infrastructure/auth"
)

func TestSecurityContextRoundTrip(t *testing.T) {
	t.Parallel()

	sc := domain.NewSecurityContext(domain.SecurityContextParams{
		UserID:   "user-1",
		TenantID: "tenant-1",
		Roles:    []domain.Role{domain.RoleAdmin},
	})

	ctx := auth.WithSecurityContext(context.Background(), sc)

	got, ok := auth.SecurityContextFrom(ctx)
	if !ok {
		t.Fatal("expected installed context to be found")
	}
	if got.UserID() != "user-1" {
		t.Fatalf("unexpected user: %s", got.UserID())
	}
	if !auth.HasSecurityContext(ctx) {
		t.Fatal("HasSecurityContext should report true")
	}
}

func TestSecurityContextAbsence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if _, ok := auth.SecurityContextFrom(ctx); ok {
		t.Fatal("empty context must not carry a security context")
	}
	if auth.HasSecurityContext(ctx) {
		t.Fatal("HasSecurityContext should report false")
	}
	if _, ok := auth.SecurityContextFrom(nil); ok {
		t.Fatal("nil context must not carry a security context")
	}

	// Installing nil is a no-op, not a crash.
	if auth.HasSecurityContext(auth.WithSecurityContext(ctx, nil)) {
		t.Fatal("nil snapshot must not install anything")
	}
}

// Two logically concurrent requests must never observe each other's
// security context, and a finished request leaves nothing behind for the
// next one handled on the same goroutine.
func TestSecurityContextIsolation(t *testing.T) {
	t.Parallel()

	handle := func(userID string) string {
		sc := domain.NewSecurityContext(domain.SecurityContextParams{UserID: userID})
		ctx := auth.WithSecurityContext(context.Background(), sc)
		got, _ := auth.SecurityContextFrom(ctx)
		return got.UserID()
	}

	// Sequential reuse on one goroutine: request N's context is gone
	// before request N+1 authenticates.
	if got := handle("user-a"); got != "user-a" {
		t.Fatalf("unexpected user: %s", got)
	}
	if auth.HasSecurityContext(context.Background()) {
		t.Fatal("a completed request leaked its security context")
	}
	if got := handle("user-b"); got != "user-b" {
		t.Fatalf("unexpected user: %s", got)
	}

	// Concurrent requests with distinct contexts: no cross-contamination.
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		userID := "user-" + string(rune('a'+i%26))
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := handle(userID); got != userID {
					t.Errorf("context cross-contamination: got %s, want %s", got, userID)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestTenantRoundTrip(t *testing.T) {
	t.Parallel()

	tenant := &domain.Tenant{ID: "tenant-1", Subdomain: "acme", Active: true}
	ctx := auth.WithTenant(context.Background(), tenant)

	got, ok := auth.TenantFrom(ctx)
	if !ok || got.ID != "tenant-1" {
		t.Fatalf("expected tenant-1, got %+v, %v", got, ok)
	}

	if _, ok := auth.TenantFrom(context.Background()); ok {
		t.Fatal("empty context must not carry a tenant")
	}
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := auth.WithCorrelationID(context.Background(), "corr-1")

	got, ok := auth.CorrelationIDFrom(ctx)
	if !ok || got != "corr-1" {
		t.Fatalf("expected corr-1, got %q, %v", got, ok)
	}

	if _, ok := auth.CorrelationIDFrom(context.Background()); ok {
		t.Fatal("empty context must not carry a correlation id")
	}
}
