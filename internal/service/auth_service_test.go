package service

import (
	"context"
	"testing"
	"time"

	"tasktracker/internal/apperr"
	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	tokens := repository.NewTokenRepository(newTestDB(t))
	return NewAuthService(tokens, "test-secret", 15*time.Minute, time.Hour)
}

func TestIssuePairAndVerify(t *testing.T) {
	svc := newAuthService(t)
	user := &model.User{ID: 42}

	pair, err := svc.IssuePair(context.Background(), user)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("expected both tokens to be issued")
	}

	userID, err := svc.VerifyAccess(pair.Access)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	svc := newAuthService(t)

	pair, err := svc.IssuePair(context.Background(), &model.User{ID: 1})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if _, err := svc.VerifyAccess(pair.Refresh); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Errorf("error = %v, want unauthorized", err)
	}
}

func TestVerifyAccessRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.VerifyAccess(token); !apperr.IsCode(err, apperr.CodeUnauthorized) {
			t.Errorf("VerifyAccess(%q) error = %v, want unauthorized", token, err)
		}
	}
}

func TestVerifyAccessRejectsForeignSignature(t *testing.T) {
	db := newTestDB(t)
	tokens := repository.NewTokenRepository(db)
	issuer := NewAuthService(tokens, "secret-a", 15*time.Minute, time.Hour)
	verifier := NewAuthService(tokens, "secret-b", 15*time.Minute, time.Hour)

	pair, err := issuer.IssuePair(context.Background(), &model.User{ID: 1})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := verifier.VerifyAccess(pair.Access); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Errorf("error = %v, want unauthorized", err)
	}
}

func TestRefresh(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, &model.User{ID: 7})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	access, err := svc.Refresh(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	userID, err := svc.VerifyAccess(access)
	if err != nil {
		t.Fatalf("VerifyAccess on refreshed token: %v", err)
	}
	if userID != 7 {
		t.Errorf("userID = %d, want 7", userID)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, &model.User{ID: 1})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.Access); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Errorf("error = %v, want unauthorized", err)
	}
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, &model.User{ID: 1})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	base := time.Now()
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }

	if _, err := svc.Refresh(ctx, pair.Refresh); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Errorf("error = %v, want unauthorized", err)
	}
}

func TestRefreshRejectsUnrecognizedJTI(t *testing.T) {
	db := newTestDB(t)
	tokens := repository.NewTokenRepository(db)
	svc := NewAuthService(tokens, "test-secret", 15*time.Minute, time.Hour)
	ctx := context.Background()

	// A refresh token signed with the right secret but never recorded.
	other := NewAuthService(repository.NewTokenRepository(newTestDB(t)), "test-secret", 15*time.Minute, time.Hour)
	pair, err := other.IssuePair(ctx, &model.User{ID: 1})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if _, err := svc.Refresh(ctx, pair.Refresh); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Errorf("error = %v, want unauthorized", err)
	}
}

func TestRevoke(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, &model.User{ID: 1})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if err := svc.Revoke(ctx, pair.Refresh); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.Refresh); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Errorf("refresh after revoke error = %v, want unauthorized", err)
	}

	// Revoking again is a no-op.
	if err := svc.Revoke(ctx, pair.Refresh); err != nil {
		t.Errorf("second Revoke: %v", err)
	}
}

func TestRevokeLeavesOtherTokensAlive(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	first, err := svc.IssuePair(ctx, &model.User{ID: 1})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	second, err := svc.IssuePair(ctx, &model.User{ID: 1})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if err := svc.Revoke(ctx, first.Refresh); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := svc.Refresh(ctx, second.Refresh); err != nil {
		t.Errorf("unrevoked token should still refresh: %v", err)
	}
}

func TestRevokeRejectsInvalidTokens(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, &model.User{ID: 1})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if err := svc.Revoke(ctx, "garbage"); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Errorf("garbage revoke error = %v, want unauthorized", err)
	}
	// An access token is not a revocable credential.
	if err := svc.Revoke(ctx, pair.Access); !apperr.IsCode(err, apperr.CodeUnauthorized) {
		t.Errorf("access-token revoke error = %v, want unauthorized", err)
	}
}

func TestPurgeRemovesRevoked(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	revoked, err := svc.IssuePair(ctx, &model.User{ID: 1})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	live, err := svc.IssuePair(ctx, &model.User{ID: 2})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if err := svc.Revoke(ctx, revoked.Refresh); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	// Revoked rows are purged even before their expiry.
	removed, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := svc.Refresh(ctx, live.Refresh); err != nil {
		t.Errorf("live token should survive the purge: %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.IssuePair(ctx, &model.User{ID: 1}); err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	pair, err := svc.IssuePair(ctx, &model.User{ID: 2})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	// Nothing has expired yet.
	removed, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
	if _, err := svc.Refresh(ctx, pair.Refresh); err != nil {
		t.Fatalf("live refresh token should still work: %v", err)
	}

	base := time.Now()
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }

	removed, err = svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
}
