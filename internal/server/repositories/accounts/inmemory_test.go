package accounts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dsavelev/authkeeper/internal/common"
	"github.com/dsavelev/authkeeper/internal/server/models"
)

func seedAccount(t *testing.T, repo *InMemoryRepository, username string) *models.Account {
	t.Helper()
	acct, err := repo.Insert(context.Background(), &models.Account{
		Username: username,
		Email:    username + "@example.com",
	})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	return acct
}

func TestInMemory_InsertDuplicateUsername(t *testing.T) {
	repo := NewInMemoryRepository()
	seedAccount(t, repo, "alice")

	_, err := repo.Insert(context.Background(), &models.Account{Username: "alice"})
	if !errors.Is(err, common.ErrorConflict) {
		t.Fatalf("want common.ErrorConflict, got %v", err)
	}
}

func TestInMemory_FindByUsername_CaseSensitive(t *testing.T) {
	repo := NewInMemoryRepository()
	seedAccount(t, repo, "alice")

	if _, err := repo.FindByUsername(context.Background(), "Alice"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("usernames must match case-sensitively, got %v", err)
	}
}

func TestInMemory_FindByVerificationToken_SkipsVerified(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	acct := seedAccount(t, repo, "alice")
	acct.VerificationToken = "vtok"
	if err := repo.Update(ctx, acct); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	found, err := repo.FindByVerificationToken(ctx, "vtok")
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if found.ID != acct.ID {
		t.Fatalf("wrong account: %+v", found)
	}

	now := time.Now()
	acct.VerifiedAt = &now
	if err := repo.Update(ctx, acct); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if _, err := repo.FindByVerificationToken(ctx, "vtok"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("verified account must not match, got %v", err)
	}
}

func TestInMemory_RotateRefreshToken_SingleUse(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	acct := seedAccount(t, repo, "alice")
	now := time.Now()
	expires := now.Add(3 * time.Hour)
	acct.RefreshToken = "first"
	acct.RefreshTokenCreatedAt = &now
	acct.RefreshTokenExpires = &expires
	if err := repo.Update(ctx, acct); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	next := models.RefreshRecord{Token: "second", CreatedAt: time.Now(), Expires: time.Now().Add(3 * time.Hour)}
	if err := repo.RotateRefreshToken(ctx, acct.ID, "first", next); err != nil {
		t.Fatalf("first rotation must succeed: %v", err)
	}

	// the old value is permanently invalid
	err := repo.RotateRefreshToken(ctx, acct.ID, "first", models.RefreshRecord{
		Token: "third", CreatedAt: time.Now(), Expires: time.Now().Add(3 * time.Hour)})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("replayed rotation must be rejected, got %v", err)
	}
}

func TestInMemory_RotateRefreshToken_Expired(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	acct := seedAccount(t, repo, "alice")
	now := time.Now()
	expired := now.Add(-time.Minute)
	acct.RefreshToken = "stale"
	acct.RefreshTokenExpires = &expired
	if err := repo.Update(ctx, acct); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err := repo.RotateRefreshToken(ctx, acct.ID, "stale", models.RefreshRecord{
		Token: "fresh", CreatedAt: now, Expires: now.Add(3 * time.Hour)})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expired rotation must be rejected, got %v", err)
	}
}

func TestInMemory_RotateRefreshToken_ConcurrentDoubleSpend(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	acct := seedAccount(t, repo, "alice")
	now := time.Now()
	expires := now.Add(3 * time.Hour)
	acct.RefreshToken = "spend-me"
	acct.RefreshTokenExpires = &expires
	if err := repo.Update(ctx, acct); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	const attempts = 16
	var wg sync.WaitGroup
	successes := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := models.RefreshRecord{Token: "next", CreatedAt: time.Now(), Expires: time.Now().Add(3 * time.Hour)}
			if err := repo.RotateRefreshToken(ctx, acct.ID, "spend-me", next); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	var n int
	for range successes {
		n++
	}
	if n != 1 {
		t.Fatalf("exactly one concurrent rotation may succeed, got %d", n)
	}
}

func TestInMemory_DeleteAndList(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	a := seedAccount(t, repo, "alice")
	seedAccount(t, repo, "bob")

	list, err := repo.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("List: %v, len=%d", err, len(list))
	}

	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(ctx, a.ID); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("second delete must be NotFound, got %v", err)
	}
}
