package services

import (
	"errors"
	"testing"
	"time"

	"github.com/dsavelev/authkeeper/internal/common"
	"github.com/dsavelev/authkeeper/internal/server/models"
)

func verifiedAccount(attempts int) *models.Account {
	now := time.Now()
	return &models.Account{Username: "alice", LoginAttemptCount: attempts, VerifiedAt: &now}
}

func TestLoginAttemptGuard_Check(t *testing.T) {
	guard := LoginAttemptGuard{MaxAttempts: 3}

	tests := []struct {
		name    string
		account *models.Account
		blocked bool
	}{
		{name: "verified with zero failures", account: verifiedAccount(0), blocked: false},
		{name: "verified at the ceiling", account: verifiedAccount(3), blocked: false},
		{name: "verified past the ceiling", account: verifiedAccount(4), blocked: true},
		{name: "unverified", account: &models.Account{Username: "bob"}, blocked: true},
		{name: "unverified and past ceiling", account: &models.Account{Username: "bob", LoginAttemptCount: 10}, blocked: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := guard.Check(tc.account)
			if tc.blocked {
				if !errors.Is(err, common.ErrorAccountLocked) {
					t.Fatalf("want common.ErrorAccountLocked, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
