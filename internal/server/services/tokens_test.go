package services

import (
	"encoding/base64"
	"encoding/hex"
	"testing"
	"time"
)

func TestMintOpaqueToken(t *testing.T) {
	t.Parallel()

	tok, err := mintOpaqueToken(8 * time.Hour)
	if err != nil {
		t.Fatalf("mintOpaqueToken error: %v", err)
	}
	if _, err := hex.DecodeString(tok.Token); err != nil {
		t.Fatalf("token is not hex: %v", err)
	}
	if got := tok.Expires.Sub(tok.CreatedAt); got != 8*time.Hour {
		t.Fatalf("validity: got %v want %v", got, 8*time.Hour)
	}

	other, err := mintOpaqueToken(8 * time.Hour)
	if err != nil {
		t.Fatalf("mintOpaqueToken error: %v", err)
	}
	if tok.Token == other.Token {
		t.Fatalf("two minted tokens are identical")
	}
}

func TestMintRefreshRecord(t *testing.T) {
	t.Parallel()

	rec, err := mintRefreshRecord(3 * time.Hour)
	if err != nil {
		t.Fatalf("mintRefreshRecord error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(rec.Token)
	if err != nil {
		t.Fatalf("token is not base64: %v", err)
	}
	if len(raw) != 64 {
		t.Fatalf("token entropy: got %d bytes want 64", len(raw))
	}
	if got := rec.Expires.Sub(rec.CreatedAt); got != 3*time.Hour {
		t.Fatalf("validity: got %v want %v", got, 3*time.Hour)
	}
}
