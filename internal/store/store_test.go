package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryCreateGetPut(t *testing.T) {
	testStoreCreateGetPut(t, NewMemory())
}

func TestSQLiteCreateGetPut(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "casino.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	testStoreCreateGetPut(t, s)
}

func testStoreCreateGetPut(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	account := Account{
		Username:     "alice",
		PasswordHash: "hash",
		Balance:      1000,
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	if _, err := s.Get(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get before create: got %v, want ErrNotFound", err)
	}
	if err := s.Put(ctx, account); !errors.Is(err, ErrNotFound) {
		t.Errorf("put before create: got %v, want ErrNotFound", err)
	}

	if err := s.Create(ctx, account); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create(ctx, account); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate create: got %v, want ErrExists", err)
	}

	got, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Username != "alice" || got.PasswordHash != "hash" || got.Balance != 1000 {
		t.Errorf("got %+v, want %+v", got, account)
	}
	if !got.CreatedAt.Equal(account.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, account.CreatedAt)
	}

	account.Balance = 1250
	if err := s.Put(ctx, account); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err = s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get after put: %v", err)
	}
	if got.Balance != 1250 {
		t.Errorf("balance = %d, want 1250", got.Balance)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("hash must not equal the password")
	}

	if !CheckPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
}
