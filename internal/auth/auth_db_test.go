//go:build testutil
// +build testutil

package auth_test

import (
	"context"
	"testing"
	"time"

	"educrm/internal/auth"
	"educrm/internal/models"
	"educrm/internal/testutil/testdb"
)

func TestEnsureAdminBootstrap(t *testing.T) {
	h, err := testdb.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	ctx := context.Background()

	if err := auth.EnsureAdmin(ctx, h.DB, "boss@educrm.az", "first-pass"); err != nil {
		t.Fatal(err)
	}

	svc := auth.New(h.DB, "test-secret", time.Hour)
	token, claims, err := svc.Login(ctx, "boss@educrm.az", "first-pass")
	if err != nil {
		t.Fatalf("логин стартовым админом: %v", err)
	}
	if token == "" || claims.Role != models.RoleAdmin {
		t.Fatalf("claims = %+v", claims)
	}

	// Повторный старт не трогает существующую запись.
	if err := auth.EnsureAdmin(ctx, h.DB, "boss@educrm.az", "other-pass"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Login(ctx, "boss@educrm.az", "first-pass"); err != nil {
		t.Errorf("старый пароль перестал подходить: %v", err)
	}
	if _, _, err := svc.Login(ctx, "boss@educrm.az", "other-pass"); err == nil {
		t.Error("повторный сид перетёр пароль")
	}

	var n int
	if err := h.DB.QueryRowContext(ctx, `SELECT count(*) FROM admins`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("админов в базе = %d", n)
	}
}
