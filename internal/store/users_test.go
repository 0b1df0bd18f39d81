package store

import (
	"context"
	"errors"
	"testing"

	"cheop/internal/db"
	"cheop/internal/model"
)

func TestCreateUserDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "alice", "hash", model.RoleSales); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err := CreateUser(ctx, database, "alice", "hash", model.RoleAdmin)
	var ce *model.ConflictError
	if !errors.As(err, &ce) {
		t.Errorf("expected ConflictError, got %v", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	created, _ := CreateUser(ctx, database, "alice", "hash", model.RoleSales)

	got, err := GetUserByUsername(ctx, database, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Errorf("expected user %d, got %+v", created.ID, got)
	}

	missing, err := GetUserByUsername(ctx, database, "nobody")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown username, got %+v", missing)
	}
}

func TestDeleteUserFreesUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "alice", "hash", model.RoleSales)
	if err := DeleteUser(ctx, database, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected no active users, got %d", len(users))
	}

	// Soft-deleted usernames can be reused.
	if _, err := CreateUser(ctx, database, "alice", "hash2", model.RoleSales); err != nil {
		t.Errorf("reusing deleted username: %v", err)
	}
}

func TestUserMutationsMissingUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	var nfe *model.NotFoundError
	if err := UpdateUserRole(ctx, database, 999, model.RoleAdmin); !errors.As(err, &nfe) {
		t.Errorf("UpdateUserRole: expected NotFoundError, got %v", err)
	}
	if err := UpdateUserPassword(ctx, database, 999, "hash"); !errors.As(err, &nfe) {
		t.Errorf("UpdateUserPassword: expected NotFoundError, got %v", err)
	}
	if err := DeleteUser(ctx, database, 999); !errors.As(err, &nfe) {
		t.Errorf("DeleteUser: expected NotFoundError, got %v", err)
	}

	// Soft-deleted users count as missing too.
	u, _ := CreateUser(ctx, database, "alice", "hash", model.RoleSales)
	if err := DeleteUser(ctx, database, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if err := UpdateUserRole(ctx, database, u.ID, model.RoleAdmin); !errors.As(err, &nfe) {
		t.Errorf("UpdateUserRole on deleted user: expected NotFoundError, got %v", err)
	}
}

func TestUpdateUserRole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	u, _ := CreateUser(ctx, database, "alice", "hash", model.RoleSales)
	if err := UpdateUserRole(ctx, database, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}

	got, _ := GetUser(ctx, database, u.ID)
	if got.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", got.Role)
	}
}
