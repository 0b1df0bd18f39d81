package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"cheop/internal/db"
	"cheop/internal/model"
)

// seedSalesPair creates two sales users and returns actors for them.
func seedSalesPair(t *testing.T, database *sql.DB) (model.Actor, model.Actor) {
	t.Helper()
	ctx := context.Background()

	a, err := CreateUser(ctx, database, "alice", "hash", model.RoleSales)
	if err != nil {
		t.Fatalf("creating alice: %v", err)
	}
	b, err := CreateUser(ctx, database, "bob", "hash", model.RoleSales)
	if err != nil {
		t.Fatalf("creating bob: %v", err)
	}
	return model.Actor{ID: a.ID, Role: model.RoleSales},
		model.Actor{ID: b.ID, Role: model.RoleSales}
}

func TestCreateClient(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice, _ := seedSalesPair(t, database)

	client, err := CreateClient(ctx, database, alice, ClientParams{
		Name:   "Kim Pharmacy",
		CareNo: "12345678",
		Phone:  "021234567",
	})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if client.OwnerID != alice.ID {
		t.Errorf("expected owner %d, got %d", alice.ID, client.OwnerID)
	}
	if client.CareNo != "12345678" {
		t.Errorf("expected care number '12345678', got %q", client.CareNo)
	}
}

func TestCreateClientCareNoValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice, _ := seedSalesPair(t, database)

	for _, careNo := range []string{"1234567", "123456789", "1234567a"} {
		_, err := CreateClient(ctx, database, alice, ClientParams{Name: "X", CareNo: careNo})
		var ve *model.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("care number %q: expected ValidationError, got %v", careNo, err)
		}
	}

	// Empty care number is fine, the field is optional.
	if _, err := CreateClient(ctx, database, alice, ClientParams{Name: "X"}); err != nil {
		t.Errorf("empty care number: %v", err)
	}
}

func TestClientNameUniquePerOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice, bob := seedSalesPair(t, database)

	if _, err := CreateClient(ctx, database, alice, ClientParams{Name: "Kim Pharmacy"}); err != nil {
		t.Fatalf("CreateClient: %v", err)
	}

	// Same owner, same name: conflict.
	_, err := CreateClient(ctx, database, alice, ClientParams{Name: "Kim Pharmacy"})
	var ce *model.ConflictError
	if !errors.As(err, &ce) {
		t.Errorf("expected ConflictError, got %v", err)
	}

	// Different owner may reuse the name.
	if _, err := CreateClient(ctx, database, bob, ClientParams{Name: "Kim Pharmacy"}); err != nil {
		t.Errorf("CreateClient for second owner: %v", err)
	}
}

func TestClientNameReusableAfterDelete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice, _ := seedSalesPair(t, database)

	client, _ := CreateClient(ctx, database, alice, ClientParams{Name: "Kim Pharmacy"})
	if err := DeleteClient(ctx, database, alice, client.ID); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}

	if _, err := CreateClient(ctx, database, alice, ClientParams{Name: "Kim Pharmacy"}); err != nil {
		t.Errorf("reusing deleted client's name: %v", err)
	}
}

func TestGetClientScopedByOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice, bob := seedSalesPair(t, database)

	client, _ := CreateClient(ctx, database, alice, ClientParams{Name: "Kim Pharmacy"})

	// Another sales user sees "not found", not "forbidden".
	got, err := GetClient(ctx, database, bob, client.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for foreign client, got %+v", got)
	}

	// An admin sees everything.
	admin := model.Actor{ID: 99, Role: model.RoleAdmin}
	got, err = GetClient(ctx, database, admin, client.ID)
	if err != nil {
		t.Fatalf("GetClient as admin: %v", err)
	}
	if got == nil {
		t.Error("expected admin to see the client")
	}
}

func TestListClientsScoped(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice, bob := seedSalesPair(t, database)

	CreateClient(ctx, database, alice, ClientParams{Name: "A1"})
	CreateClient(ctx, database, alice, ClientParams{Name: "A2"})
	CreateClient(ctx, database, bob, ClientParams{Name: "B1"})

	own, err := ListClients(ctx, database, alice)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(own) != 2 {
		t.Errorf("expected 2 clients for alice, got %d", len(own))
	}

	admin := model.Actor{ID: 99, Role: model.RoleAdmin}
	all, err := ListClients(ctx, database, admin)
	if err != nil {
		t.Fatalf("ListClients as admin: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 clients for admin, got %d", len(all))
	}
}

func TestClientOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice, _ := seedSalesPair(t, database)

	client, _ := CreateClient(ctx, database, alice, ClientParams{Name: "Kim Pharmacy"})

	owner, err := ClientOwner(ctx, database, client.ID)
	if err != nil {
		t.Fatalf("ClientOwner: %v", err)
	}
	if owner != alice.ID {
		t.Errorf("expected owner %d, got %d", alice.ID, owner)
	}

	var nfe *model.NotFoundError
	if _, err := ClientOwner(ctx, database, 999); !errors.As(err, &nfe) {
		t.Errorf("expected NotFoundError for missing client, got %v", err)
	}

	DeleteClient(ctx, database, alice, client.ID)
	if _, err := ClientOwner(ctx, database, client.ID); !errors.As(err, &nfe) {
		t.Errorf("expected NotFoundError for deleted client, got %v", err)
	}
}

func TestUpdateClientOwnership(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice, bob := seedSalesPair(t, database)

	client, _ := CreateClient(ctx, database, alice, ClientParams{Name: "Kim Pharmacy"})

	_, err := UpdateClient(ctx, database, bob, client.ID, ClientParams{Name: "Hijacked"})
	var ae *model.AuthorizationError
	if !errors.As(err, &ae) {
		t.Errorf("expected AuthorizationError, got %v", err)
	}

	updated, err := UpdateClient(ctx, database, alice, client.ID, ClientParams{Name: "Kim & Sons"})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}
	if updated.Name != "Kim & Sons" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
}

func TestListClientsExcludesDeleted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	alice, _ := seedSalesPair(t, database)

	keep, _ := CreateClient(ctx, database, alice, ClientParams{Name: "Keep"})
	gone, _ := CreateClient(ctx, database, alice, ClientParams{Name: "Gone"})
	DeleteClient(ctx, database, alice, gone.ID)

	clients, err := ListClients(ctx, database, alice)
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(clients) != 1 || clients[0].ID != keep.ID {
		t.Errorf("expected only the kept client, got %+v", clients)
	}
}
