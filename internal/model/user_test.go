package model

import "testing"

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("expected error for short password")
	}
	if err := ValidatePassword("longenough"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleAdmin) || !ValidRole(RoleSales) {
		t.Error("expected built-in roles to be valid")
	}
	if ValidRole("manager") {
		t.Error("expected unknown role to be invalid")
	}
}

func TestValidOrderStatus(t *testing.T) {
	for _, s := range []string{OrderRequested, OrderApproved, OrderRejected, OrderDone} {
		if !ValidOrderStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidOrderStatus("shipped") {
		t.Error("expected unknown status to be invalid")
	}
}
