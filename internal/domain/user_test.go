package domain

import "testing"

func TestUserHasRole(t *testing.T) {
	user := &User{Roles: []string{"ADMIN", "USER"}}

	if !user.HasRole("ADMIN") {
		t.Error("expected ADMIN match")
	}
	if user.HasRole("admin") {
		t.Error("matching must be case-sensitive")
	}
	if user.HasRole("") {
		t.Error("empty role must not match")
	}

	var nilUser *User
	if nilUser.HasRole("ADMIN") {
		t.Error("nil user has no roles")
	}
	if (&User{}).HasRole("USER") {
		t.Error("user without roles must not match")
	}
}

func TestUserClone(t *testing.T) {
	user := &User{ID: "u1", Roles: []string{"USER"}}
	cp := user.Clone()

	cp.Roles[0] = "ADMIN"
	cp.ID = "u2"

	if user.Roles[0] != "USER" || user.ID != "u1" {
		t.Errorf("clone must not share state, got %+v", user)
	}

	var nilUser *User
	if nilUser.Clone() != nil {
		t.Error("cloning nil yields nil")
	}
}

func TestUserPatchApply(t *testing.T) {
	base := &User{
		ID:       "u1",
		Username: "demo",
		Email:    "d@x.com",
		FullName: "Demo User",
		Roles:    []string{"USER"},
	}

	newName := "New Name"
	merged := UserPatch{FullName: &newName}.Apply(base)

	if merged.FullName != "New Name" {
		t.Errorf("expected patched name, got %q", merged.FullName)
	}
	if merged.ID != "u1" || merged.Username != "demo" || merged.Email != "d@x.com" {
		t.Errorf("unspecified fields must survive, got %+v", merged)
	}
	if base.FullName != "Demo User" {
		t.Error("Apply must not mutate the input")
	}

	empty := ""
	cleared := UserPatch{Email: &empty}.Apply(base)
	if cleared.Email != "" {
		t.Error("explicit empty string must overwrite")
	}

	roles := []string{"ADMIN"}
	reassigned := UserPatch{Roles: &roles}.Apply(base)
	if len(reassigned.Roles) != 1 || reassigned.Roles[0] != "ADMIN" {
		t.Errorf("expected replaced roles, got %v", reassigned.Roles)
	}

	if (UserPatch{FullName: &newName}).Apply(nil) != nil {
		t.Error("applying to nil yields nil")
	}
}
