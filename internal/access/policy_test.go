package access

import (
	"errors"
	"testing"

	"docarchive/internal/domain"
	"docarchive/internal/domain/models/archive"
)

func TestRoleMatrix(t *testing.T) {
	tests := []struct {
		role archive.Role
		want map[Capability]bool
	}{
		{
			role: archive.RoleAdmin,
			want: map[Capability]bool{
				CapCreate: true, CapEdit: true, CapDelete: true,
				CapCreateRootFolder: true, CapManageUsers: true,
			},
		},
		{
			role: archive.RoleEditor,
			want: map[Capability]bool{
				CapCreate: true, CapEdit: true, CapDelete: true,
				CapCreateRootFolder: false, CapManageUsers: false,
			},
		},
		{
			role: archive.RoleViewer,
			want: map[Capability]bool{
				CapCreate: false, CapEdit: false, CapDelete: false,
				CapCreateRootFolder: false, CapManageUsers: false,
			},
		},
		{
			role: archive.Role("intruder"),
			want: map[Capability]bool{
				CapCreate: false, CapEdit: false, CapDelete: false,
				CapCreateRootFolder: false, CapManageUsers: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			for capability, want := range tt.want {
				if got := Can(tt.role, capability); got != want {
					t.Errorf("Can(%s, %s) = %v, want %v", tt.role, capability, got, want)
				}
			}
		})
	}
}

func TestActorHelpers(t *testing.T) {
	editor := Actor{Username: "ed", Role: archive.RoleEditor}
	if !editor.CanCreate() || !editor.CanEdit() || !editor.CanDelete() {
		t.Error("editor should create, edit and delete")
	}
	if editor.CanCreateRootFolder() || editor.CanManageUsers() {
		t.Error("editor should not create root folders or manage users")
	}
}

func TestRequire(t *testing.T) {
	viewer := Actor{Username: "vi", Role: archive.RoleViewer}
	err := Require(viewer, CapCreate)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("Require() error = %v, want ErrForbidden", err)
	}

	admin := Actor{Username: "admin", Role: archive.RoleAdmin}
	if err := Require(admin, CapManageUsers); err != nil {
		t.Errorf("Require() unexpected error: %v", err)
	}
}

func TestParsePolicyRejectsUnknownNames(t *testing.T) {
	if _, err := parsePolicy([]byte("roles:\n  owner: [create]\n")); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := parsePolicy([]byte("roles:\n  editor: [publish]\n")); err == nil {
		t.Error("expected error for unknown capability")
	}
}

func TestCapabilitiesReturnsCopy(t *testing.T) {
	caps := Capabilities(archive.RoleEditor)
	if len(caps) != 3 {
		t.Fatalf("len = %d, want 3", len(caps))
	}
	caps[0] = CapManageUsers
	if Can(archive.RoleEditor, CapManageUsers) {
		t.Error("mutating the returned slice must not change the policy")
	}
}
