package access

import (
	_ "embed"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"docarchive/internal/domain"
	"docarchive/internal/domain/models/archive"
)

// Capability is a named permission derived from a role
type Capability string

const (
	CapCreate           Capability = "create"
	CapEdit             Capability = "edit"
	CapDelete           Capability = "delete"
	CapCreateRootFolder Capability = "create_root_folder"
	CapManageUsers      Capability = "manage_users"
)

//go:embed policy.yaml
var policyFile []byte

type policyDocument struct {
	Roles map[archive.Role][]Capability `yaml:"roles"`
}

// grants is loaded once at init and never mutated, so lookups are pure.
var grants = mustLoad(policyFile)

func mustLoad(data []byte) map[archive.Role][]Capability {
	g, err := parsePolicy(data)
	if err != nil {
		panic(fmt.Sprintf("access: %v", err))
	}
	return g
}

func parsePolicy(data []byte) (map[archive.Role][]Capability, error) {
	var doc policyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal policy: %w", err)
	}
	for role, caps := range doc.Roles {
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q in policy", role)
		}
		for _, c := range caps {
			if !c.valid() {
				return nil, fmt.Errorf("unknown capability %q for role %s", c, role)
			}
		}
	}
	return doc.Roles, nil
}

func (c Capability) valid() bool {
	switch c {
	case CapCreate, CapEdit, CapDelete, CapCreateRootFolder, CapManageUsers:
		return true
	}
	return false
}

// Can reports whether role holds capability
func Can(role archive.Role, capability Capability) bool {
	return slices.Contains(grants[role], capability)
}

// Capabilities lists the grants of role in policy order
func Capabilities(role archive.Role) []Capability {
	return slices.Clone(grants[role])
}

// Actor is a caller whose role has already been resolved
type Actor struct {
	Username string
	Role     archive.Role
}

// ActorFor builds an Actor from a stored user
func ActorFor(user *archive.User) Actor {
	return Actor{Username: user.Username, Role: user.Role}
}

func (a Actor) CanCreate() bool           { return Can(a.Role, CapCreate) }
func (a Actor) CanEdit() bool             { return Can(a.Role, CapEdit) }
func (a Actor) CanDelete() bool           { return Can(a.Role, CapDelete) }
func (a Actor) CanCreateRootFolder() bool { return Can(a.Role, CapCreateRootFolder) }
func (a Actor) CanManageUsers() bool      { return Can(a.Role, CapManageUsers) }

// Require returns a ForbiddenError unless actor holds capability
func Require(actor Actor, capability Capability) error {
	if Can(actor.Role, capability) {
		return nil
	}
	return &domain.ForbiddenError{
		Message: fmt.Sprintf("user %q (%s) lacks %s permission", actor.Username, actor.Role, capability),
	}
}
