package user

import (
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidRole = errors.New("invalid role")

type Role string

const (
	RoleTourist  Role = "tourist"
	RoleGuide    Role = "guide"
	RoleOperator Role = "operator"
	// RoleSystem is never issued in tokens; it identifies background work such as payment settlement
	RoleSystem Role = "system"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleTourist, RoleGuide, RoleOperator, RoleSystem:
		return true
	default:
		return false
	}
}

// NewRole parses roles that may appear in bearer tokens
func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() || role == RoleSystem {
		return "", ErrInvalidRole
	}
	return role, nil
}

// Actor is whoever requests a change: an authenticated user or the system itself
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func NewActor(id uuid.UUID, role Role) Actor {
	return Actor{ID: id, Role: role}
}

func SystemActor() Actor {
	return Actor{ID: uuid.Nil, Role: RoleSystem}
}

func (a Actor) IsSystem() bool   { return a.Role == RoleSystem }
func (a Actor) IsOperator() bool { return a.Role == RoleOperator }

func (a Actor) IsTourist(id uuid.UUID) bool {
	return a.Role == RoleTourist && a.ID == id
}

func (a Actor) IsGuide(id uuid.UUID) bool {
	return a.Role == RoleGuide && a.ID == id
}

func (a Actor) String() string {
	if a.IsSystem() {
		return string(RoleSystem)
	}
	return string(a.Role) + ":" + a.ID.String()
}
