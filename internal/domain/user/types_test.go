//go:build unit

package user_test

import (
	"testing"

	"tourbook/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewRole(t *testing.T) {
	for _, s := range []string{"tourist", "guide", "operator"} {
		role, err := user.NewRole(s)
		assert.NoError(t, err)
		assert.Equal(t, s, role.String())
	}

	_, err := user.NewRole("system")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
	_, err = user.NewRole("admin")
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestActor(t *testing.T) {
	id := uuid.New()
	tourist := user.NewActor(id, user.RoleTourist)

	assert.True(t, tourist.IsTourist(id))
	assert.False(t, tourist.IsTourist(uuid.New()))
	assert.False(t, tourist.IsGuide(id))
	assert.True(t, user.SystemActor().IsSystem())
	assert.Equal(t, "system", user.SystemActor().String())
}
