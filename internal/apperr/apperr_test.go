package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappersMatchSentinels(t *testing.T) {
	assert.True(t, errors.Is(Validation("name is required"), ErrValidation))
	assert.True(t, errors.Is(NotFound("project"), ErrNotFound))
	assert.True(t, errors.Is(Forbidden("not an admin"), ErrForbidden))
	assert.True(t, errors.Is(Conflict("duplicate email"), ErrConflict))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "validation failed: name is required", Validation("name is required").Error())
	assert.Equal(t, "project not found", NotFound("project").Error())
	assert.Equal(t, "forbidden: not an admin", Forbidden("not an admin").Error())
}

func TestValidationFormats(t *testing.T) {
	err := Validation("unknown role %q", "Superuser")
	assert.Equal(t, `validation failed: unknown role "Superuser"`, err.Error())
}
