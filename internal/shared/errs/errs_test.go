package errs

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), KindInternal},
		{"tagged", E("op", KindConflict, errors.New("dup")), KindConflict},
		{"wrapped tagged", fmt.Errorf("outer: %w", E("op", KindNotFound, sql.ErrNoRows)), KindNotFound},
		{"inherits kind", E("outer", "", E("inner", KindUpstream, errors.New("502"))), KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_Message(t *testing.T) {
	err := E("users.Delete", KindConflict, errors.New("user has items"))
	assert.Equal(t, "users.Delete: user has items", err.Error())
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindInvalid))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	err := E("items.Get", KindNotFound, sql.ErrNoRows)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
