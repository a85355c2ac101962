package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateUserParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "valid", input: "Alice", want: "Alice"},
		{name: "trims whitespace", input: "  Bob \n", want: "Bob"},
		{name: "empty", input: "", wantErr: ErrDisplayNameRequired},
		{name: "blank", input: "   ", wantErr: ErrDisplayNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CreateUserParams{DisplayName: tt.input}
			err := p.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, p.DisplayName)
		})
	}
}
