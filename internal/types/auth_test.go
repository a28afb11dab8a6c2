//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRequest_Validation(t *testing.T) {
	validate := validator.New()

	tests := []struct {
		name    string
		request CreateUserRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			request: CreateUserRequest{Name: "Ada Lovelace", Email: "ada@example.com", Password: "password123"},
		},
		{
			name:    "missing name",
			request: CreateUserRequest{Email: "ada@example.com", Password: "password123"},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "name too short",
			request: CreateUserRequest{Name: "A", Email: "ada@example.com", Password: "password123"},
			wantErr: true,
			errMsg:  "min",
		},
		{
			name:    "invalid email",
			request: CreateUserRequest{Name: "Ada", Email: "not-an-email", Password: "password123"},
			wantErr: true,
			errMsg:  "email",
		},
		{
			name:    "short password",
			request: CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "short"},
			wantErr: true,
			errMsg:  "min",
		},
		{
			name:    "password longer than bcrypt accepts",
			request: CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: strings.Repeat("x", 73)},
			wantErr: true,
			errMsg:  "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.request)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Error(t, tt.request.Validate())
			} else {
				assert.NoError(t, err)
				assert.NoError(t, tt.request.Validate())
			}
		})
	}
}

func TestLoginRequest_Validation(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Email: "ada@example.com", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "ada@example.com"}).Validate())
	assert.Error(t, (&LoginRequest{Email: "ada", Password: "x"}).Validate())
}

func TestLoginResponse_JSON(t *testing.T) {
	id := uuid.New()
	resp := LoginResponse{
		User:  &User{ID: id, Name: "Ada", Email: "ada@example.com", CreatedAt: time.Now()},
		Token: "tok",
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "tok", decoded["token"])
	user := decoded["user"].(map[string]any)
	assert.Equal(t, id.String(), user["id"])
	assert.NotContains(t, user, "password_hash")
}
