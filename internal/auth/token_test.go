package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/request-workflow/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	employee := &domain.Employee{
		ID:    "emp-1",
		Roles: domain.NewRoleSet("PROGRAMMER", "OD"),
	}

	token, exp, err := tm.GenerateToken(employee)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", claims.EmployeeID)
	assert.ElementsMatch(t, []string{"PROGRAMMER", "OD"}, claims.Roles)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 30)
	other := NewTokenManager("secret-b", 30)

	token, _, err := tm.GenerateToken(&domain.Employee{ID: "emp-1", Roles: domain.NewRoleSet("REQUESTOR")})
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
}
