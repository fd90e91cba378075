package cmd

import (
	"bytes"
	"strings"
	"testing"

	"dentalcms/internal/models"
	"dentalcms/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestSecret(t *testing.T) {
	out, err := run(t, "secret")
	require.NoError(t, err)
	assert.Len(t, out, 64)

	_, err = run(t, "secret", "--bytes", "8")
	assert.Error(t, err)
}

func TestTokenIssueAndVerify(t *testing.T) {
	const secret = "cli-test-secret-cli-test-secret-"
	token, err := run(t, "token", "issue", "42", "--secret", secret)
	require.NoError(t, err)

	out, err := run(t, "token", "verify", token, "--secret", secret)
	require.NoError(t, err)
	assert.Contains(t, out, "subject=42 format=jwt")

	_, err = run(t, "token", "verify", token, "--secret", "another-secret-another-secret-xx")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	utils.BcryptCost = bcrypt.MinCost
	out, err := run(t, "hash-password", "s3cret-pass")
	require.NoError(t, err)
	assert.True(t, utils.CheckPasswordHash("s3cret-pass", out))
}

func TestValidateNewUser(t *testing.T) {
	ok := &models.User{Username: "admin", Email: "admin@dental.example", Role: models.RoleAdmin}
	assert.NoError(t, validateNewUser(ok, "long-enough"))
	assert.Error(t, validateNewUser(ok, "short"))
	assert.Error(t, validateNewUser(&models.User{Username: "x", Email: "x@y", Role: "root"}, "long-enough"))
	assert.Error(t, validateNewUser(&models.User{Role: models.RoleUser}, "long-enough"))
}
