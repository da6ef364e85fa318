package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/runner/internal/auth"
	"github.com/Additional-Code/runner/internal/config"
)

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()

	for _, path := range [][]string{
		{"start"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"seed"},
		{"worker", "run"},
		{"token", "issue"},
		{"notify", "send"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, strings.Join(path, " "))
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestTokenIssue(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"token", "issue", "--email", "owner@shop.kr", "--role", "partner"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	cfg, err := config.New()
	require.NoError(t, err)
	p, err := auth.NewIssuer(cfg).Parse(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "owner@shop.kr", p.Email)
	assert.Equal(t, auth.RolePartner, p.Role)
}

func TestTokenIssueRejectsUnknownRole(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"token", "issue", "--email", "owner@shop.kr", "--role", "admin"})
	assert.Error(t, root.ExecuteContext(context.Background()))
}

func TestNotifySendRequiresTitle(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"notify", "send", "--token", "device-1"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--title")
}
