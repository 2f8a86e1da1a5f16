package hooks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	content := `version: 1
hooks:
  post_submit:
    - command: "echo rebuild {{resource}}"
      timeout: 10
  post_delete:
    - command: "echo gone {{id}}"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))
	cfg, err = LoadConfig(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	require.Len(t, cfg.Hooks.PostSubmit, 1)
	assert.Equal(t, 10, cfg.Hooks.PostSubmit[0].Timeout)
	require.Len(t, cfg.Hooks.PostDelete, 1)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("hooks: [oops"), 0o644))
	_, err = LoadConfig(dir)
	assert.ErrorContains(t, err, "failed to parse hooks config")
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	workDir := t.TempDir()
	vars := Variables{Resource: "service", Session: "front-desk", RecordID: "a1", Status: "succeeded"}

	tests := []struct {
		name     string
		hook     *HookConfig
		expected string
	}{
		{name: "nil hook", hook: nil, expected: ""},
		{name: "empty command", hook: &HookConfig{}, expected: ""},
		{name: "placeholders", hook: &HookConfig{Command: "echo {{resource}} {{id}} {{status}}", Timeout: 5}, expected: "service a1 succeeded\n"},
		{name: "environment", hook: &HookConfig{Command: `echo "$CLINICADMIN_SESSION"`, Timeout: 5}, expected: "front-desk\n"},
		{name: "stderr", hook: &HookConfig{Command: "echo out; echo err >&2", Timeout: 5}, expected: "out\n\n[stderr]\nerr\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Execute(ctx, tt.hook, workDir, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestExecute_Failure(t *testing.T) {
	out, err := Execute(context.Background(), &HookConfig{Command: "echo partial; exit 3", Timeout: 5}, t.TempDir(), Variables{})
	require.NoError(t, err)
	assert.Contains(t, out, "[Hook command failed: exit status 3]")
	assert.Contains(t, out, "partial")
}

func TestExecute_Timeout(t *testing.T) {
	out, err := Execute(context.Background(), &HookConfig{Command: "sleep 5", Timeout: 1}, t.TempDir(), Variables{})
	require.NoError(t, err)
	assert.Contains(t, out, "[Hook timed out after 1s]")
}

func TestExecuteAll(t *testing.T) {
	hooks := []*HookConfig{
		{Command: "echo first", Timeout: 5},
		{Command: "true", Timeout: 5},
		{Command: "echo second", Timeout: 5},
	}
	out, err := ExecuteAll(context.Background(), hooks, t.TempDir(), Variables{})
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond\n", out)
}

func TestExecuteAll_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExecuteAll(ctx, []*HookConfig{{Command: "echo test", Timeout: 5}}, t.TempDir(), Variables{})
	assert.Error(t, err)
}

func TestExpandVariables(t *testing.T) {
	got := expandVariables("curl -X POST https://deploy/{{resource}}?s={{session}}&{{unknown}}", Variables{Resource: "blog-article", Session: "x"})
	assert.Equal(t, "curl -X POST https://deploy/blog-article?s=x&{{unknown}}", got)
}
