// Package hooks runs user configured shell commands after records change,
// e.g. to trigger a rebuild of the clinic website.
package hooks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cristalexdent/clinicadmin/internal/logger"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".clinicadmin.hooks.yml"

// LoadConfig loads the hooks configuration from the working directory.
// Returns nil if the config file doesn't exist (hooks are optional).
// Returns an error only if the file exists but cannot be parsed.
func LoadConfig(workDir string) (*Config, error) {
	configPath := filepath.Join(workDir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hooks config: %w", err)
	}

	logger.Debug("Loaded %d post-submit and %d post-delete hook(s) from %s",
		len(cfg.Hooks.PostSubmit), len(cfg.Hooks.PostDelete), configPath)
	return &cfg, nil
}

// Variables holds template variables that can be expanded in hook commands.
// They are also exported to the command as CLINICADMIN_* environment
// variables.
type Variables struct {
	Resource string
	Session  string
	RecordID string
	Status   string
}

func (v Variables) pairs() map[string]string {
	return map[string]string{
		"resource": v.Resource,
		"session":  v.Session,
		"id":       v.RecordID,
		"status":   v.Status,
	}
}

// Execute runs a hook command and returns its output.
// Template variables in the command ({{resource}}, {{session}}, {{id}},
// {{status}}) are expanded before execution.
// On error, returns an error message as output and nil error (graceful degradation).
// Only returns error for context cancellation.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command, vars)
	logger.Debug("Executing hook command: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir
	cmd.Env = os.Environ()
	for k, v := range vars.pairs() {
		cmd.Env = append(cmd.Env, "CLINICADMIN_"+strings.ToUpper(k)+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	out := stdout.String()
	if stderr.Len() > 0 {
		out += "\n[stderr]\n" + stderr.String()
	}
	switch {
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		logger.Warn("Hook %q timed out after %ds", command, timeout)
		return fmt.Sprintf("[Hook timed out after %ds]\nPartial output:\n%s", timeout, stdout.String()), nil
	case runErr != nil:
		logger.Warn("Hook %q failed: %v", command, runErr)
		return fmt.Sprintf("[Hook command failed: %v]\n%s", runErr, out), nil
	}
	logger.Debug("Hook %q wrote %d bytes", command, len(out))
	return out, nil
}

// ExecuteAll runs hooks in order and joins their non-empty outputs with a
// blank line. A cancelled context stops the remaining hooks.
func ExecuteAll(ctx context.Context, hooks []*HookConfig, workDir string, vars Variables) (string, error) {
	var outputs []string
	for _, hook := range hooks {
		out, err := Execute(ctx, hook, workDir, vars)
		if err != nil {
			return "", err
		}
		if out != "" {
			outputs = append(outputs, out)
		}
	}
	return strings.Join(outputs, "\n"), nil
}

// expandVariables replaces {{variable}} placeholders in the command string.
func expandVariables(command string, vars Variables) string {
	result := command
	for name, value := range vars.pairs() {
		result = strings.ReplaceAll(result, "{{"+name+"}}", value)
	}
	return result
}
