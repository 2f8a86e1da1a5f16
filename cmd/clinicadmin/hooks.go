package main

import (
	"context"
	"io"
	"strings"

	"github.com/cristalexdent/clinicadmin/internal/hooks"
	"github.com/cristalexdent/clinicadmin/internal/logger"
)

type hookEvent int

const (
	hookPostSubmit hookEvent = iota
	hookPostDelete
)

// runHooks runs the hooks configured in the working directory for event
// and prints their output. Hook failures never fail the command.
func runHooks(ctx context.Context, w io.Writer, event hookEvent, vars hooks.Variables) {
	cfg, err := hooks.LoadConfig(".")
	if err != nil {
		logger.Warn("Ignoring hooks: %v", err)
		return
	}
	if cfg == nil {
		return
	}
	list := cfg.Hooks.PostSubmit
	if event == hookPostDelete {
		list = cfg.Hooks.PostDelete
	}
	if len(list) == 0 {
		return
	}
	out, err := hooks.ExecuteAll(ctx, list, ".", vars)
	if err != nil {
		logger.Warn("Hooks interrupted: %v", err)
		return
	}
	if out = strings.TrimRight(out, "\n"); out != "" {
		muted(w, "%s", out)
	}
}
