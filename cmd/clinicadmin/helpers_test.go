package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cristalexdent/clinicadmin/internal/config"
	"github.com/cristalexdent/clinicadmin/internal/drafts"
	"github.com/cristalexdent/clinicadmin/internal/resource"
)

func openStore(t *testing.T) *drafts.Store {
	t.Helper()
	s, closeFn, err := drafts.Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeFn() })
	return s
}

func lookup(t *testing.T, name string) resource.Resource {
	t.Helper()
	r, err := resource.Lookup(name)
	require.NoError(t, err)
	return r
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Session = "front-desk"
	return cfg
}
