package hooks

// Config is the top-level configuration for hooks loaded from .clinicadmin.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig contains all hook configurations.
type HooksConfig struct {
	// PostSubmit runs after a wizard submission succeeded.
	PostSubmit []*HookConfig `yaml:"post_submit"`
	// PostDelete runs after a record was deleted.
	PostDelete []*HookConfig `yaml:"post_delete"`
}

// HookConfig defines a single hook's configuration.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
