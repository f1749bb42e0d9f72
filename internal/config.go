package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notemover/internal/mover"
	"github.com/starford/notemover/internal/rules"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Vault   VaultConfig       `yaml:"vault"`
	History SQLiteConfig      `yaml:"history"`
	Auth    AuthConfig        `yaml:"auth"`
	Mover   MoverConfig       `yaml:"mover"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Mover.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the Markdown vault directory.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds the move history database location.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// MoverConfig holds the rules and the move behaviour flags.
type MoverConfig struct {
	Trigger mover.Trigger `yaml:"trigger"`
	Move    mover.Options `yaml:",inline"`
	Match   rules.Options `yaml:",inline"`

	// TemplateFolder is where rule templates are looked up, relative to the vault.
	TemplateFolder string `yaml:"template_folder"`
	// Debounce is the quiet period before the watcher evaluates changed notes.
	Debounce time.Duration `yaml:"debounce"`
	// ReportBuffer sizes the report queue.
	ReportBuffer int `yaml:"report_buffer"`

	Rules []rules.Rule `yaml:"rules"`
}

// Validate validates the mover configuration and every rule.
func (c *MoverConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Trigger, validation.Required),
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
		validation.Field(&c.ReportBuffer, validation.Min(0)),
	); err != nil {
		return err
	}
	for i, r := range c.Rules {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("mover: rule %d: %w", i, err)
		}
	}
	return validation.Validate(c.Match.ExcludedFolders,
		validation.When(c.Match.UseRegexForExcludedFolders, validation.Each(validation.By(isRegexp))),
	)
}

func isRegexp(value any) error {
	s, _ := value.(string)
	if _, err := regexp.Compile(s); err != nil {
		return errors.New("must be a valid regular expression")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		History: SQLiteConfig{
			Path: "./notemover.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Mover: MoverConfig{
			Trigger:        mover.TriggerManual,
			TemplateFolder: "Templates",
			Debounce:       200 * time.Millisecond,
			ReportBuffer:   256,
		},
	}
}
