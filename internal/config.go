package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/org"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Org    OrgConfig         `yaml:"org"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Org.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// OrgConfig holds the org directory path and outline parsing settings.
type OrgConfig struct {
	Path string `yaml:"path"`

	// TodoKeywords are the workflow-open keywords, in match-precedence order.
	TodoKeywords []string `yaml:"todo_keywords"`
	// DoneKeywords close a task; they follow TodoKeywords in precedence.
	DoneKeywords []string `yaml:"done_keywords"`

	IndentMode      bool   `yaml:"indent_mode"`
	PriorityHighest string `yaml:"priority_highest"`
	PriorityLowest  string `yaml:"priority_lowest"`
	DefaultCategory string `yaml:"default_category"`
}

// Validate validates the org configuration.
func (c *OrgConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.PriorityHighest, validation.Length(0, 1)),
		validation.Field(&c.PriorityLowest, validation.Length(0, 1)),
	); err != nil {
		return err
	}
	if c.PriorityHighest != "" && c.PriorityHighest == c.PriorityLowest {
		return fmt.Errorf("org: priority_highest and priority_lowest must differ")
	}
	return nil
}

// Settings builds the parser settings from the configuration.
func (c *OrgConfig) Settings() org.Settings {
	s := org.DefaultSettings()
	if len(c.TodoKeywords)+len(c.DoneKeywords) > 0 {
		s.TodoKeywordsAll = append(append([]string{}, c.TodoKeywords...), c.DoneKeywords...)
		s.TodoKeywordsDone = append([]string{}, c.DoneKeywords...)
	}
	s.IndentMode = c.IndentMode
	if c.PriorityHighest != "" {
		s.PriorityHighest = c.PriorityHighest
	}
	if c.PriorityLowest != "" {
		s.PriorityLowest = c.PriorityLowest
	}
	s.DefaultCategory = c.DefaultCategory
	return s
}

// SQLiteConfig holds SQLite database configuration.
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

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Org: OrgConfig{
			Path:            "./org",
			TodoKeywords:    []string{"TODO"},
			DoneKeywords:    []string{"DONE"},
			IndentMode:      true,
			PriorityHighest: "A",
			PriorityLowest:  "C",
		},
		SQLite: SQLiteConfig{
			Path: "./ansuz.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
