package internal

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/oasis/internal/migrate"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Posts   PostsConfig       `yaml:"posts"`
	Migrate MigrateConfig     `yaml:"migrate"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Posts.Validate(); err != nil {
		return err
	}
	if err := c.Migrate.Validate(); err != nil {
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

// PostsConfig locates the posts tree: one directory per locale under Dir.
type PostsConfig struct {
	Dir     string   `yaml:"dir"`
	Locales []string `yaml:"locales"`
}

// Validate validates the posts configuration.
func (c *PostsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Locales, validation.Required, validation.Each(
			validation.Required,
			validation.By(plainName),
		)),
	)
}

// MigrateConfig tunes the category-to-flat layout migration.
type MigrateConfig struct {
	// ConfigFile is the per-category file removed during cleanup.
	ConfigFile string   `yaml:"config_file"`
	SourceExts []string `yaml:"source_exts"`
}

// Validate validates the migration configuration.
func (c *MigrateConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ConfigFile, validation.Required, validation.By(plainName)),
		validation.Field(&c.SourceExts, validation.Required, validation.Each(validation.Required, validation.By(extension))),
	)
}

// plainName rejects values that would escape their parent directory.
func plainName(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("must be a plain name, got %q", s)
	}
	return nil
}

func extension(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, ".") || len(s) < 2 || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("must look like .ext, got %q", s)
	}
	return nil
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
		Posts: PostsConfig{
			Dir:     "./posts",
			Locales: []string{"en-US", "zh-CN"},
		},
		Migrate: MigrateConfig{
			ConfigFile: migrate.DefaultConfigFile,
			SourceExts: slices.Clone(migrate.DefaultSourceExts),
		},
		SQLite: SQLiteConfig{
			Path: "./oasis.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
