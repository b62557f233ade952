package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var extensionRe = regexp.MustCompile(`^\.[A-Za-z0-9]+$`)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Docs    DocsConfig        `yaml:"docs"`
	Links   LinksConfig       `yaml:"links"`
	OpenAPI OpenAPIConfig     `yaml:"openapi"`
	Legacy  LegacyConfig      `yaml:"legacy"`
	Graph   GraphConfig       `yaml:"graph"`
	Watch   WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Docs.Validate(); err != nil {
		return fmt.Errorf("docs: %w", err)
	}
	if err := c.OpenAPI.Validate(); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	if err := c.Legacy.Validate(); err != nil {
		return fmt.Errorf("legacy: %w", err)
	}
	if err := c.Graph.Validate(); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string     `yaml:"log_format"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// DocsConfig describes the documentation tree.
type DocsConfig struct {
	Root         string   `yaml:"root"`
	NavFile      string   `yaml:"nav_file"`
	Extensions   []string `yaml:"extensions"`
	IndexName    string   `yaml:"index_name"`
	SkipDirs     []string `yaml:"skip_dirs"`
	SpecialFiles []string `yaml:"special_files"`
	AssetDirs    []string `yaml:"asset_dirs"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.NavFile, validation.Required),
		validation.Field(&c.Extensions, validation.Required, validation.Each(validation.Match(extensionRe))),
		validation.Field(&c.IndexName, validation.Required),
	)
}

// LinksConfig controls the dead-link scan.
//
// Exclude holds path substrings; any documentation file whose relative path
// contains one of them is not scanned for links.
type LinksConfig struct {
	Exclude []string `yaml:"exclude"`
}

// OpenAPIConfig controls enhancement of generated OpenAPI specs and the API
// navigation tab.
type OpenAPIConfig struct {
	Dir               string `yaml:"dir"`
	Suffix            string `yaml:"suffix"`
	BaseURL           string `yaml:"base_url"`
	ServerDescription string `yaml:"server_description"`
	TitlePlaceholder  string `yaml:"title_placeholder"`
	NavTab            string `yaml:"nav_tab"`
	NavIntroGroup     string `yaml:"nav_intro_group"`
	NavIntroPage      string `yaml:"nav_intro_page"`
}

// Validate validates the OpenAPI configuration.
func (c *OpenAPIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Suffix, validation.Required),
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.NavTab, validation.Required),
	)
}

// LegacyConfig controls server injection into the legacy generated specs.
type LegacyConfig struct {
	Dir       string `yaml:"dir"`
	ServerURL string `yaml:"server_url"`
}

// Validate validates the legacy configuration.
func (c *LegacyConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.ServerURL, validation.Required, is.URL),
	)
}

// GraphConfig holds the SQLite link graph configuration. The default
// in-memory DSN builds the graph for a single run.
type GraphConfig struct {
	DSN string `yaml:"dsn"`
}

// Validate validates the graph configuration.
func (c *GraphConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DSN, validation.Required),
	)
}

// WatchConfig holds watch mode configuration.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Required, validation.Min(10*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
		},
		Docs: DocsConfig{
			Root:         ".",
			NavFile:      "docs.json",
			Extensions:   []string{".mdx", ".md"},
			IndexName:    "index",
			SkipDirs:     []string{"node_modules", "dist", "build", "legacy-docs"},
			SpecialFiles: []string{"README.md", "CLAUDE.md", "AGENTS.md"},
			AssetDirs:    []string{"assets", "images", "img"},
		},
		Links: LinksConfig{
			Exclude: []string{"node_modules", ".next", "legacy-"},
		},
		OpenAPI: OpenAPIConfig{
			Dir:               "docs/api/openapi",
			Suffix:            "_openapi.json",
			BaseURL:           "https://api.joinformal.com",
			ServerDescription: "Production API",
			TitlePlaceholder:  "core.v1",
			NavTab:            "API Reference",
			NavIntroGroup:     "API Documentation",
			NavIntroPage:      "docs/api/introduction",
		},
		Legacy: LegacyConfig{
			Dir:       "legacy-docs/api-reference/gen-openapi",
			ServerURL: "https://api.joinformal.com",
		},
		Graph: GraphConfig{
			DSN: ":memory:",
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}
