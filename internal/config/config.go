package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"rgsearch/internal/domain"
)

// CurrentVersion is written into every saved config
const CurrentVersion = 1

// Config represents the application configuration
type Config struct {
	Version     int                 `toml:"version"`
	BinariesDir string              `toml:"binaries_dir"` // holds linux/rg, windows/rg.exe, mac/rg
	Binary      string              `toml:"binary"`       // explicit rg path, wins over binaries_dir
	Search      SearchSettings      `toml:"search"`
	IgnoreList  []string            `toml:"ignore_list"` // encoded ignore rules
	Scopes      map[string][]string `toml:"scopes"`      // scope name -> root paths
	LastScope   *ScopeSettings      `toml:"last_scope,omitempty"`
	UI          UISettings          `toml:"ui"`
}

// SearchSettings are the default flags of a new search
type SearchSettings struct {
	CaseSensitive          bool `toml:"case_sensitive"`
	WholeWord              bool `toml:"whole_word"`
	UseRegex               bool `toml:"use_regex"`
	UsePCRE                bool `toml:"use_pcre"`
	SearchInArchives       bool `toml:"search_in_archives"`
	SearchGeneratedSources bool `toml:"search_generated_sources"`
	UseIgnoreList          bool `toml:"use_ignore_list"`
}

// ScopeSettings persists the last used scope
type ScopeSettings struct {
	Description string   `toml:"description"`
	Paths       []string `toml:"paths"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowProgress bool `toml:"show_progress"`
	Pager        bool `toml:"pager"`
	Color        bool `toml:"color"`
}

// Specification builds a search for term with the configured defaults
func (s SearchSettings) Specification(term string) domain.SearchSpecification {
	return domain.SearchSpecification{
		Term:                   term,
		CaseSensitive:          s.CaseSensitive,
		WholeWord:              s.WholeWord,
		Literal:                !s.UseRegex,
		UseRegex:               s.UseRegex,
		UsePCRE:                s.UsePCRE,
		SearchInArchives:       s.SearchInArchives,
		SearchGeneratedSources: s.SearchGeneratedSources,
		UseIgnoreList:          s.UseIgnoreList,
	}
}

// ApplyChange copies the scope state carried by a change event
func (c *Config) ApplyChange(e domain.ConfigChangedEvent) {
	if e.Scopes != nil {
		c.Scopes = e.Scopes
	}
	if e.LastScope != nil {
		c.LastScope = &ScopeSettings{
			Description: e.LastScope.Description,
			Paths:       append([]string(nil), e.LastScope.Paths...),
		}
	}
}

// Last returns the persisted last scope, if any
func (c *Config) Last() *domain.Scope {
	if c.LastScope == nil || len(c.LastScope.Paths) == 0 {
		return nil
	}
	return &domain.Scope{
		Description: c.LastScope.Description,
		Paths:       append([]string(nil), c.LastScope.Paths...),
	}
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a config service for the default location
func NewConfigService() ConfigService {
	return NewConfigServiceWithPath(DefaultPath())
}

// NewConfigServiceWithPath creates a config service reading and writing path
func NewConfigServiceWithPath(path string) ConfigService {
	return &configService{filePath: path}
}

// DefaultPath returns $XDG_CONFIG_HOME/rgsearch/config.toml or its platform
// equivalent
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "rgsearch", "config.toml")
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration, falling back to defaults when no file exists
func (cs *configService) Load() (*Config, error) {
	cfg, err := cs.LoadFromPath(cs.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// Save saves the configuration to file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unset keys keep their defaults
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Scopes == nil {
		cfg.Scopes = make(map[string][]string)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	config.Version = CurrentVersion
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Search: SearchSettings{
			UseRegex:      true,
			UsePCRE:       true,
			UseIgnoreList: true,
		},
		Scopes: make(map[string][]string),
		UI: UISettings{
			ShowProgress: true,
			Color:        true,
		},
	}
}
