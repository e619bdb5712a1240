package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/related/internal/content"
	"github.com/Paintersrp/related/internal/related"
)

// QueryBag is a loose set of selector options as written in the config
// file. It is decoded with related.OptionsFromMap.
type QueryBag map[string]any

type SearchConfig struct {
	IgnoredFolders []string `yaml:"ignored_folders" json:"ignored_folders" validate:"dive,required"`
	Strict         bool     `yaml:"strict"          json:"strict"`
}

type Workspace struct {
	VaultDir  string              `yaml:"vaultdir"  json:"vault_dir"`
	Search    SearchConfig        `yaml:"search"    json:"search"`
	Related   QueryBag            `yaml:"related"   json:"related"`
	Separator string              `yaml:"separator" json:"separator" validate:"required"`
	LogLevel  string              `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=error warn warning info debug"`
	Queries   map[string]QueryBag `yaml:"queries"   json:"queries"`
}

type Config struct {
	Workspaces       map[string]*Workspace `yaml:"workspaces"        json:"workspaces"`
	CurrentWorkspace string                `yaml:"current_workspace" json:"current_workspace"`

	active *Workspace `yaml:"-"`
	home   string     `yaml:"-"`
}

const (
	defaultWorkspaceName = "default"
	defaultLogLevel      = "warn"
)

// legacyConfig is the flat single-vault layout: a workspace written at the
// top level of the file.
type legacyConfig struct {
	VaultDir  string              `yaml:"vaultdir"`
	Search    SearchConfig        `yaml:"search"`
	Related   QueryBag            `yaml:"related"`
	Separator string              `yaml:"separator"`
	LogLevel  string              `yaml:"log_level"`
	Queries   map[string]QueryBag `yaml:"queries"`
}

func newWorkspace() *Workspace {
	return &Workspace{
		Related:   make(QueryBag),
		Separator: content.DefaultSeparator,
		LogLevel:  defaultLogLevel,
		Queries:   make(map[string]QueryBag),
	}
}

func (ws *Workspace) ensureDefaults() {
	if ws.Related == nil {
		ws.Related = make(QueryBag)
	}
	if ws.Queries == nil {
		ws.Queries = make(map[string]QueryBag)
	}
	if strings.TrimSpace(ws.Separator) == "" {
		ws.Separator = content.DefaultSeparator
	}
	if strings.TrimSpace(ws.LogLevel) == "" {
		ws.LogLevel = defaultLogLevel
	}
	ws.VaultDir = strings.TrimSpace(ws.VaultDir)
}

// ContentConfig returns the loader settings of the workspace.
func (ws *Workspace) ContentConfig() content.Config {
	return content.Config{
		IgnoredFolders: append([]string(nil), ws.Search.IgnoredFolders...),
		Separator:      ws.Separator,
		Strict:         ws.Search.Strict,
	}
}

// RelatedOptions layers the workspace defaults and, when name is not
// empty, the named query. Later options win.
func (ws *Workspace) RelatedOptions(name string) ([]related.Option, error) {
	opts := related.OptionsFromMap(ws.Related)
	name = strings.TrimSpace(name)
	if name == "" {
		return opts, nil
	}

	bag, ok := ws.Queries[name]
	if !ok {
		return nil, fmt.Errorf("query %q does not exist", name)
	}
	return append(opts, related.OptionsFromMap(bag)...), nil
}

func (ws *Workspace) QueryNames() []string {
	names := make([]string, 0, len(ws.Queries))
	for name := range ws.Queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if len(strings.TrimSpace(string(data))) == 0 {
		cfg.Workspaces = map[string]*Workspace{
			defaultWorkspaceName: newWorkspace(),
		}
		cfg.CurrentWorkspace = defaultWorkspaceName
	} else {
		raw := make(map[string]interface{})
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}

		if _, ok := raw["workspaces"]; ok {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		} else {
			var legacy legacyConfig
			if err := yaml.Unmarshal(data, &legacy); err != nil {
				return nil, err
			}
			cfg = migrateLegacyConfig(&legacy)
		}
	}
	cfg.home = home

	if err := cfg.ensureInitialized(); err != nil {
		return nil, err
	}

	for _, name := range cfg.WorkspaceNames() {
		if err := cfg.Workspaces[name].Validate(); err != nil {
			return nil, fmt.Errorf("workspace %q: %w", name, err)
		}
	}

	return cfg, nil
}

func migrateLegacyConfig(legacy *legacyConfig) *Config {
	ws := newWorkspace()
	ws.VaultDir = legacy.VaultDir
	ws.Search = legacy.Search
	if legacy.Related != nil {
		ws.Related = legacy.Related
	}
	ws.Separator = legacy.Separator
	ws.LogLevel = legacy.LogLevel
	if legacy.Queries != nil {
		ws.Queries = legacy.Queries
	}
	ws.ensureDefaults()

	return &Config{
		Workspaces: map[string]*Workspace{
			defaultWorkspaceName: ws,
		},
		CurrentWorkspace: defaultWorkspaceName,
		active:           ws,
	}
}

func (cfg *Config) ensureInitialized() error {
	if cfg.Workspaces == nil {
		cfg.Workspaces = make(map[string]*Workspace)
	}
	for name, ws := range cfg.Workspaces {
		if ws == nil {
			cfg.Workspaces[name] = newWorkspace()
			continue
		}
		ws.ensureDefaults()
	}

	if cfg.CurrentWorkspace == "" {
		if len(cfg.Workspaces) == 0 {
			cfg.Workspaces[defaultWorkspaceName] = newWorkspace()
			cfg.CurrentWorkspace = defaultWorkspaceName
		} else {
			cfg.CurrentWorkspace = cfg.WorkspaceNames()[0]
		}
	}

	return cfg.setActiveWorkspace(cfg.CurrentWorkspace)
}

func (cfg *Config) setActiveWorkspace(name string) error {
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}
	ws, ok := cfg.Workspaces[name]
	if !ok {
		return fmt.Errorf("workspace %q does not exist", name)
	}
	if ws == nil {
		ws = newWorkspace()
		cfg.Workspaces[name] = ws
	}

	ws.ensureDefaults()
	cfg.CurrentWorkspace = name
	cfg.active = ws

	syncWorkspaceWithViper(ws)

	return nil
}

// syncWorkspaceWithViper registers workspace values as viper defaults so
// flags and environment variables keep precedence over the file.
func syncWorkspaceWithViper(ws *Workspace) {
	viper.SetDefault("vaultdir", ws.VaultDir)
	viper.SetDefault("log_level", ws.LogLevel)
	viper.SetDefault("separator", ws.Separator)
}

func (cfg *Config) ActiveWorkspace() (*Workspace, error) {
	if cfg.active != nil {
		return cfg.active, nil
	}

	if cfg.CurrentWorkspace == "" {
		return nil, fmt.Errorf("no workspace is currently selected")
	}

	if err := cfg.setActiveWorkspace(cfg.CurrentWorkspace); err != nil {
		return nil, err
	}

	return cfg.active, nil
}

func (cfg *Config) MustWorkspace() *Workspace {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		panic(err)
	}
	return ws
}

func (cfg *Config) WorkspaceNames() []string {
	names := make([]string, 0, len(cfg.Workspaces))
	for name := range cfg.Workspaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cfg *Config) SwitchWorkspace(name string) error {
	if err := cfg.setActiveWorkspace(name); err != nil {
		return err
	}
	return cfg.Save()
}

func (cfg *Config) ActivateWorkspace(name string) error {
	return cfg.setActiveWorkspace(name)
}

func (cfg *Config) AddWorkspace(name string, ws *Workspace, makeCurrent bool) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}

	if cfg.Workspaces == nil {
		cfg.Workspaces = make(map[string]*Workspace)
	}

	if _, exists := cfg.Workspaces[trimmed]; exists {
		return fmt.Errorf("workspace %q already exists", trimmed)
	}

	if ws == nil {
		ws = newWorkspace()
	}
	ws.ensureDefaults()
	if err := ws.Validate(); err != nil {
		return err
	}
	cfg.Workspaces[trimmed] = ws

	if cfg.CurrentWorkspace == "" || makeCurrent {
		if err := cfg.setActiveWorkspace(trimmed); err != nil {
			return err
		}
	}

	return cfg.Save()
}

func (cfg *Config) RemoveWorkspace(name string) error {
	if len(cfg.Workspaces) <= 1 {
		return fmt.Errorf("cannot remove the last workspace")
	}

	if _, exists := cfg.Workspaces[name]; !exists {
		return fmt.Errorf("workspace %q does not exist", name)
	}

	delete(cfg.Workspaces, name)

	if cfg.CurrentWorkspace == name {
		cfg.active = nil
		cfg.CurrentWorkspace = ""
		if err := cfg.ensureInitialized(); err != nil {
			return err
		}
	}

	return cfg.Save()
}

// SetVault points the active workspace at dir.
func (cfg *Config) SetVault(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return fmt.Errorf("vault directory cannot be empty")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("vault directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault path %q is not a directory", abs)
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}

	ws.VaultDir = abs
	syncWorkspaceWithViper(ws)
	return cfg.Save()
}

// AddQuery stores a named option bag. Unknown option names are rejected so
// typos do not silently fall back to defaults.
func (cfg *Config) AddQuery(name string, bag QueryBag) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("query name cannot be empty")
	}

	for key := range bag {
		if !related.IsOptionKey(key) {
			return fmt.Errorf("unknown query option %q", key)
		}
	}

	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}

	if ws.Queries == nil {
		ws.Queries = make(map[string]QueryBag)
	}
	ws.Queries[name] = bag

	return cfg.Save()
}

func (cfg *Config) RemoveQuery(name string) error {
	ws, err := cfg.ActiveWorkspace()
	if err != nil {
		return err
	}

	if _, ok := ws.Queries[name]; !ok {
		return fmt.Errorf("query %q does not exist", name)
	}

	delete(ws.Queries, name)
	return cfg.Save()
}

func (cfg *Config) GetConfigPath() string {
	if cfg.home != "" {
		return GetConfigPath(cfg.home)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return GetConfigPath(homeDir)
}

func (cfg *Config) Save() error {
	if _, err := cfg.ActiveWorkspace(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if configPath == "" {
		return fmt.Errorf("unable to resolve config path")
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}
