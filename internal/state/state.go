package state

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Paintersrp/related/internal/config"
	"github.com/Paintersrp/related/internal/constants"
	"github.com/Paintersrp/related/internal/content"
	treesvc "github.com/Paintersrp/related/internal/services/tree"
)

// ErrNoVault is returned by commands that need a vault when the active
// workspace has none configured.
var ErrNoVault = errors.New("no vault configured; run `related init <dir>` first")

type State struct {
	Config        *config.Config
	Workspace     *config.Workspace
	WorkspaceName string
	Home          string
	Vault         string
	Logger        *zap.Logger
	Tree          TreeService
}

// TreeService exposes the shared content tree snapshots produced by the
// workspace tree service.
type TreeService interface {
	AcquireSnapshot() (*content.Tree, error)
	QueueUpdate(string)
	Invalidate()
	Stats() treesvc.Stats
	Close() error
}

// NewState loads the configuration and prepares the tree service of the
// active workspace. When the workspace has no vault yet the returned state
// carries the config along with the error so setup commands can still run.
func NewState() (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	cfg, initErr := LoadConfig(home)
	if cfg == nil {
		return nil, initErr
	}

	s, err := FromConfig(cfg, home)
	if err != nil {
		return nil, err
	}
	if initErr == nil && s.Vault == "" {
		initErr = ErrNoVault
	}
	return s, initErr
}

// FromConfig builds a state around an already loaded config.
func FromConfig(cfg *config.Config, home string) (*State, error) {
	s := &State{
		Config: cfg,
		Home:   home,
		Logger: zap.NewNop(),
	}
	bindEnv()
	if err := s.syncWorkspace(); err != nil {
		return nil, err
	}
	return s, nil
}

// UseWorkspace activates another workspace for the rest of the process
// without persisting the choice.
func (s *State) UseWorkspace(name string) error {
	if err := s.Config.ActivateWorkspace(name); err != nil {
		return err
	}
	return s.syncWorkspace()
}

// SetLogger replaces the state logger and rebuilds the tree service so it
// reports through the new logger.
func (s *State) SetLogger(logger *zap.Logger) {
	if s == nil || logger == nil {
		return
	}
	s.Logger = logger
	s.resetTree()
}

func (s *State) syncWorkspace() error {
	ws, err := s.Config.ActiveWorkspace()
	if err != nil {
		return err
	}
	s.Workspace = ws
	s.WorkspaceName = s.Config.CurrentWorkspace
	s.Vault = ws.VaultDir
	if vault := strings.TrimSpace(viper.GetString("vaultdir")); vault != "" {
		s.Vault = vault
	}
	s.resetTree()
	return nil
}

func (s *State) resetTree() {
	if s.Tree != nil {
		_ = s.Tree.Close()
		s.Tree = nil
	}
	if s.Vault == "" || s.Workspace == nil {
		return
	}
	cfg := s.Workspace.ContentConfig()
	if sep := viper.GetString("separator"); sep != "" {
		cfg.Separator = sep
	}
	s.Tree = treesvc.NewService(s.Vault, cfg, s.Logger)
}

// HandleWatchError reacts to an error reported by the vault watcher. An
// overflowed event queue means updates were lost, so the tree is reloaded.
func (s *State) HandleWatchError(err error) {
	if s == nil || err == nil {
		return
	}
	if errors.Is(err, fsnotify.ErrEventOverflow) {
		s.Logger.Warn("vault watcher dropped events; reloading content tree", zap.Error(err))
		if s.Tree != nil {
			s.Tree.Invalidate()
		}
		return
	}
	s.Logger.Warn("vault watcher error", zap.Error(err))
}

// Snapshot returns a private copy of the current content tree.
func (s *State) Snapshot() (*content.Tree, error) {
	if s == nil || s.Tree == nil || strings.TrimSpace(s.Vault) == "" {
		return nil, ErrNoVault
	}
	return s.Tree.AcquireSnapshot()
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

// LoadConfig reads the config file, creating it when missing. A config
// without a vault is returned together with its *config.ConfigInitError.
func LoadConfig(home string) (*config.Config, error) {
	viper.AddConfigPath(home + constants.ConfigDir)
	viper.SetConfigName(constants.ConfigFile)
	viper.SetConfigType(constants.ConfigFileType)
	bindEnv()
	_ = viper.ReadInConfig()

	ensureErr := config.EnsureConfigExists(home)
	var initErr *config.ConfigInitError
	if ensureErr != nil && !errors.As(ensureErr, &initErr) {
		return nil, ensureErr
	}

	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	return cfg, ensureErr
}

// bindEnv lets RELATED_* environment variables override workspace values.
func bindEnv() {
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()
}

// Close releases the tree service.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	if s.Tree != nil {
		err := s.Tree.Close()
		s.Tree = nil
		if err != nil && !errors.Is(err, treesvc.ErrClosed) {
			return err
		}
	}
	return nil
}
