// Package config loads and persists the program's configuration and the
// small per-session state files (pinned path, workspaces, histories).
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	"github.com/calens/finch/core/listing"
	"github.com/calens/finch/core/session"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	ActionsName       = "actions.cfm"
	DirhistName       = "dirhist"
	HistoryName       = "history"
	LastName          = ".last"
	PinName           = ".pin"
	SelName           = "selbox"
	LogName           = "cmdlog"
	JumpName          = "jump.db"
	PluginsDirName    = "plugins"
)

// Configuration is the main YAML config file.
type Configuration struct {
	Shell  string `json:"shell"`
	Opener string `json:"opener"`
	Pager  string `json:"pager"`

	ShowHidden bool   `json:"show_hidden"`
	Sort       string `json:"sort" validate:"oneof=name size mtime extension"`
	Reverse    bool   `json:"reverse"`
	MaxFiles   int    `json:"max_files" validate:"gte=0"`

	AutoCD       bool `json:"autocd"`
	AutoOpen     bool `json:"auto_open"`
	AutoLS       bool `json:"auto_ls"`
	ExtCommands  bool `json:"ext_commands"`
	CaseSensPath bool `json:"case_sensitive_paths"`
	Unicode      bool `json:"unicode"`
	Icons        bool `json:"icons"`
	Columns      bool `json:"columns"`
	LightMode    bool `json:"light_mode"`
	TitleUpdates bool `json:"title_updates"`
	PagerOn      bool `json:"pager_on"`
	Highlight    bool `json:"highlight"`
	Suggestions  bool `json:"suggestions"`
	LogCommands  bool `json:"log_commands"`

	Aliases map[string]string `json:"aliases"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Default returns the built-in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Load reads the config file at path, layered over the defaults. A
// missing file is not an error.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	out := Default()
	contents, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, err
	}
	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Init creates the config directory tree and writes the default config
// file if none exists yet.
func Init(fsys afero.Fs, paths session.Paths) error {
	for _, dir := range []string{paths.ConfigDir, paths.PluginsDir, paths.TmpDir} {
		if dir == "" {
			continue
		}
		if err := fsys.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	if _, err := fsys.Stat(paths.ConfigFile); os.IsNotExist(err) {
		return afero.WriteFile(fsys, paths.ConfigFile, defaultConfigData, 0600)
	}
	return nil
}

// DefaultPaths lays out the per-user file locations under home.
func DefaultPaths(home string) session.Paths {
	configDir := filepath.Join(home, ".config", session.ProgramName)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, session.ProgramName)
	}
	return pathsUnder(configDir, home)
}

// ProfilePaths rebases the layout into a named profile; "" and "default"
// mean the primary layout.
func ProfilePaths(home, profile string) session.Paths {
	p := DefaultPaths(home)
	if profile == "" || profile == "default" {
		return p
	}
	return pathsUnder(filepath.Join(p.ConfigDir, "profiles", profile), home)
}

func pathsUnder(configDir, home string) session.Paths {
	dataDir := filepath.Join(home, ".local", "share", session.ProgramName)

	return session.Paths{
		ConfigDir:  configDir,
		PluginsDir: filepath.Join(configDir, PluginsDirName),
		DataDir:    dataDir,
		TmpDir:     filepath.Join(os.TempDir(), session.ProgramName),

		SelFile:     filepath.Join(configDir, SelName),
		HistFile:    filepath.Join(configDir, HistoryName),
		DirhistFile: filepath.Join(configDir, DirhistName),
		PinFile:     filepath.Join(configDir, PinName),
		LastFile:    filepath.Join(configDir, LastName),
		ActionsFile: filepath.Join(configDir, ActionsName),
		ConfigFile:  filepath.Join(configDir, ConfigurationName),
		LogFile:     filepath.Join(configDir, LogName),
		JumpFile:    filepath.Join(configDir, JumpName),
	}
}

// Apply copies the configuration into a live session.
func (c *Configuration) Apply(s *session.Session) {
	if c.Shell != "" {
		s.Shell = c.Shell
	}
	s.Opener = c.Opener
	s.Pager = c.Pager

	s.ListOpts.ShowHidden = c.ShowHidden
	s.ListOpts.Reverse = c.Reverse
	s.ListOpts.MaxFiles = c.MaxFiles
	if key, ok := listing.SortKeyFromName(c.Sort); ok {
		s.ListOpts.Sort = key
	}

	s.AutoCD = c.AutoCD
	s.AutoOpen = c.AutoOpen
	s.AutoLS = c.AutoLS
	s.ExtCmdOK = c.ExtCommands
	s.CaseSensPath = c.CaseSensPath
	s.Unicode = c.Unicode
	s.Icons = c.Icons
	s.Columns = c.Columns
	s.LightMode = c.LightMode
	s.TitleUpdates = c.TitleUpdates
	s.PagerOn = c.PagerOn
	s.Highlight = c.Highlight
	s.Suggestions = c.Suggestions
	s.LogCmds = c.LogCommands

	for name, value := range c.Aliases {
		s.Aliases[name] = value
	}
}
