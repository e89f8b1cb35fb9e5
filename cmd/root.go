// Package cmd wires the droidctl command tree.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/zjrosen/droidctl/internal/config"
	"github.com/zjrosen/droidctl/internal/droid"
	"github.com/zjrosen/droidctl/internal/logging"
	"github.com/zjrosen/droidctl/internal/registry"
	"github.com/zjrosen/droidctl/internal/ui/picker"
	"github.com/zjrosen/droidctl/internal/ui/styles"
	"github.com/zjrosen/droidctl/internal/ui/text"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
	logger  zerolog.Logger
)

// errPickerCanceled marks an interactive selection the user backed out of.
// Commands treat it as a quiet no-op rather than a failure.
var errPickerCanceled = errors.New("selection canceled")

var rootCmd = &cobra.Command{
	Use:   "droidctl",
	Short: "Manage droid profiles for coding agents",
	Long: `droidctl manages droids: markdown files whose YAML frontmatter describes
a specialized agent profile and whose body is the agent's system prompt.

Droids live in a user-scope directory (~/.droidctl/droids) and an
optional project-scope directory (.droidctl/droids). A project droid
overrides a user droid with the same name.`,
	Version: version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/droidctl/config.yaml)")
	rootCmd.PersistentFlags().String("user-dir", "",
		"user-scope droid directory (overrides config)")
	rootCmd.PersistentFlags().String("project-dir", "",
		"project-scope droid directory (overrides config)")

	// Bind flags to viper
	_ = viper.BindPFlag("droids.user_dir", rootCmd.PersistentFlags().Lookup("user-dir"))
	_ = viper.BindPFlag("droids.project_dir", rootCmd.PersistentFlags().Lookup("project-dir"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("droids.user_dir", defaults.Droids.UserDir)
	viper.SetDefault("droids.project_dir", defaults.Droids.ProjectDir)
	viper.SetDefault("editor", defaults.Editor)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("log.format", defaults.Log.Format)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .droidctl/config.yaml (current directory)
		// 2. ~/.config/droidctl/config.yaml (user config)
		projectConfig := filepath.Join(".droidctl", "config.yaml")
		if _, err := os.Stat(projectConfig); err == nil {
			viper.SetConfigFile(projectConfig)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "droidctl"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("DROIDCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create a commented default at the
		// user path so the next run picks it up.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if home, homeErr := os.UserHomeDir(); homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "droidctl", "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
				// If write fails, just continue with defaults (no config file)
			}
		}
	}

	_ = viper.Unmarshal(&cfg)

	logger = logging.Init(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Component: "cli",
	})
}

// newRegistry builds a registry over the configured directories and runs
// an initial load.
func newRegistry() (*registry.Registry, error) {
	reg := registry.New(registry.Config{
		UserDir:    expandHome(cfg.Droids.UserDir),
		ProjectDir: expandHome(cfg.Droids.ProjectDir),
		Logger:     logger,
	})
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("loading droids: %w", err)
	}
	return reg, nil
}

// expandHome resolves a leading ~ against the current home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// styledOutput reports whether stdout should receive styled output.
// Respects NO_COLOR and dumb terminals via termenv's profile detection.
func styledOutput() bool {
	return stdoutIsTerminal() && termenv.EnvColorProfile() != termenv.Ascii
}

// scopeColor returns the accent color for a droid scope.
func scopeColor(scope droid.Scope) lipgloss.TerminalColor {
	if scope == droid.ScopeProject {
		return styles.ScopeProjectColor
	}
	return styles.ScopeUserColor
}

// resolveDroidName returns the positional name argument, or prompts with
// the interactive picker when the name was omitted on a terminal.
func resolveDroidName(reg *registry.Registry, args []string, title string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if !stdoutIsTerminal() {
		return "", errors.New("droid name required")
	}

	droids := reg.List()
	if len(droids) == 0 {
		return "", errors.New("no droids found")
	}

	options := make([]picker.Option, len(droids))
	for i, d := range droids {
		label := d.Name
		if d.Description != "" {
			label = d.Name + "  " + text.Truncate(d.Description, 48, "…")
		}
		options[i] = picker.Option{Label: label, Value: d.Name, Color: scopeColor(d.Scope)}
	}

	choice, ok, err := picker.Run(title, options)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errPickerCanceled
	}
	return choice.Value, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
