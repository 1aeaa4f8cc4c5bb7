package commands

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/sunpark333/topicwala/internal/core/access"
	"github.com/sunpark333/topicwala/internal/core/chat"
	"github.com/sunpark333/topicwala/internal/core/config"
	"github.com/sunpark333/topicwala/internal/core/topic"
	"github.com/sunpark333/topicwala/internal/relay"
	"github.com/sunpark333/topicwala/internal/store"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Store is opened in the Before hook and closed in the After hook
	Store store.Backend
}

// Logger returns the global logger tagged with component.
func (f *Flags) Logger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Engine builds a relay engine over the configured store.
func (f *Flags) Engine(messenger chat.Messenger) *relay.Engine {
	opts := relay.Options{
		DefaultThread: topic.ThreadID(f.Config.Relay.DefaultThreadID),
		FallbackLabel: topic.Label(f.Config.Relay.FallbackLabel),
		ReplayRate:    f.Config.Relay.ReplayRate,
	}
	return relay.NewEngine(messenger, f.Store, f.Store, opts, f.Logger("relay"))
}

// Authorizer builds the access checker for the configured super admins.
func (f *Flags) Authorizer() *access.Authorizer {
	return access.NewAuthorizer(f.Store, f.Config.Access.SuperAdmins, f.Logger("access"))
}

// tokenFlag reads the bot token from a flag or the environment.
func tokenFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "token",
		Usage:       "Telegram bot token",
		Sources:     cli.EnvVars("TOPICWALA_BOT_TOKEN", "BOT_TOKEN"),
		Required:    true,
		Destination: dest,
	}
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "topicwala", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "topicwala")
}
