package config

import (
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/sunpark333/topicwala/internal/core/topic"
)

// Validate checks that the configuration is valid.
// Returns criterio.FieldErrors describing every invalid field.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.DataDir == "" {
		errs = errs.Append("data_dir", fmt.Errorf("cannot be empty"))
	}

	if c.Telegram.PollTimeout < 0 {
		errs = errs.Append("telegram.poll_timeout", fmt.Errorf("must not be negative"))
	}

	switch c.Store.Driver {
	case DriverJSONFile, DriverSQLite:
	case DriverPostgres:
		if c.Store.DSN == "" {
			errs = errs.Append("store.dsn", fmt.Errorf("required for the %s driver", DriverPostgres))
		}
	default:
		errs = errs.Append("store.driver", fmt.Errorf("unknown driver %q (want %s, %s or %s)",
			c.Store.Driver, DriverJSONFile, DriverSQLite, DriverPostgres))
	}

	if c.Relay.DefaultThreadID < 0 {
		errs = errs.Append("relay.default_thread_id", fmt.Errorf("must not be negative"))
	}

	label := strings.TrimSpace(c.Relay.FallbackLabel)
	switch {
	case label == "":
		errs = errs.Append("relay.fallback_label", fmt.Errorf("cannot be empty"))
	case topic.Truncate(topic.Label(label)) != topic.Label(label):
		errs = errs.Append("relay.fallback_label", fmt.Errorf("longer than %d characters", topic.MaxLabelLength))
	}

	if c.Relay.ReplayRate <= 0 {
		errs = errs.Append("relay.replay_rate", fmt.Errorf("must be positive"))
	}

	for i, id := range c.Access.SuperAdmins {
		if id <= 0 {
			errs = errs.Append(fmt.Sprintf("access.super_admins[%d]", i), fmt.Errorf("invalid user id %d", id))
		}
	}

	return errs.ToError()
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// telegramChatLimit is the messages per second a bot may send into one chat
// before Telegram starts returning flood errors.
const telegramChatLimit = 1.0

// Warnings returns settings that are valid but likely mistakes.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if len(c.Access.SuperAdmins) == 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Access",
			Item:     "super_admins",
			Message:  "no super admins; grants and allow lists can only be managed from the CLI",
		})
	}

	if c.Relay.ReplayRate > telegramChatLimit {
		warnings = append(warnings, ValidationWarning{
			Category: "Relay",
			Item:     "replay_rate",
			Message: fmt.Sprintf("%.1f messages/s is above the %.0f/s Telegram allows into one chat; long replays will hit flood errors",
				c.Relay.ReplayRate, telegramChatLimit),
		})
	}

	if c.Telegram.Debug {
		warnings = append(warnings, ValidationWarning{
			Category: "Telegram",
			Item:     "debug",
			Message:  "debug logs every Bot API request, including message contents",
		})
	}

	return warnings
}
