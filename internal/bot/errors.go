package bot

import "fmt"

const (
	deniedText         = "You don't have access to this bot, or your access has expired."
	superAdminOnlyText = "Only a super admin can run this command."
)

// usageError reports malformed command arguments. Nothing is changed when a
// command returns one.
type usageError struct {
	reason string
}

func (e usageError) Error() string {
	if e.reason == "" {
		return "invalid arguments"
	}
	return e.reason
}

func badUsage(format string, args ...any) error {
	return usageError{reason: fmt.Sprintf(format, args...)}
}

var errArgCount = usageError{}
