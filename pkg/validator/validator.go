package validator

import (
	"regexp"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

const maxChannelNameLen = 50

var channelNameRegex = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
var channelPasswordRegex = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidChannelName accepts letters, digits and hyphens, up to 50 runes.
func ValidChannelName(name string) bool {
	return name != "" && len(name) <= maxChannelNameLen && channelNameRegex.MatchString(name)
}

// ValidChannelPassword accepts alphanumeric channel passwords.
func ValidChannelPassword(password string) bool {
	return password != "" && channelPasswordRegex.MatchString(password)
}

func ValidateChannel(name, chType string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Channel name is required")
	} else if len(name) > maxChannelNameLen {
		errs.Add("name", "Channel name is too long")
	} else if !channelNameRegex.MatchString(name) {
		errs.Add("name", "Channel name can only contain letters, numbers and hyphens")
	}

	if chType != "" && chType != "public" && chType != "protected" && chType != "private" {
		errs.Add("type", "Channel type must be public, protected, or private")
	}

	return errs
}
