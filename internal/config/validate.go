package config

import (
	"slices"
	"strconv"
	"strings"

	"github.com/thoreinstein/cairn/internal/errors"
)

// Errors for preference keys and values.
var (
	// ErrUnknownKey indicates a preference cairn does not have.
	ErrUnknownKey = errors.New("unknown preference")

	// ErrInvalidValue indicates a value the preference does not accept.
	ErrInvalidValue = errors.New("invalid value")
)

// Keys returns every preference key in display order.
func Keys() []string {
	return []string{KeyDocsInConfigs, KeyDefaultEnv, KeyAutoInstall}
}

// Get returns the value of key in cfg as text. Unset preferences are
// returned as an empty string.
func Get(cfg *Config, key string) (string, error) {
	switch key {
	case KeyDocsInConfigs:
		return formatBool(cfg.DocsInConfigs), nil
	case KeyDefaultEnv:
		return cfg.DefaultEnv, nil
	case KeyAutoInstall:
		return formatBool(cfg.AutoInstall), nil
	default:
		return "", &KeyError{Key: key, Err: ErrUnknownKey}
	}
}

// Set parses value for key and stores it in cfg.
func Set(cfg *Config, key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case KeyDocsInConfigs, KeyAutoInstall:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &KeyError{Key: key, Value: value, Err: ErrInvalidValue}
		}
		if key == KeyDocsInConfigs {
			cfg.DocsInConfigs = &b
		} else {
			cfg.AutoInstall = &b
		}
	case KeyDefaultEnv:
		if !slices.Contains(Environments, value) {
			return &KeyError{Key: key, Value: value, Err: ErrInvalidValue}
		}
		cfg.DefaultEnv = value
	default:
		return &KeyError{Key: key, Err: ErrUnknownKey}
	}
	return nil
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

// KeyError represents an error for a specific preference.
type KeyError struct {
	Key   string
	Value string
	Err   error
}

func (e *KeyError) Error() string {
	if e.Value == "" {
		return e.Err.Error() + ": " + e.Key
	}
	return e.Key + ": " + e.Err.Error() + ": " + strconv.Quote(e.Value)
}

func (e *KeyError) Unwrap() error {
	return e.Err
}
