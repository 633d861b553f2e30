package logging

import (
	"regexp"
	"strings"
)

// secretKeyPatterns contains substrings that indicate a key likely holds sensitive data.
// Keys are matched case-insensitively.
var secretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"MNEMONIC",
	"SEED",
	"PRIVATE",
	"CREDENTIAL",
}

// tokenPrefixes contains known token prefixes that mark a value as sensitive
// regardless of key name.
var tokenPrefixes = []string{
	"ghp_", // GitHub personal access token
	"gho_", // GitHub OAuth token
	"ghs_", // GitHub server-to-server token
	"npm_", // npm automation token
}

// privateKeyPattern matches a hex-encoded 32-byte private key.
var privateKeyPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{64}$`)

// MaskValue masks a potentially sensitive string value.
// Values with 4 or fewer characters are fully masked as "********".
// Longer values show the last 4 characters: "****xxxx".
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}

// ShouldMask returns true if the key name suggests it contains sensitive data.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range secretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// LooksSecret returns true if the value is a known token or a raw private key,
// whatever key it is logged under.
func LooksSecret(value string) bool {
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return privateKeyPattern.MatchString(value)
}
