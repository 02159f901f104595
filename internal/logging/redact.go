package logging

import (
	"log/slog"
	"strings"
)

// SecretKeyPatterns contains substrings that indicate a key likely contains sensitive data.
// Keys are matched case-insensitively.
var SecretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE",
}

// TokenPrefixes contains known API token prefixes that indicate sensitive values
// regardless of key name.
var TokenPrefixes = []string{
	"ghp_",  // GitHub personal access token
	"gho_",  // GitHub OAuth token
	"ghu_",  // GitHub user-to-server token
	"ghs_",  // GitHub server-to-server token
	"ghr_",  // GitHub refresh token
	"sk-",   // OpenAI/Anthropic keys
	"pk-",   // Public keys that shouldn't be exposed
	"AKIA",  // AWS access key prefix
	"BSA",   // Brave search API key
	"pplx-", // Perplexity API key
	"xoxb-", // Slack bot token
	"xoxp-", // Slack user token
}

// PlaceholderPrefix marks catalog env values the user still has to fill in.
const PlaceholderPrefix = "YOUR_"

// MaskEnv masks sensitive values in a launch spec's environment map.
// Keys matching SecretKeyPatterns or values matching TokenPrefixes are masked.
// Placeholders are not secrets and are shown as-is.
// Returns a new map; env is not modified.
func MaskEnv(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}

	masked := make(map[string]string, len(env))
	for k, v := range env {
		switch {
		case IsPlaceholder(v):
			masked[k] = v
		case ShouldMask(k) || ContainsTokenPrefix(v):
			masked[k] = MaskValue(v)
		default:
			masked[k] = v
		}
	}
	return masked
}

// IsPlaceholder reports whether value is an unfilled catalog placeholder.
func IsPlaceholder(value string) bool {
	return strings.HasPrefix(value, PlaceholderPrefix)
}

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
// Matching is case-insensitive.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range SecretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix returns true if the value starts with a known token prefix.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range TokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// RedactAttr masks an attribute value that looks like a secret. It has the
// signature of slog.HandlerOptions.ReplaceAttr so the JSON handlers can
// share it. Placeholders are left alone.
func RedactAttr(_ []string, a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		return a
	}
	if a.Value.Kind() != slog.KindString && !ShouldMask(a.Key) {
		return a
	}

	s := a.Value.String()
	switch {
	case IsPlaceholder(s):
		return a
	case ShouldMask(a.Key) || ContainsTokenPrefix(s):
		return slog.String(a.Key, MaskValue(s))
	default:
		return a
	}
}
