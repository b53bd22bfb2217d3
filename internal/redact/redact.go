// Package redact strips likely secrets from exported transcripts.
package redact

import "regexp"

// Marker replaces every redacted match.
const Marker = "***REDACTED***"

// patterns are applied in order. The list is not a secret scanner; it only
// catches the shapes that show up in pasted terminal output and configs.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\bsk-[A-Za-z0-9]{16,}\b`),
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	regexp.MustCompile(`(?i)\bAuthorization\b\s*:\s*Bearer\s+\S+`),
	regexp.MustCompile(`(?i)\b(x-api-key|api_key|apikey|token|access_token|refresh_token|password)\b\s*[:=]\s*\S+`),
}

// Redact returns text with every pattern match replaced by Marker.
func Redact(text string) string {
	out := text
	for _, re := range patterns {
		out = re.ReplaceAllLiteralString(out, Marker)
	}
	return out
}
