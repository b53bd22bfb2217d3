package config

import (
	"github.com/spf13/viper"
)

// DefaultExcludeGlobs is the exclude set used when a session start does not
// supply its own.
var DefaultExcludeGlobs = []string{
	"node_modules/",
	".venv/",
	"dist/",
	"build/",
	".next/",
	"target/",
	".cache/",
	".DS_Store",
	".timewarp/",
	"*.log",
	"*.pid",
}

const (
	DefaultToolMaxChars = 12000
	DefaultDumpMaxChars = 20000
	DefaultStatusFilter = "open"
	DefaultSummaryModel = "llama3.2"
	DefaultOllamaURL    = "http://localhost:11434"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// SetDefaults registers every configuration default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("snapshot.exclude_globs", DefaultExcludeGlobs)
	v.SetDefault("transcript.tool_max_chars", DefaultToolMaxChars)
	v.SetDefault("transcript.dump_max_chars", DefaultDumpMaxChars)
	v.SetDefault("issues.default_status_filter", DefaultStatusFilter)
	v.SetDefault("lock.enabled", true)
	v.SetDefault("summary.enabled", false)
	v.SetDefault("summary.model", DefaultSummaryModel)
	v.SetDefault("summary.ollama_url", DefaultOllamaURL)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}

// GetExcludeGlobs returns the exclude set for new snapshots
func GetExcludeGlobs() []string {
	globs := viper.GetStringSlice("snapshot.exclude_globs")
	if len(globs) == 0 {
		globs = DefaultExcludeGlobs
	}
	return append([]string(nil), globs...)
}

// GetToolMaxChars returns the truncation cap for tool payloads in transcripts
func GetToolMaxChars() int {
	if n := viper.GetInt("transcript.tool_max_chars"); n > 0 {
		return n
	}
	return DefaultToolMaxChars
}

// GetDumpMaxChars returns the truncation cap for unrecognized payload dumps
func GetDumpMaxChars() int {
	if n := viper.GetInt("transcript.dump_max_chars"); n > 0 {
		return n
	}
	return DefaultDumpMaxChars
}

// GetDefaultStatusFilter returns the issue list filter used when none is given
func GetDefaultStatusFilter() string {
	return viper.GetString("issues.default_status_filter")
}

// GetLockEnabled reports whether operations take the workspace lease
func GetLockEnabled() bool {
	return viper.GetBool("lock.enabled")
}

// GetSummaryEnabled reports whether chat summaries are generated via Ollama
func GetSummaryEnabled() bool {
	return viper.GetBool("summary.enabled")
}

// GetSummaryModel returns the Ollama model used for chat summaries
func GetSummaryModel() string {
	return viper.GetString("summary.model")
}

// GetOllamaURL returns the Ollama API endpoint
func GetOllamaURL() string {
	return viper.GetString("summary.ollama_url")
}

// GetLogLevel returns the configured log level
func GetLogLevel() string {
	return viper.GetString("log.level")
}

// GetLogFormat returns the configured log format
func GetLogFormat() string {
	return viper.GetString("log.format")
}
