package config

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// File mirrors config.toml.
type File struct {
	Snapshot   SnapshotSection   `toml:"snapshot"`
	Transcript TranscriptSection `toml:"transcript"`
	Issues     IssuesSection     `toml:"issues"`
	Lock       LockSection       `toml:"lock"`
	Summary    SummarySection    `toml:"summary"`
	Log        LogSection        `toml:"log"`
}

type SnapshotSection struct {
	ExcludeGlobs []string `toml:"exclude_globs"`
}

type TranscriptSection struct {
	ToolMaxChars int `toml:"tool_max_chars"`
	DumpMaxChars int `toml:"dump_max_chars"`
}

type IssuesSection struct {
	DefaultStatusFilter string `toml:"default_status_filter"`
}

type LockSection struct {
	Enabled bool `toml:"enabled"`
}

type SummarySection struct {
	Enabled   bool   `toml:"enabled"`
	Model     string `toml:"model"`
	OllamaURL string `toml:"ollama_url"`
}

type LogSection struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the configuration file populated with defaults.
func Default() File {
	return File{
		Snapshot:   SnapshotSection{ExcludeGlobs: append([]string(nil), DefaultExcludeGlobs...)},
		Transcript: TranscriptSection{ToolMaxChars: DefaultToolMaxChars, DumpMaxChars: DefaultDumpMaxChars},
		Issues:     IssuesSection{DefaultStatusFilter: DefaultStatusFilter},
		Lock:       LockSection{Enabled: true},
		Summary:    SummarySection{Model: DefaultSummaryModel, OllamaURL: DefaultOllamaURL},
		Log:        LogSection{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// Encode renders f as TOML.
func (f File) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
