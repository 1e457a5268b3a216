// Package transcript exports and re-reads finished or in-progress debates.
// It only consumes debate.Session snapshots and never mutates a session.
package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/podium/internal/debate"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts a format name or a common alias ("yml", "md").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown transcript format %q (want json, yaml or markdown)", s)
	}
}

// Extension returns the file extension conventionally used for f.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// FormatFromPath picks a format from the file extension, defaulting to
// markdown for unknown or missing extensions.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatMarkdown
}

// Write encodes t to w.
func Write(w io.Writer, t debate.Transcript, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return err
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(t))
		return err
	default:
		return fmt.Errorf("unknown transcript format %q", format)
	}
}

// Save writes t to path in the format implied by its extension. The write
// is atomic: data goes to a temporary file that is renamed into place.
func Save(path string, t debate.Transcript) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create transcript directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := Write(f, t, FormatFromPath(path)); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a transcript saved as JSON or YAML. Markdown exports are
// for reading only and cannot be loaded.
func Load(path string) (debate.Transcript, error) {
	var t debate.Transcript
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read transcript: %w", err)
	}
	switch FormatFromPath(path) {
	case FormatJSON:
		err = json.Unmarshal(data, &t)
	case FormatYAML:
		err = yaml.Unmarshal(data, &t)
	default:
		return t, fmt.Errorf("cannot load %s: only json and yaml transcripts can be read back", filepath.Base(path))
	}
	if err != nil {
		return t, fmt.Errorf("parse transcript: %w", err)
	}
	return t, nil
}
