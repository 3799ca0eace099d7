/*
Copyright © 2026 Mifos Initiative
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format represents the output format type.
type Format string

const (
	// FormatJSON outputs data in JSON format.
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format.
	FormatYAML Format = "yaml"
)

// IsUnknown reports whether the format is outside the supported set.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML:
		return false
	default:
		return true
	}
}

// SupportedFormats returns all supported output formats.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML)}
}

// Serializer writes structured reports and bundles in a chosen format.
type Serializer interface {
	Serialize(ctx context.Context, v any) error
}

// Writer serializes to an io.Writer. Close must be called when the writer
// owns a file handle.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a Writer targeting output. A nil output means stdout;
// an unknown format falls back to YAML.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to YAML", "format", format)
		format = FormatYAML
	}
	return &Writer{format: format, output: output}
}

// NewFileWriterOrStdout creates a Writer for the given path, falling back to
// stdout when the path is empty or cannot be created. Call Close when done.
func NewFileWriterOrStdout(format Format, path string) *Writer {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewWriter(format, os.Stdout)
	}

	file, err := os.Create(trimmed)
	if err != nil {
		slog.Error("failed to create output file, falling back to stdout", "error", err, "path", trimmed)
		return NewWriter(format, os.Stdout)
	}

	w := NewWriter(format, file)
	w.closer = file
	return w
}

// Close releases the underlying file handle, if any. Safe to call multiple
// times and on stdout-backed writers.
func (w *Writer) Close() error {
	if w.closer != nil {
		err := w.closer.Close()
		w.closer = nil
		return err
	}
	return nil
}

// Serialize writes v in the configured format.
func (w *Writer) Serialize(_ context.Context, v any) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.output)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w.output)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", w.format)
	}
}
