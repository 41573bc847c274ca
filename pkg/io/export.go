package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/behave/pkg/errors"
	"github.com/matzehuels/behave/pkg/token"
)

// Options controls encoding.
type Options struct {
	// Indent is the per-level indentation. Empty writes compact JSON.
	Indent string
}

// DefaultOptions indents with two spaces.
func DefaultOptions() Options { return Options{Indent: "  "} }

// WriteBundle encodes a bundle as JSON and writes it to w.
// The output can be re-read with [ReadBundle].
func WriteBundle(b *token.Bundle, w io.Writer, opts Options) error {
	return write(b, w, opts, "bundle")
}

// WriteCanvasToken encodes a single canvas token.
func WriteCanvasToken(tok *token.CanvasToken, w io.Writer, opts Options) error {
	return write(tok, w, opts, "canvas token")
}

// WriteExport encodes a project export.
func WriteExport(exp *token.Export, w io.Writer, opts Options) error {
	return write(exp, w, opts, "export")
}

// ExportBundle writes a bundle to a file at path.
func ExportBundle(b *token.Bundle, path string, opts Options) error {
	return writeFile(path, func(w io.Writer) error { return WriteBundle(b, w, opts) })
}

// ExportFile writes a project export to a file at path.
func ExportFile(exp *token.Export, path string, opts Options) error {
	return writeFile(path, func(w io.Writer) error { return WriteExport(exp, w, opts) })
}

func write(v any, w io.Writer, opts Options, what string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", opts.Indent)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", what)
	}
	return nil
}

// writeFile encodes into memory first so a failed encode leaves an
// existing file untouched.
func writeFile(path string, encode func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}
