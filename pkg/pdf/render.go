package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// RenderRequest contains inputs for PDF rendering.
type RenderRequest struct {
	Reader io.Reader
	Writer io.Writer
	Config Config

	// Metrics defaults to CoreMetrics.
	Metrics Metrics
	// Renderer defaults to a GofpdfBackend built from Config.
	Renderer Renderer
}

// Render converts meal-plan Markdown to PDF. The document is built in
// memory and written to req.Writer only when every step succeeded, so a
// failed export never leaves a partial file behind.
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("pdf render: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("pdf render: writer is nil")
	}

	src, err := io.ReadAll(req.Reader)
	if err != nil {
		return fmt.Errorf("pdf render: reading markdown: %w", err)
	}

	metrics := req.Metrics
	if metrics == nil {
		metrics = NewCoreMetrics()
	}
	exp, err := NewExporter(req.Config, metrics)
	if err != nil {
		return fmt.Errorf("pdf render: %w", err)
	}

	instrs, err := exp.Export(string(src))
	if err != nil {
		return err
	}

	r := req.Renderer
	if r == nil {
		r, err = NewGofpdfBackend(exp.Config())
		if err != nil {
			return &ExportError{Err: err}
		}
	}
	if err := Replay(instrs, r); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := r.Finish(&buf); err != nil {
		return &ExportError{Err: fmt.Errorf("finalizing document: %w", err)}
	}
	if _, err := buf.WriteTo(req.Writer); err != nil {
		return fmt.Errorf("pdf render: writing output: %w", err)
	}
	return nil
}

// RenderBytes renders markdown with cfg and returns the PDF document.
func RenderBytes(markdown string, cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(RenderRequest{
		Reader: bytes.NewReader([]byte(markdown)),
		Writer: &buf,
		Config: cfg,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders markdown with cfg to path. The file is only created or
// replaced after rendering succeeded.
func WriteFile(path, markdown string, cfg Config) error {
	doc, err := RenderBytes(markdown, cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("pdf render: writing %s: %w", path, err)
	}
	return nil
}
