package scraper

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// TextExtractor turns a PDF into plain text. Implementations must keep the column
// layout: a schedule line is only recognized when its dates stay on one line.
type TextExtractor interface {
	Extract(ctx context.Context, pdf []byte) (string, error)
}

// PdftotextExtractor runs poppler's pdftotext in layout mode.
type PdftotextExtractor struct {
	// Path to the pdftotext binary. Defaults to "pdftotext" on $PATH.
	Path string
}

// Extract implements TextExtractor.
func (e PdftotextExtractor) Extract(ctx context.Context, pdf []byte) (string, error) {
	path := e.Path
	if path == "" {
		path = "pdftotext"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-layout", "-enc", "UTF-8", "-", "-")
	cmd.Stdin = bytes.NewReader(pdf)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("running %s: %w: %s", path, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
