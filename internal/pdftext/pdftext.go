// Package pdftext extracts per-page text from PDF documents via the
// poppler CLI tools. It is the external text source the metric extractor
// consumes; extraction faults degrade to missing pages, never to a crash
// of the analysis request.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/srs-capital/fii-screener/internal/config"
)

// Source yields the ordered page texts of a document. Pages that could
// not be extracted come back as empty strings.
type Source interface {
	Pages(ctx context.Context, path string) ([]string, error)
}

// Poppler extracts text by shelling out to pdfinfo and pdftotext.
type Poppler struct {
	pdftotext   string
	pdfinfo     string
	maxParallel int
}

// NewPoppler creates a Poppler source from config. Empty paths fall back
// to the bare binary names; MaxParallel below 1 is clamped to 1.
func NewPoppler(cfg config.PDFTextConfig) *Poppler {
	p := &Poppler{
		pdftotext:   cfg.PdfToTextPath,
		pdfinfo:     cfg.PdfInfoPath,
		maxParallel: cfg.MaxParallel,
	}
	if p.pdftotext == "" {
		p.pdftotext = "pdftotext"
	}
	if p.pdfinfo == "" {
		p.pdfinfo = "pdfinfo"
	}
	if p.maxParallel < 1 {
		p.maxParallel = 1
	}
	return p
}

// Pages returns the text of each page in order. A page that fails to
// extract yields an empty string and a logged warning; only a document
// whose page count cannot be determined returns an error.
func (p *Poppler) Pages(ctx context.Context, path string) ([]string, error) {
	count, err := p.pageCount(ctx, path)
	if err != nil {
		return nil, err
	}

	pages := make([]string, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)

	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			text, err := p.pageText(gctx, path, i+1)
			if err != nil {
				// Skipped, not retried, not fatal.
				zap.L().Warn("pdftext: page extraction failed",
					zap.String("path", path),
					zap.Int("page", i+1),
					zap.Error(err),
				)
				return nil
			}
			pages[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return pages, eris.Wrap(err, "pdftext: extract pages")
	}
	return pages, nil
}

// pageCount parses the "Pages:" line of pdfinfo output.
func (p *Poppler) pageCount(ctx context.Context, path string) (int, error) {
	cmd := exec.CommandContext(ctx, p.pdfinfo, path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, eris.Wrapf(err, "pdftext: pdfinfo failed for %s: %s", path, stderr.String())
	}

	for _, line := range strings.Split(stdout.String(), "\n") {
		if rest, ok := strings.CutPrefix(line, "Pages:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(rest))
			if err != nil {
				return 0, eris.Wrapf(err, "pdftext: parse page count for %s", path)
			}
			return n, nil
		}
	}
	return 0, eris.Errorf("pdftext: no page count in pdfinfo output for %s", path)
}

// pageText runs pdftotext -layout on a single page and returns stdout.
func (p *Poppler) pageText(ctx context.Context, path string, page int) (string, error) {
	pageArg := fmt.Sprint(page)
	cmd := exec.CommandContext(ctx, p.pdftotext, "-layout", "-f", pageArg, "-l", pageArg, path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "pdftext: pdftotext failed for %s page %d: %s", path, page, stderr.String())
	}

	return stdout.String(), nil
}

// SafePages wraps a Source so that any failure degrades to an empty page
// slice. The extractor then naturally reports insufficient metrics.
func SafePages(ctx context.Context, src Source, path string) []string {
	pages, err := src.Pages(ctx, path)
	if err != nil {
		zap.L().Warn("pdftext: document unreadable, treating as empty",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}
	return pages
}
