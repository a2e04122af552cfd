package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Decoders for reading generated image dimensions.
	_ "image/jpeg"
	_ "image/png"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kiranshivaraju/hazardlens/internal/archive"
)

// MillimetersPerPixel converts native image size at 96 dpi to page units.
const MillimetersPerPixel = 0.264583

// NotAvailable replaces missing or empty metadata fields.
const NotAvailable = "N/A"

var sectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "hazardlens_report_sections_total",
		Help: "Report sections by outcome",
	},
	[]string{"outcome"},
)

// Section is one recommendation page of the report.
type Section struct {
	Index         int
	ImageWidthMM  float64
	ImageHeightMM float64
	Rationale     string
	Modification  string
	Cost          string
	Installation  string
}

// Document is a composed report.
type Document struct {
	Sections []Section
	PDF      []byte
}

// Renderer lays out pages. A Renderer is used for one document only.
type Renderer interface {
	Cover(date time.Time)
	Section(s Section, imagePath string) error
	Render(w io.Writer) error
}

// Composer builds documents from archives.
type Composer struct {
	newRenderer func() Renderer
	now         func() time.Time
	logger      *slog.Logger
}

func NewComposer(newRenderer func() Renderer, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{newRenderer: newRenderer, now: time.Now, logger: logger}
}

// Compose renders a cover plus one section per requested index, in the
// order given. Indices without an after image are skipped.
func (c *Composer) Compose(ctx context.Context, data []byte, indices []int) (*Document, error) {
	ar, err := archive.OpenReader(data)
	if err != nil {
		return nil, err
	}

	tmp, err := os.MkdirTemp("", "hazardlens-report-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	r := c.newRenderer()
	r.Cover(c.now())

	doc := &Document{Sections: []Section{}}
	for pos, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sec, path, ok := c.prepareSection(ar, tmp, pos, idx)
		if !ok {
			sectionsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		if err := r.Section(sec, path); err != nil {
			return nil, fmt.Errorf("rendering section %d: %w", idx, err)
		}
		sectionsTotal.WithLabelValues("rendered").Inc()
		doc.Sections = append(doc.Sections, sec)
	}

	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	doc.PDF = buf.Bytes()
	return doc, nil
}

func (c *Composer) prepareSection(ar *archive.Reader, dir string, pos, idx int) (Section, string, bool) {
	log := c.logger.With("index", idx)

	img, err := ar.Read(archive.AfterKey(idx))
	if err != nil {
		log.Warn("skipping report section", "error", err)
		return Section{}, "", false
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		log.Warn("skipping report section: unreadable image", "error", err)
		return Section{}, "", false
	}

	path := filepath.Join(dir, fmt.Sprintf("after_%d_%d.png", pos, idx))
	if err := os.WriteFile(path, img, 0o600); err != nil {
		log.Warn("skipping report section: temp write failed", "error", err)
		return Section{}, "", false
	}

	sec := Section{
		Index:         idx,
		ImageWidthMM:  float64(cfg.Width) * MillimetersPerPixel,
		ImageHeightMM: float64(cfg.Height) * MillimetersPerPixel,
	}

	meta, err := ar.Metadata(idx)
	if err != nil {
		if errors.Is(err, archive.ErrMissingEntry) {
			log.Warn("metadata missing, using defaults")
		} else {
			log.Warn("metadata unreadable, using defaults", "error", err)
		}
		meta = &archive.Metadata{}
	}
	sec.Rationale = orNA(meta.Rationale)
	sec.Modification = orNA(meta.Modification)
	sec.Cost = orNA(meta.Cost)
	sec.Installation = orNA(meta.Installation)

	return sec, path, true
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
