package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	pageMarginMM   = 10.0
	contentWidthMM = 190.0
	imageTopMM     = 20.0
	maxImageHMM    = 150.0
	bottomMarginMM = 15.0
)

const (
	coverTitle    = "Home Safety Improvement Report"
	coverSubtitle = "Generated using AI Recommendations"
	coverBlurb    = "This report contains home safety recommendations aimed at reducing fall risks " +
		"for older adults. Each recommendation is supported by rationale, cost estimate, and installation notes."
	pageHeader = "Fall Prevention Home Safety Report"
)

// PDFRenderer lays out an A4 portrait report with fpdf.
type PDFRenderer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func NewPDFRenderer() *PDFRenderer {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMarginMM, pageMarginMM, pageMarginMM)
	pdf.SetAutoPageBreak(true, bottomMarginMM)

	r := &PDFRenderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetHeaderFunc(func() {
		if pdf.PageNo() == 1 {
			return
		}
		pdf.SetFont("Helvetica", "B", 15)
		pdf.CellFormat(0, 10, pageHeader, "", 0, "C", false, 0, "")
		pdf.Ln(10)
	})
	return r
}

func (r *PDFRenderer) Cover(date time.Time) {
	p := r.pdf
	p.AddPage()
	p.SetFont("Helvetica", "B", 24)
	p.Ln(80)
	p.CellFormat(0, 20, coverTitle, "", 1, "C", false, 0, "")
	p.Ln(10)

	p.SetFont("Helvetica", "", 16)
	p.CellFormat(0, 10, coverSubtitle, "", 1, "C", false, 0, "")
	p.Ln(10)

	p.SetFont("Helvetica", "I", 12)
	p.CellFormat(0, 10, "Date: "+date.Format("January 02, 2006"), "", 1, "C", false, 0, "")
	p.Ln(30)

	p.SetFont("Helvetica", "", 12)
	p.MultiCell(0, 10, coverBlurb, "", "L", false)
}

// Section adds a page with the after image scaled to the content width
// (or to maxImageHMM for tall images) followed by the recommendation text.
func (r *PDFRenderer) Section(s Section, imagePath string) error {
	p := r.pdf
	p.AddPage()

	w, h := fitImage(s.ImageWidthMM, s.ImageHeightMM)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	p.ImageOptions(imagePath, pageMarginMM+(contentWidthMM-w)/2, imageTopMM, w, h, false, opts, 0, "")
	if err := p.Error(); err != nil {
		return fmt.Errorf("placing image: %w", err)
	}
	p.SetY(imageTopMM + h + 10)

	p.SetFont("Helvetica", "B", 14)
	p.CellFormat(0, 10, "Recommendation Details", "", 1, "L", false, 0, "")
	p.Ln(5)

	for _, f := range []struct{ label, value string }{
		{"Rationale:", s.Rationale},
		{"Modification:", s.Modification},
		{"Cost:", s.Cost},
		{"Installation:", s.Installation},
	} {
		p.SetFont("Helvetica", "B", 12)
		p.MultiCell(0, 8, f.label, "", "L", false)
		p.SetFont("Helvetica", "", 12)
		p.MultiCell(0, 8, r.tr(f.value), "", "L", false)
		p.Ln(5)
	}
	return p.Error()
}

func (r *PDFRenderer) Render(w io.Writer) error {
	return r.pdf.Output(w)
}

// fitImage scales a native size to the content width, capping the height.
func fitImage(wMM, hMM float64) (float64, float64) {
	if wMM <= 0 || hMM <= 0 {
		return contentWidthMM, contentWidthMM
	}
	w := contentWidthMM
	h := hMM * w / wMM
	if h > maxImageHMM {
		w = w * maxImageHMM / h
		h = maxImageHMM
	}
	return w, h
}

var _ Renderer = (*PDFRenderer)(nil)
