package export

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jung-kurt/gofpdf"

	"ShapeBoard/internal/state"
)

const (
	pageMargin = 10.0 // mm
	pxToMM     = 0.2646
)

// WritePDF renders the snapshot onto one landscape A4 page, scaled down to
// fit when the drawing is larger than the page.
func WritePDF(w io.Writer, snap state.Snapshot) error {
	p := gofpdf.New("L", "mm", "A4", "")
	p.SetTitle("ShapeBoard export", true)
	if !snap.Taken.IsZero() {
		p.SetSubject("Board snapshot "+snap.Taken.Format("2006-01-02 15:04:05"), true)
	}
	p.AddPage()

	pageW, pageH := p.GetPageSize()
	bounds := snap.Bounds(10)
	scale := pxToMM
	if !bounds.Empty() {
		availW, availH := pageW-2*pageMargin, pageH-2*pageMargin
		scale = min(scale, availW/float64(bounds.Width), availH/float64(bounds.Height))
	}
	tx := func(pt state.Point) (float64, float64) {
		return pageMargin + float64(pt.X-bounds.X)*scale, pageMargin + float64(pt.Y-bounds.Y)*scale
	}

	p.SetDrawColor(0, 0, 0)
	p.SetLineWidth(0.5)
	for _, l := range snap.Lines {
		x1, y1 := tx(l.Start)
		x2, y2 := tx(l.End)
		p.Line(x1, y1, x2, y2)
	}

	for _, s := range snap.Shapes {
		c, err := ParseHex(s.Color)
		if err != nil {
			return fmt.Errorf("shape %d: %w", s.ID, err)
		}
		p.SetFillColor(int(c.R), int(c.G), int(c.B))
		size := float64(s.Size) * scale
		switch s.Kind {
		case state.KindSquare:
			x, y := tx(s.TopLeft())
			p.Rect(x, y, size, size, "F")
		default:
			x, y := tx(s.Pos)
			p.Circle(x, y, size/2, "F")
		}
	}

	if err := p.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// PDF writes the snapshot to a file at path.
func PDF(path string, snap state.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePDF(f, snap); err != nil {
		f.Close()
		return err
	}
	log.Printf("[EXPORT] Wrote %d shapes, %d lines to %s", len(snap.Shapes), len(snap.Lines), path)
	return f.Close()
}
