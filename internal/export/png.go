package export

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/fogleman/gg"

	"ShapeBoard/internal/state"
)

// WritePNG renders the snapshot at surface coordinates into a width x height
// image. Lines are drawn below shapes, as on screen.
func WritePNG(w io.Writer, snap state.Snapshot, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid image size %dx%d", width, height)
	}
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetColor(color.Black)
	dc.SetLineWidth(2)
	for _, l := range snap.Lines {
		dc.DrawLine(float64(l.Start.X), float64(l.Start.Y), float64(l.End.X), float64(l.End.Y))
		dc.Stroke()
	}

	for _, s := range snap.Shapes {
		c, err := ParseHex(s.Color)
		if err != nil {
			return fmt.Errorf("shape %d: %w", s.ID, err)
		}
		dc.SetColor(c)
		size := float64(s.Size)
		switch s.Kind {
		case state.KindSquare:
			tl := s.TopLeft()
			dc.DrawRectangle(float64(tl.X), float64(tl.Y), size, size)
		default:
			dc.DrawCircle(float64(s.Pos.X), float64(s.Pos.Y), size/2)
		}
		dc.Fill()
	}

	return dc.EncodePNG(w)
}

// PNG writes the snapshot to a file at path.
func PNG(path string, snap state.Snapshot, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, snap, width, height); err != nil {
		f.Close()
		return err
	}
	log.Printf("[EXPORT] Wrote %dx%d image to %s", width, height, path)
	return f.Close()
}
