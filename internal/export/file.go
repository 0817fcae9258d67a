package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"ShapeBoard/internal/state"
)

var ErrUnknownFormat = errors.New("unknown export format")

// File writes the snapshot to path, picking the format from the extension.
// width and height only apply to raster output.
func File(path string, snap state.Snapshot, width, height int) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return PDF(path, snap)
	case ".png":
		return PNG(path, snap, width, height)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}
