package media

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// resizeLocal writes a JPEG thumbnail of the image at src to dst.
func resizeLocal(src, dst string, width, height int) error {
	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", src, err)
	}
	thumb := imaging.Fit(img, width, height, imaging.Lanczos)
	if err := imaging.Save(thumb, dst, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("failed to write thumbnail %s: %w", dst, err)
	}
	return nil
}
