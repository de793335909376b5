package assets

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// TargetImagePNG contains the raw bytes of the bundled reference plaque.
//
//go:embed target_image.png
var TargetImagePNG []byte

// ReferenceImage decodes the embedded reference plaque.
func ReferenceImage() (image.Image, error) {
	if len(TargetImagePNG) == 0 {
		return nil, errors.New("embedded target_image.png is empty")
	}
	img, err := imaging.Decode(bytes.NewReader(TargetImagePNG))
	if err != nil {
		return nil, fmt.Errorf("decode embedded reference: %w", err)
	}
	return img, nil
}

// LoadReference loads the reference image from path, honouring EXIF
// orientation. An empty path selects the embedded asset.
func LoadReference(path string) (image.Image, error) {
	if path == "" {
		return ReferenceImage()
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("load reference %s: %w", path, err)
	}
	return img, nil
}
