package view

import (
	"image"

	"github.com/soocke/plaque-overlay/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CapturePreview shows the live frame next to the reference image.
type CapturePreview interface {
	UpdateCapture(img image.Image)
	SetReference(img image.Image)
	Reset()
}

type capturePreview struct {
	captureLabel   *LabelWidget
	referenceLabel *LabelWidget
	prevCapture    *Img // last Tk photo for the live frame
	prevReference  *Img
}

const (
	maxPreviewW   = 400
	maxPreviewH   = 225
	maxReferenceW = 160
	maxReferenceH = 160
)

// NewCapturePreview grids the live preview across columns 0-3 of row and
// the reference thumbnail at column 4.
func NewCapturePreview(row int) CapturePreview {
	pngBytes := images.EncodePNG(image.NewRGBA(image.Rect(0, 0, 200, 120)))
	capPhoto := NewPhoto(Data(pngBytes))
	refPhoto := NewPhoto(Data(pngBytes))
	capture := Label(Image(capPhoto), Borderwidth(1), Relief("sunken"))
	reference := Label(Image(refPhoto), Borderwidth(1), Relief("groove"))
	Grid(capture, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	Grid(reference, Row(row), Column(4), Sticky("n"), Padx("0.4m"), Pady("0.4m"))
	return &capturePreview{captureLabel: capture, referenceLabel: reference, prevCapture: capPhoto, prevReference: refPhoto}
}

// replace swaps the photo shown by lbl, deleting the previous one so Tk
// does not accumulate off-screen image data.
func replace(lbl *LabelWidget, prev **Img, img image.Image) {
	if lbl == nil || img == nil {
		return
	}
	photo := NewPhoto(Data(images.EncodePNG(img)))
	if *prev != nil {
		(*prev).Delete()
	}
	*prev = photo
	lbl.Configure(Image(photo))
}

func (v *capturePreview) UpdateCapture(img image.Image) {
	if img == nil {
		return
	}
	replace(v.captureLabel, &v.prevCapture, images.ScaleToFit(img, maxPreviewW, maxPreviewH))
}

func (v *capturePreview) SetReference(img image.Image) {
	if img == nil {
		return
	}
	replace(v.referenceLabel, &v.prevReference, images.ScaleToFit(img, maxReferenceW, maxReferenceH))
}

func (v *capturePreview) Reset() {
	replace(v.captureLabel, &v.prevCapture, image.NewRGBA(image.Rect(0, 0, 200, 120)))
}
