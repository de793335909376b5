package assets

import (
	"path/filepath"
	"testing"
)

func TestReferenceImage_Decodes(t *testing.T) {
	img, err := ReferenceImage()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 160 || b.Dy() != 120 {
		t.Fatalf("unexpected reference size %dx%d", b.Dx(), b.Dy())
	}
}

func TestLoadReference_EmptyPathUsesEmbedded(t *testing.T) {
	img, err := LoadReference("")
	if err != nil || img == nil {
		t.Fatalf("expected embedded reference, err=%v", err)
	}
}

func TestLoadReference_MissingFile(t *testing.T) {
	if _, err := LoadReference(filepath.Join(t.TempDir(), "nope.jpg")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
