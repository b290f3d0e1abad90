package media

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

func TestCaptionOverlayDarkensTopBand(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 400))
	base := color.RGBA{200, 200, 200, 255}
	for y := 0; y < 400; y++ {
		for x := 0; x < 800; x++ {
			src.Set(x, y, base)
		}
	}

	out, err := CaptionOverlay(src, "IU Announces World Tour")
	if err != nil {
		t.Fatalf("overlay: %v", err)
	}
	if out.Bounds() != src.Bounds() {
		t.Fatalf("bounds changed: %v", out.Bounds())
	}

	// The band sits at the top, so a pixel near the top edge must be
	// darker than the source while the bottom half stays untouched.
	r, _, _, _ := out.At(400, 5).RGBA()
	if r >= uint32(base.R)<<8 {
		t.Errorf("top pixel not darkened: r=%d", r)
	}
	r, g, b, _ := out.At(400, 350).RGBA()
	if uint8(r>>8) != base.R || uint8(g>>8) != base.G || uint8(b>>8) != base.B {
		t.Errorf("bottom pixel changed: %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestCaptionOverlayEmptyTitle(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	if _, err := CaptionOverlay(src, ""); err != nil {
		t.Fatalf("empty title must not fail: %v", err)
	}
}

func TestWrapText(t *testing.T) {
	face := basicfont.Face7x13

	lines := wrapText(face, "one two three four five six", 60)
	if len(lines) < 2 {
		t.Fatalf("expected wrapping, got %v", lines)
	}
	for _, line := range lines {
		if font.MeasureString(face, line).Ceil() > 60 {
			t.Errorf("line too wide: %q", line)
		}
	}

	if got := wrapText(face, "", 60); got != nil {
		t.Errorf("empty input produced %v", got)
	}
	if got := wrapText(face, "single", 600); len(got) != 1 || got[0] != "single" {
		t.Errorf("single word produced %v", got)
	}
}
