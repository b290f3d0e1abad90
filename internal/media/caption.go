package media

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// maxCaptionLines bounds the title band so it never eats the image.
const maxCaptionLines = 3

// CaptionOverlay draws a translucent dark band across the top of img with
// title word-wrapped inside it in white. Titles longer than the band are
// cut at the last full line.
func CaptionOverlay(img image.Image, title string) (image.Image, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	size := float64(h) / 18
	if size < 14 {
		size = 14
	}
	margin := w / 25
	if margin < 10 {
		margin = 10
	}

	ft, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(ft, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	defer face.Close()

	lines := wrapText(face, title, w-2*margin)
	if len(lines) > maxCaptionLines {
		lines = lines[:maxCaptionLines]
		lines[maxCaptionLines-1] += "…"
	}

	metrics := face.Metrics()
	lineH := metrics.Height.Ceil()
	pad := lineH / 2
	bandH := lineH*len(lines) + 2*pad

	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	band := image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+bandH)
	draw.Draw(out, band, image.NewUniform(color.RGBA{0, 0, 0, 190}), image.Point{}, draw.Over)

	y := bounds.Min.Y + pad + metrics.Ascent.Ceil()
	for _, line := range lines {
		d := &font.Drawer{
			Dst:  out,
			Src:  image.NewUniform(color.White),
			Face: face,
			Dot:  fixed.P(bounds.Min.X+margin, y),
		}
		d.DrawString(line)
		y += lineH
	}

	return out, nil
}

// wrapText greedily packs words into lines no wider than maxWidth. A single
// word wider than maxWidth gets a line of its own.
func wrapText(face font.Face, text string, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	cur := words[0]
	for _, word := range words[1:] {
		joined := cur + " " + word
		if font.MeasureString(face, joined).Ceil() > maxWidth {
			lines = append(lines, cur)
			cur = word
			continue
		}
		cur = joined
	}
	return append(lines, cur)
}
