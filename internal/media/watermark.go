package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// shadowOffsets are the four offsets the shadow text is drawn at before
// the white text goes on top.
var shadowOffsets = [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// Watermark draws text in the bottom-right corner of img: a dark shadow
// at four offsets, then white on top. Font size and margin scale with the
// image height.
func Watermark(img image.Image, text string) (image.Image, error) {
	bounds := img.Bounds()
	h := bounds.Dy()

	size := float64(h) / 25
	if size < 12 {
		size = 12
	}
	margin := h / 100
	if margin < 8 {
		margin = 8
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

	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	x := bounds.Max.X - width - margin
	y := bounds.Max.Y - margin - metrics.Descent.Ceil()

	drawString := func(x, y int, c color.Color) {
		d := &font.Drawer{
			Dst:  out,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.P(x, y),
		}
		d.DrawString(text)
	}

	shadow := color.RGBA{0, 0, 0, 200}
	for _, off := range shadowOffsets {
		drawString(x+off[0], y+off[1], shadow)
	}
	drawString(x, y, color.White)

	return out, nil
}

// ScaleDown resizes img to maxWidth when it is wider, preserving aspect
// ratio. Smaller images pass through untouched.
func ScaleDown(img image.Image, maxWidth int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}

	newH := h * maxWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

// EncodeJPEG renders img as JPEG at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
