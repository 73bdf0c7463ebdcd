package blogsite

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	placeholderWidth  = 1200
	placeholderHeight = 630
	jpegQuality       = 80
)

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="400" viewBox="0 0 400 400">
<rect width="400" height="400" fill="#e5e7eb"/>
<circle cx="200" cy="160" r="70" fill="#9ca3af"/>
<path d="M70 360c0-72 58-120 130-120s130 48 130 120z" fill="#9ca3af"/>
</svg>
`

// EnsurePlaceholders writes placeholder.jpg and placeholder.svg into dir
// unless they already exist, so the fallback image paths always resolve.
func EnsurePlaceholders(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	var err error
	err = multierr.Append(err, writeIfMissing(filepath.Join(dir, "placeholder.jpg"), PlaceholderJPEG))
	err = multierr.Append(err, writeIfMissing(filepath.Join(dir, "placeholder.svg"), func() ([]byte, error) {
		return []byte(placeholderSVG), nil
	}))
	return err
}

func writeIfMissing(path string, gen func() ([]byte, error)) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	data, err := gen()
	if err != nil {
		return fmt.Errorf("generate %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

// PlaceholderJPEG renders the default featured image: a soft gradient
// upscaled to social card size with a small caption.
func PlaceholderJPEG() ([]byte, error) {
	// Draw a tiny gradient and let CatmullRom smooth it out on upscale.
	small := image.NewRGBA(image.Rect(0, 0, 4, 2))
	top := color.RGBA{R: 0x63, G: 0x66, B: 0xf1, A: 0xff}
	bottom := color.RGBA{R: 0xa8, G: 0x55, B: 0xf7, A: 0xff}
	for x := 0; x < 4; x++ {
		small.Set(x, 0, blend(top, bottom, float64(x)/6))
		small.Set(x, 1, blend(top, bottom, 0.5+float64(x)/6))
	}

	dst := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), small, small.Bounds(), draw.Src, nil)

	caption := "No image"
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}
	w := d.MeasureString(caption).Round()
	d.Dot = fixed.P((placeholderWidth-w)/2, placeholderHeight/2)
	d.DrawString(caption)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func blend(a, b color.RGBA, t float64) color.RGBA {
	if t > 1 {
		t = 1
	}
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t) }
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}
