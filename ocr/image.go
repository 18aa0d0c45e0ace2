package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"ai_quick_actions/generator"
)

// LoadImage reads a capture for the vision model. Images larger than
// maxDim on either side are scaled down and re-encoded as PNG; smaller
// ones are sent as they are. maxDim <= 0 disables scaling.
func LoadImage(path string, maxDim int) (generator.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return generator.Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return generator.Image{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if maxDim <= 0 || (cfg.Width <= maxDim && cfg.Height <= maxDim) {
		return generator.Image{MIMEType: "image/" + format, Data: data}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return generator.Image{}, fmt.Errorf("failed to decode image: %w", err)
	}
	scaled := scaleToFit(src, maxDim)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return generator.Image{}, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return generator.Image{MIMEType: "image/png", Data: buf.Bytes()}, nil
}

// scaleToFit keeps the aspect ratio; it never upscales.
func scaleToFit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	ratio := float64(maxDim) / float64(w)
	if rh := float64(maxDim) / float64(h); rh < ratio {
		ratio = rh
	}
	if ratio >= 1 {
		return img
	}
	newW := max(1, int(float64(w)*ratio))
	newH := max(1, int(float64(h)*ratio))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
