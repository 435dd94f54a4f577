package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	startQuality = 70
	qualityStep  = 5
	minQuality   = 5
	minEdgePx    = 50
)

// CompressedImage is a JPEG produced by CompressImage.
type CompressedImage struct {
	Data    []byte
	Width   int
	Height  int
	Quality int
}

// CompressImage decodes a jpeg, png or webp image of originalSize bytes and
// re-encodes it as JPEG aiming for targetBytes. When the source is over
// budget it is first downscaled by sqrt(target/original)*0.8 (never below
// 50px per edge), then the quality is stepped down from 70 until the output
// fits or the quality floor is reached. The result may still exceed the
// target.
func CompressImage(r io.Reader, originalSize, targetBytes int) (*CompressedImage, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if targetBytes > 0 && originalSize > targetBytes {
		scale := math.Sqrt(float64(targetBytes)/float64(originalSize)) * 0.8
		width = max(minEdgePx, int(float64(width)*scale))
		height = max(minEdgePx, int(float64(height)*scale))
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// JPEG has no alpha; paint transparent areas white.
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	quality := startQuality
	for {
		buf.Reset()
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		if targetBytes <= 0 || buf.Len() <= targetBytes || quality <= minQuality {
			break
		}
		quality -= qualityStep
	}

	return &CompressedImage{
		Data:    append([]byte(nil), buf.Bytes()...),
		Width:   width,
		Height:  height,
		Quality: quality,
	}, nil
}
