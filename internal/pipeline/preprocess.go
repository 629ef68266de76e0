package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	apperrors "github.com/Oustad/kortly-pokemon-api-sub001/internal/errors"
	"github.com/Oustad/kortly-pokemon-api-sub001/internal/quality"
)

// preprocess decodes, resizes, enhances and re-encodes an image
// according to the tier config. Output is always RGB JPEG; any alpha
// channel is composited over white first since JPEG has no
// transparency.
func preprocess(data []byte, cfg TierConfig) ([]byte, error) {
	img, _, err := quality.Decode(data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() > cfg.MaxWidth || bounds.Dy() > cfg.MaxHeight {
		img = imaging.Fit(img, cfg.MaxWidth, cfg.MaxHeight, imaging.Lanczos)
	}

	img = flattenAlpha(img)

	if cfg.Enhance {
		img = imaging.AdjustContrast(img, 10)
	}
	if cfg.Sharpen {
		img = imaging.Sharpen(img, 0.8)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(cfg.JPEGQuality)); err != nil {
		return nil, apperrors.NewProcessingError("failed to encode preprocessed image", err)
	}
	return buf.Bytes(), nil
}

// flattenAlpha composites the image over a white background when it
// carries an alpha channel.
func flattenAlpha(img image.Image) image.Image {
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return img
	}
	bounds := img.Bounds()
	flat := image.NewRGBA(bounds)
	draw.Draw(flat, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, bounds, img, bounds.Min, draw.Over)
	return flat
}
