package quality

import (
	"bytes"
	"image"
	"image/draw"

	// Register the conventional codecs plus the camera-adjacent
	// containers so Decode tolerates whatever phones upload.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	apperrors "github.com/Oustad/kortly-pokemon-api-sub001/internal/errors"
)

// Decode parses arbitrary image bytes using every registered codec.
// It returns the decoded image and the format name, or a typed decode
// error when no codec accepts the data.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", apperrors.NewImageDecodeError("unable to decode image data", err)
	}
	return img, format, nil
}

// toGray converts any decoded image into an 8-bit grayscale buffer.
func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

// decimate returns a nearest-neighbor downsample of gray so the larger
// side is at most maxSide. Contour work does not need full resolution.
func decimate(gray *image.Gray, maxSide int) *image.Gray {
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxSide {
		return gray
	}
	step := (longest + maxSide - 1) / maxSide
	outW, outH := (w+step-1)/step, (h+step-1)/step
	out := image.NewGray(image.Rect(0, 0, outW, outH))
	for y := 0; y < outH; y++ {
		srcY := bounds.Min.Y + y*step
		for x := 0; x < outW; x++ {
			out.SetGray(x, y, gray.GrayAt(bounds.Min.X+x*step, srcY))
		}
	}
	return out
}
