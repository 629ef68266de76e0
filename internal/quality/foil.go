package quality

import (
	"image"
	"math"
)

const foilBlockSize = 16

// foilScore estimates how much holographic foil interference the image
// carries. Foil layers show up as blocks of unusually high local
// contrast that can confuse the identification step. 100 means no
// interference detected; the score drops as the affected fraction of
// blocks grows, floored at 30.
func foilScore(gray *image.Gray) float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < foilBlockSize || height < foilBlockSize {
		return 100
	}

	blocksX := width / foilBlockSize
	blocksY := height / foilBlockSize
	total := blocksX * blocksY
	noisy := 0

	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			if blockStdDev(gray, bounds.Min.X+bx*foilBlockSize, bounds.Min.Y+by*foilBlockSize) > 60 {
				noisy++
			}
		}
	}

	frac := float64(noisy) / float64(total)
	return clamp(100-150*frac, 30, 100)
}

func blockStdDev(gray *image.Gray, x0, y0 int) float64 {
	var sum, sumSq float64
	n := float64(foilBlockSize * foilBlockSize)
	for y := y0; y < y0+foilBlockSize; y++ {
		for x := x0; x < x0+foilBlockSize; x++ {
			v := float64(gray.GrayAt(x, y).Y)
			sum += v
			sumSq += v * v
		}
	}
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}
