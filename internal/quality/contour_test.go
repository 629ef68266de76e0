package quality

import (
	"image"
	"image/color"
	"testing"
	"time"
)

func TestConvexHull_Square(t *testing.T) {
	points := []image.Point{
		{0, 0}, {10, 0}, {10, 10}, {0, 10},
		{5, 5}, {3, 7}, // interior points drop out
	}

	hull := convexHull(points)
	if len(hull) != 4 {
		t.Fatalf("Expected 4 hull vertices, got %d: %v", len(hull), hull)
	}
}

func TestPolygonArea(t *testing.T) {
	square := []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	if got := polygonArea(square); got != 100 {
		t.Errorf("Expected area 100, got %f", got)
	}

	triangle := []image.Point{{0, 0}, {10, 0}, {0, 10}}
	if got := polygonArea(triangle); got != 50 {
		t.Errorf("Expected area 50, got %f", got)
	}
}

func TestBoundingAspect(t *testing.T) {
	// 10x14 bounding box, card-like ratio regardless of orientation
	portrait := []image.Point{{0, 0}, {9, 13}}
	landscape := []image.Point{{0, 0}, {13, 9}}

	if got := boundingAspect(portrait); got != 1.4 {
		t.Errorf("Expected aspect 1.4 for portrait box, got %f", got)
	}
	if got := boundingAspect(landscape); got != 1.4 {
		t.Errorf("Expected aspect 1.4 for landscape box, got %f", got)
	}
}

func TestApproximatePolygon_ReducesCollinearPoints(t *testing.T) {
	// Rectangle outline with redundant midpoints on each edge
	poly := []image.Point{
		{0, 0}, {5, 0}, {10, 0},
		{10, 7}, {10, 14},
		{5, 14}, {0, 14},
		{0, 7},
	}

	reduced := approximatePolygon(poly, 1.0)
	if len(reduced) < 4 || len(reduced) >= len(poly) {
		t.Errorf("Expected reduction to roughly 4 corners, got %d vertices: %v", len(reduced), reduced)
	}
}

func TestCardPresenceScore_EdgeDenseTexture(t *testing.T) {
	// Width-2 vertical stripes make every interior pixel a Sobel edge,
	// collapsing the frame into one huge connected component. The hull
	// sort must stay O(n log n) or this takes seconds instead of
	// milliseconds.
	width, height := 400, 300
	gray := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(80)
			if (x/2)%2 == 0 {
				v = 200
			}
			gray.SetGray(x, y, color.Gray{Y: v})
		}
	}

	start := time.Now()
	score := cardPresenceScore(gray)
	elapsed := time.Since(start)

	if score != 30 {
		t.Errorf("Expected floor score 30 for a stripe texture, got %f", score)
	}
	if elapsed > 2*time.Second {
		t.Errorf("Assessment took %s on an edge-dense frame, expected milliseconds", elapsed)
	}
}

func TestConnectedComponents_SplitsDistantBlobs(t *testing.T) {
	width, height := 100, 100
	edges := make([]bool, width*height)
	// Two 8x8 blobs far apart
	for y := 10; y < 18; y++ {
		for x := 10; x < 18; x++ {
			edges[y*width+x] = true
		}
	}
	for y := 70; y < 78; y++ {
		for x := 70; x < 78; x++ {
			edges[y*width+x] = true
		}
	}

	components := connectedComponents(edges, width, height)
	if len(components) != 2 {
		t.Fatalf("Expected 2 components, got %d", len(components))
	}
	for i, comp := range components {
		if len(comp) != 64 {
			t.Errorf("Component %d: expected 64 pixels, got %d", i, len(comp))
		}
	}
}
