package quality

import (
	"image"
	"math"
	"sort"
)

// Edge magnitude threshold for the Sobel operator, and the smallest
// connected component worth treating as a contour.
const (
	sobelThreshold   = 50
	minComponentSize = 40
	contourMaxSide   = 400
)

// cardPresenceScore looks for a card-shaped contour: edge detection,
// connected components, convex hull, polygon approximation. A hull
// with at least four vertices covering 10-80% of the frame at a
// card-like aspect ratio scores highest. The result is floored at 30
// whenever any contour exists at all.
func cardPresenceScore(gray *image.Gray) float64 {
	small := decimate(gray, contourMaxSide)
	bounds := small.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return 30
	}

	edges := sobelEdges(small)
	components := connectedComponents(edges, width, height)
	if len(components) == 0 {
		return 30
	}

	imageArea := float64(width * height)
	best := 30.0
	for _, comp := range components {
		hull := convexHull(comp)
		poly := approximatePolygon(hull, 0.02*perimeter(hull))
		if len(poly) < 4 {
			continue
		}

		area := polygonArea(hull)
		ratio := area / imageArea
		if ratio <= 0.10 || ratio >= 0.80 {
			continue
		}

		aspect := boundingAspect(comp)
		if aspect < 1.2 || aspect > 2.0 {
			continue
		}

		score := math.Min(100, 150*ratio+25*(2.0-math.Abs(aspect-1.4)))
		if score > best {
			best = score
		}
	}
	return best
}

// sobelEdges returns a binary edge map of the grayscale image.
func sobelEdges(gray *image.Gray) []bool {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	edges := make([]bool, width*height)

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			gx := -1*int(gray.GrayAt(x-1, y-1).Y) + 1*int(gray.GrayAt(x+1, y-1).Y) +
				-2*int(gray.GrayAt(x-1, y).Y) + 2*int(gray.GrayAt(x+1, y).Y) +
				-1*int(gray.GrayAt(x-1, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)
			gy := -1*int(gray.GrayAt(x-1, y-1).Y) - 2*int(gray.GrayAt(x, y-1).Y) - 1*int(gray.GrayAt(x+1, y-1).Y) +
				1*int(gray.GrayAt(x-1, y+1).Y) + 2*int(gray.GrayAt(x, y+1).Y) + 1*int(gray.GrayAt(x+1, y+1).Y)

			if math.Sqrt(float64(gx*gx+gy*gy)) > sobelThreshold {
				edges[y*width+x] = true
			}
		}
	}
	return edges
}

// connectedComponents groups edge pixels with 8-connectivity, dropping
// components too small to be a card outline.
func connectedComponents(edges []bool, width, height int) [][]image.Point {
	visited := make([]bool, len(edges))
	var components [][]image.Point

	var stack []int
	for start, on := range edges {
		if !on || visited[start] {
			continue
		}

		var comp []image.Point
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			px, py := idx%width, idx/width
			comp = append(comp, image.Point{X: px, Y: py})

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := px+dx, py+dy
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					nidx := ny*width + nx
					if edges[nidx] && !visited[nidx] {
						visited[nidx] = true
						stack = append(stack, nidx)
					}
				}
			}
		}

		if len(comp) >= minComponentSize {
			components = append(components, comp)
		}
	}
	return components
}

// convexHull computes the hull of a point set with Andrew's monotone
// chain. Points are assumed non-empty; the result is in counter-
// clockwise order without the closing point repeated.
func convexHull(points []image.Point) []image.Point {
	if len(points) < 3 {
		return points
	}

	sorted := make([]image.Point, len(points))
	copy(sorted, points)
	sortPoints(sorted)

	var hull []image.Point
	// Lower hull
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// Upper hull
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// sortPoints orders by (X, Y). Components can span the whole frame on
// edge-dense textures, so this must stay O(n log n).
func sortPoints(pts []image.Point) {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
}

func cross(o, a, b image.Point) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// approximatePolygon reduces a closed polygon with the Douglas-Peucker
// algorithm at the given tolerance.
func approximatePolygon(poly []image.Point, epsilon float64) []image.Point {
	if len(poly) < 3 || epsilon <= 0 {
		return poly
	}
	closed := append(append([]image.Point{}, poly...), poly[0])
	reduced := douglasPeucker(closed, epsilon)
	if len(reduced) > 1 && reduced[0] == reduced[len(reduced)-1] {
		reduced = reduced[:len(reduced)-1]
	}
	return reduced
}

func douglasPeucker(pts []image.Point, epsilon float64) []image.Point {
	if len(pts) < 3 {
		return pts
	}

	maxDist := 0.0
	index := 0
	for i := 1; i < len(pts)-1; i++ {
		d := perpendicularDistance(pts[i], pts[0], pts[len(pts)-1])
		if d > maxDist {
			maxDist = d
			index = i
		}
	}

	if maxDist <= epsilon {
		return []image.Point{pts[0], pts[len(pts)-1]}
	}

	left := douglasPeucker(pts[:index+1], epsilon)
	right := douglasPeucker(pts[index:], epsilon)
	return append(left[:len(left)-1], right...)
}

func perpendicularDistance(p, a, b image.Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y))
	}
	return math.Abs(dy*float64(p.X)-dx*float64(p.Y)+float64(b.X)*float64(a.Y)-float64(b.Y)*float64(a.X)) / length
}

func perimeter(poly []image.Point) float64 {
	if len(poly) < 2 {
		return 0
	}
	total := 0.0
	for i := range poly {
		next := poly[(i+1)%len(poly)]
		total += math.Hypot(float64(next.X-poly[i].X), float64(next.Y-poly[i].Y))
	}
	return total
}

// polygonArea computes the shoelace area of a simple polygon.
func polygonArea(poly []image.Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	sum := 0
	for i := range poly {
		next := poly[(i+1)%len(poly)]
		sum += poly[i].X*next.Y - next.X*poly[i].Y
	}
	return math.Abs(float64(sum)) / 2
}

// boundingAspect is the long/short side ratio of the component's
// bounding rectangle, orientation-independent.
func boundingAspect(points []image.Point) float64 {
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	w, h := float64(maxX-minX+1), float64(maxY-minY+1)
	if w < h {
		w, h = h, w
	}
	if h == 0 {
		return 0
	}
	return w / h
}
