package projection

import (
	"strconv"
	"strings"
)

// Point is a screen-space position in pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Op is an SVG path operator
type Op string

const (
	MoveTo    Op = "M"
	LineTo    Op = "L"
	CurveTo   Op = "C"
	ClosePath Op = "Z"
)

// Command is one path operation. CurveTo carries two control points and the
// end point; MoveTo and LineTo carry one point; ClosePath none.
type Command struct {
	Op     Op      `json:"op"`
	Points []Point `json:"points,omitempty"`
}

// Path is an ordered list of drawing commands
type Path []Command

func (p Path) moveTo(pt Point) Path {
	return append(p, Command{Op: MoveTo, Points: []Point{pt}})
}

func (p Path) lineTo(pt Point) Path {
	return append(p, Command{Op: LineTo, Points: []Point{pt}})
}

func (p Path) curveTo(c1, c2, end Point) Path {
	return append(p, Command{Op: CurveTo, Points: []Point{c1, c2, end}})
}

func (p Path) close() Path {
	return append(p, Command{Op: ClosePath})
}

// SVG renders the path as an SVG "d" attribute
func (p Path) SVG() string {
	var b strings.Builder
	for _, c := range p {
		b.WriteString(string(c.Op))
		for i, pt := range c.Points {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(formatCoord(pt.X))
			b.WriteByte(',')
			b.WriteString(formatCoord(pt.Y))
		}
	}
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// cardinalTension 0 gives the Catmull-Rom-like default curve
const cardinalK = 1.0 / 6.0

// cardinal threads a cardinal spline through pts. The first segment's first
// control point and the last segment's second control point are pinned to
// their end points. Two points produce a straight line.
func cardinal(pts []Point) Path {
	n := len(pts)
	if n == 0 {
		return nil
	}

	path := Path{}.moveTo(pts[0])
	if n == 1 {
		return path
	}
	if n == 2 {
		return path.lineTo(pts[1])
	}

	for i := 0; i < n-1; i++ {
		a, b := pts[i], pts[i+1]

		prev := b
		if i > 0 {
			prev = pts[i-1]
		}
		next := a
		if i+2 < n {
			next = pts[i+2]
		}

		c1 := Point{X: a.X + cardinalK*(b.X-prev.X), Y: a.Y + cardinalK*(b.Y-prev.Y)}
		c2 := Point{X: b.X + cardinalK*(a.X-next.X), Y: b.Y + cardinalK*(a.Y-next.Y)}
		path = path.curveTo(c1, c2, b)
	}

	return path
}

// area closes a top curve down to the baseline
func area(pts []Point, baseline float64) Path {
	if len(pts) == 0 {
		return nil
	}
	path := cardinal(pts)
	path = path.lineTo(Point{X: pts[len(pts)-1].X, Y: baseline})
	path = path.lineTo(Point{X: pts[0].X, Y: baseline})
	return path.close()
}

// triangle is the mountain symbol with its apex at (x, y)
func triangle(x, y float64) Path {
	return Path{}.
		moveTo(Point{X: x, Y: y}).
		lineTo(Point{X: x - 8, Y: y + 15}).
		lineTo(Point{X: x + 8, Y: y + 15}).
		close()
}

// Flatten approximates the path by a polyline, sampling each cubic segment
// at steps evenly spaced parameters. ClosePath is dropped.
func (p Path) Flatten(steps int) []Point {
	if steps < 1 {
		steps = 1
	}
	var out []Point
	var cur Point
	for _, c := range p {
		switch c.Op {
		case MoveTo, LineTo:
			cur = c.Points[0]
			out = append(out, cur)
		case CurveTo:
			c1, c2, end := c.Points[0], c.Points[1], c.Points[2]
			for i := 1; i <= steps; i++ {
				out = append(out, bezier(cur, c1, c2, end, float64(i)/float64(steps)))
			}
			cur = end
		}
	}
	return out
}

func bezier(p0, p1, p2, p3 Point, t float64) Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
