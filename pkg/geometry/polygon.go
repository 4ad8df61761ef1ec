package geometry

// ContainsPoint reports whether p lies inside the polygon using the
// even-odd ray casting rule. Points exactly on an edge may land on
// either side; lasso selection does not need edge-exact results.
func ContainsPoint(polygon []Point2D, p Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		pi, pj := polygon[i], polygon[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			crossX := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < crossX {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// PolygonBounds returns the bounding box of the polygon vertices.
// The second result is false for an empty vertex list.
func PolygonBounds(polygon []Point2D) (BBox, bool) {
	if len(polygon) == 0 {
		return BBox{}, false
	}
	box := NewBBox(polygon[0])
	for _, p := range polygon[1:] {
		box = box.Extend(p)
	}
	return box, true
}
