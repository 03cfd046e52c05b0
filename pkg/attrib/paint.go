package attrib

import "math"

// componentSpan returns the range of tuple components the current paint
// mode covers: the whole tuple in colour mode, a single component
// otherwise.
func (a *Attribute) componentSpan() (start, end int) {
	if a.paintMode >= PaintModeComponent {
		c := a.paintMode - PaintModeComponent
		return c, c + 1
	}
	return 0, a.tupleSize
}

// vertexInRange applies the brush bounds check. The stock brush excludes
// vertex 0 unless PaintFirstVertex is set.
func (a *Attribute) vertexInRange(vertexIndex int) bool {
	if a.PaintFirstVertex {
		return vertexIndex >= 0 && vertexIndex < a.vertexCount
	}
	return vertexIndex > 0 && vertexIndex < a.vertexCount
}

// Paint applies one brush stroke to a single vertex. Out-of-range vertex
// indices are silently ignored.
//
// Bool components are nudged by the stroke direction: the brush value is
// added with the sign of paintFactor. Numeric components move toward the
// (possibly inverted) brush value by a rate-limited step — the maximum
// single-stroke movement is the min/max range scaled by BrushRate — unless
// the brush value lies outside [min,max], in which case the stored value is
// force-set to it. String components are overwritten outright; paintFactor
// is irrelevant for strings.
func (a *Attribute) Paint(vertexIndex int, paintFactor float64, inverse bool) {
	if !a.vertexInRange(vertexIndex) {
		return
	}

	start, end := a.componentSpan()
	for i := start; i < end; i++ {
		at := vertexIndex*a.tupleSize + i

		switch a.typ {
		case TypeBool:
			a.intData[at] += int(sign(paintFactor)) * a.intPaintValue[i]

		case TypeInt:
			if a.intPaintValue[i] < a.intMin || a.intPaintValue[i] > a.intMax {
				a.intData[at] = a.intPaintValue[i]
				continue
			}
			target := a.intPaintValue[i]
			if inverse {
				target = a.intMax - a.intPaintValue[i]
			}

			// Bring the current value back into the min/max range first.
			a.intData[at] = clampInt(a.intData[at], a.intMin, a.intMax)

			distance := target - a.intData[at]
			if distance == 0 {
				continue
			}
			absDistance := abs(distance)

			maxPaintAmount := int(math.Ceil(float64(a.intMax-a.intMin) * a.BrushRate))
			clampedDistance := min(absDistance, maxPaintAmount)
			paintAmount := int(math.Ceil(paintFactor * float64(clampedDistance)))
			paintAmount = min(absDistance, paintAmount)
			a.intData[at] += int(sign(float64(distance))) * paintAmount

		case TypeFloat:
			if a.floatPaintValue[i] < a.floatMin || a.floatPaintValue[i] > a.floatMax {
				a.floatData[at] = a.floatPaintValue[i]
				continue
			}
			target := a.floatPaintValue[i]
			if inverse {
				target = a.floatMax - a.floatPaintValue[i]
			}

			// Bring the current value back into the min/max range first.
			a.floatData[at] = clampFloat(a.floatData[at], a.floatMin, a.floatMax)

			distance := target - a.floatData[at]
			maxPaintAmount := (a.floatMax - a.floatMin) * a.BrushRate
			clampedDistance := sign(distance) * math.Min(math.Abs(distance), math.Abs(maxPaintAmount))
			a.floatData[at] += paintFactor * clampedDistance

		case TypeString:
			a.stringData[at] = a.stringPaintValue[i]
		}
	}
}

// Fill sets every vertex's every active component to the brush value.
func (a *Attribute) Fill() {
	if a.vertexCount == 0 {
		return
	}
	switch a.typ {
	case TypeBool, TypeInt:
		for v := 0; v < a.vertexCount; v++ {
			for j := 0; j < a.tupleSize; j++ {
				a.intData[v*a.tupleSize+j] = a.intPaintValue[j]
			}
		}
	case TypeFloat:
		for v := 0; v < a.vertexCount; v++ {
			for j := 0; j < a.tupleSize; j++ {
				a.floatData[v*a.tupleSize+j] = a.floatPaintValue[j]
			}
		}
	case TypeString:
		for v := 0; v < a.vertexCount; v++ {
			for j := 0; j < a.tupleSize; j++ {
				a.stringData[v*a.tupleSize+j] = a.stringPaintValue[j]
			}
		}
	}
}

// Fit recomputes min/max as the true extremes of the stored data. Numeric
// types only; a no-op for bool and string.
func (a *Attribute) Fit() {
	if a.vertexCount == 0 {
		return
	}
	switch a.typ {
	case TypeInt:
		lo, hi := a.intData[0], a.intData[0]
		for _, v := range a.intData {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		a.intMin, a.intMax = lo, hi
	case TypeFloat:
		lo, hi := a.floatData[0], a.floatData[0]
		for _, v := range a.floatData {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		a.floatMin, a.floatMax = lo, hi
	}
}

// ColorRepresentation produces one RGBA colour per vertex for
// visualization. In colour mode the first three tuple components map to
// R/G/B, normalized against [min,max] for numeric types or tested for
// equality with the brush value for strings. In single-component mode the
// selected component's normalized value is broadcast to all three
// channels. Alpha is always 1. Returns nil on an undefined attribute.
func (a *Attribute) ColorRepresentation() []Color {
	if a.typ == TypeUndefined {
		return nil
	}

	colors := make([]Color, a.vertexCount)

	if a.paintMode == PaintModeColour {
		n := min(3, a.tupleSize)
		for v := 0; v < a.vertexCount; v++ {
			colors[v] = Color{R: 1, G: 1, B: 1, A: 1}
			for j := 0; j < n; j++ {
				setColorChannel(&colors[v], j, a.channelValue(v, j))
			}
		}
		return colors
	}

	component := a.paintMode - PaintModeComponent
	for v := 0; v < a.vertexCount; v++ {
		colors[v] = Color{R: 1, G: 1, B: 1, A: 1}
		value := a.channelValue(v, component)
		for j := 0; j < 3; j++ {
			setColorChannel(&colors[v], j, value)
		}
	}
	return colors
}

// channelValue normalizes one stored component to [0,1].
func (a *Attribute) channelValue(vertex, component int) float32 {
	at := vertex*a.tupleSize + component
	switch a.typ {
	case TypeBool, TypeInt:
		return inverseLerp(float64(a.intMin), float64(a.intMax), float64(a.intData[at]))
	case TypeFloat:
		return inverseLerp(a.floatMin, a.floatMax, a.floatData[at])
	case TypeString:
		if a.stringData[at] == a.stringPaintValue[component] {
			return 1
		}
		return 0
	}
	return 0
}

func setColorChannel(c *Color, channel int, v float32) {
	switch channel {
	case 0:
		c.R = v
	case 1:
		c.G = v
	case 2:
		c.B = v
	}
}

// IntPointValues collapses per-vertex int data back to per-point data
// through the part's vertex-to-point index list.
func (a *Attribute) IntPointValues(pointCount int, vertexList []int) []int {
	pointValues := make([]int, pointCount*a.tupleSize)
	for i := range vertexList {
		for t := 0; t < a.tupleSize; t++ {
			pointValues[vertexList[i]*a.tupleSize+t] = a.intData[i*a.tupleSize+t]
		}
	}
	return pointValues
}

// FloatPointValues collapses per-vertex float data back to per-point data
// through the part's vertex-to-point index list.
func (a *Attribute) FloatPointValues(pointCount int, vertexList []int) []float64 {
	pointValues := make([]float64, pointCount*a.tupleSize)
	for i := range vertexList {
		for t := 0; t < a.tupleSize; t++ {
			pointValues[vertexList[i]*a.tupleSize+t] = a.floatData[i*a.tupleSize+t]
		}
	}
	return pointValues
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
