// Package attrib implements paintable per-vertex geometry attributes.
// An Attribute is a self-describing container that can change its storage
// type and tuple width in place while preserving existing per-vertex data,
// and supports incremental brush painting with min/max clamping and rate
// limiting.
package attrib

import (
	"math"
	"strconv"

	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// Type is the storage type of an attribute. Exactly one backing array is
// non-nil at a time; Bool shares the int backing with its range pinned to
// [0,1].
type Type int

const (
	TypeUndefined Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
)

func (t Type) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "undefined"
	}
}

// valid reports whether t is a concrete storage type.
func (t Type) valid() bool {
	return t > TypeUndefined && t <= TypeString
}

// Paint modes. PaintModeColour blends up to the first three tuple
// components into RGB; PaintModeComponent+i paints component i alone.
const (
	PaintModeColour    = 0
	PaintModeComponent = 1
)

// Tuple width bounds.
const (
	MinTupleSize = 1
	MaxTupleSize = 5
)

// DefaultBrushRate is the fraction of the min/max range a single stroke
// may move a value. Kept between zero and one.
const DefaultBrushRate = 0.2

// Type-specific defaults used when initializing or widening.
const (
	defaultIntPaintValue    = 1
	defaultIntMin           = 0
	defaultIntMax           = 10
	defaultFloatPaintValue  = 0.1
	defaultFloatMin         = 0.0
	defaultFloatMax         = 1.0
	defaultStringPaintValue = ""
)

// Color is one RGBA colour of the attribute's visualization.
type Color struct {
	R, G, B, A float32
}

// Attribute is a typed, tuple-sized per-vertex data container. The zero
// value is not usable; call New.
type Attribute struct {
	Name string

	// BrushRate limits how much of the min/max range a single paint
	// stroke may cover. Injected per session, never read from a global.
	BrushRate float64

	// PaintFirstVertex opts in to painting vertex 0. The stock brush has
	// always treated index 0 as out of range; flipping this changes
	// long-standing behavior, so it stays opt-in.
	PaintFirstVertex bool

	typ           Type
	originalOwner hapi.AttributeOwner
	tupleSize     int
	vertexCount   int
	paintMode     int

	intPaintValue []int
	intMin        int
	intMax        int
	intData       []int

	floatPaintValue []float64
	floatMin        float64
	floatMax        float64
	floatData       []float64

	stringPaintValue []string
	stringData       []string
}

// New returns a reset Attribute.
func New() *Attribute {
	a := &Attribute{}
	a.Reset()
	return a
}

// Reset returns the attribute to its undefined state, releasing all data.
func (a *Attribute) Reset() {
	a.Name = "NO_NAME"
	a.BrushRate = DefaultBrushRate

	a.typ = TypeUndefined
	a.originalOwner = hapi.OwnerVertex
	a.tupleSize = 1
	a.vertexCount = 0

	a.paintMode = PaintModeColour

	a.intPaintValue = nil
	a.intMin = defaultIntMin
	a.intMax = defaultIntMax
	a.intData = nil

	a.floatPaintValue = nil
	a.floatMin = defaultFloatMin
	a.floatMax = defaultFloatMax
	a.floatData = nil

	a.stringPaintValue = nil
	a.stringData = nil
}

// Init resets the attribute and allocates backing storage for the given
// type, tuple width and vertex count.
func (a *Attribute) Init(vertexCount int, name string, typ Type, tupleSize int) error {
	if tupleSize <= 0 {
		return hapi.InvalidArgument("attrib: tuple size %d out of range", tupleSize)
	}
	if !typ.valid() {
		return hapi.InvalidArgument("attrib: invalid attribute type %d", int(typ))
	}
	if vertexCount < 0 {
		return hapi.InvalidArgument("attrib: negative vertex count %d", vertexCount)
	}

	a.Reset()
	a.Name = name
	a.typ = typ
	a.tupleSize = tupleSize
	a.vertexCount = vertexCount

	switch typ {
	case TypeBool, TypeInt:
		a.intPaintValue = make([]int, tupleSize)
		a.intMin = defaultIntMin
		a.intMax = defaultIntMax
		a.intData = make([]int, vertexCount*tupleSize)
		for i := 0; i < tupleSize; i++ {
			if typ == TypeBool {
				a.intPaintValue[i] = 1
				a.intMin = 0
				a.intMax = 1
			} else {
				a.intPaintValue[i] = defaultIntPaintValue
			}
		}
	case TypeFloat:
		a.floatPaintValue = make([]float64, tupleSize)
		a.floatMin = defaultFloatMin
		a.floatMax = defaultFloatMax
		a.floatData = make([]float64, vertexCount*tupleSize)
		for i := 0; i < tupleSize; i++ {
			a.floatPaintValue[i] = defaultFloatPaintValue
		}
	case TypeString:
		a.stringPaintValue = make([]string, tupleSize)
		a.stringData = make([]string, vertexCount*tupleSize)
		for i := 0; i < tupleSize; i++ {
			a.stringPaintValue[i] = defaultStringPaintValue
		}
	}
	return nil
}

// Accessors. Data slices are returned live for bulk fills by the sync
// layer; everyone else should go through Paint/Fill.

func (a *Attribute) Type() Type                          { return a.typ }
func (a *Attribute) TupleSize() int                      { return a.tupleSize }
func (a *Attribute) VertexCount() int                    { return a.vertexCount }
func (a *Attribute) IntData() []int                      { return a.intData }
func (a *Attribute) FloatData() []float64                { return a.floatData }
func (a *Attribute) StringData() []string                { return a.stringData }
func (a *Attribute) IntPaintValue() []int                { return a.intPaintValue }
func (a *Attribute) FloatPaintValue() []float64          { return a.floatPaintValue }
func (a *Attribute) StringPaintValue() []string          { return a.stringPaintValue }
func (a *Attribute) IntRange() (int, int)                { return a.intMin, a.intMax }
func (a *Attribute) FloatRange() (float64, float64)      { return a.floatMin, a.floatMax }
func (a *Attribute) PaintMode() int                      { return a.paintMode }
func (a *Attribute) OriginalOwner() hapi.AttributeOwner  { return a.originalOwner }
func (a *Attribute) SetOriginalOwner(o hapi.AttributeOwner) { a.originalOwner = o }

// SetPaintMode clamps a component-specific paint mode so it never
// references a component beyond the current tuple width.
func (a *Attribute) SetPaintMode(mode int) {
	a.paintMode = min(mode, PaintModeComponent+a.tupleSize-1)
}

// SetIntMin keeps min at or below max.
func (a *Attribute) SetIntMin(v int) { a.intMin = min(v, a.intMax) }

// SetIntMax keeps max at or above min. Bool ranges stay pinned to [0,1].
func (a *Attribute) SetIntMax(v int) {
	if a.typ != TypeBool {
		a.intMax = max(v, a.intMin)
	}
}

// SetFloatMin keeps min at or below max.
func (a *Attribute) SetFloatMin(v float64) { a.floatMin = math.Min(v, a.floatMax) }

// SetFloatMax keeps max at or above min.
func (a *Attribute) SetFloatMax(v float64) { a.floatMax = math.Max(v, a.floatMin) }

// SetIntPaintValue replaces the brush value, clamping each component into
// the current range. The array length must match the tuple width.
func (a *Attribute) SetIntPaintValue(values []int) error {
	if len(values) != a.tupleSize {
		return hapi.InvalidArgument(
			"attrib %s: paint value length %d != tuple size %d", a.Name, len(values), a.tupleSize)
	}
	for i := 0; i < a.tupleSize; i++ {
		a.intPaintValue[i] = clampInt(values[i], a.intMin, a.intMax)
	}
	return nil
}

// SetIntPaintValueRaw replaces the brush value without range clamping.
// An out-of-range brush value force-sets painted vertices.
func (a *Attribute) SetIntPaintValueRaw(values []int) error {
	if len(values) != a.tupleSize {
		return hapi.InvalidArgument(
			"attrib %s: paint value length %d != tuple size %d", a.Name, len(values), a.tupleSize)
	}
	copy(a.intPaintValue, values)
	return nil
}

// SetFloatPaintValue replaces the brush value, clamping each component into
// the current range. The array length must match the tuple width.
func (a *Attribute) SetFloatPaintValue(values []float64) error {
	if len(values) != a.tupleSize {
		return hapi.InvalidArgument(
			"attrib %s: paint value length %d != tuple size %d", a.Name, len(values), a.tupleSize)
	}
	for i := 0; i < a.tupleSize; i++ {
		a.floatPaintValue[i] = clampFloat(values[i], a.floatMin, a.floatMax)
	}
	return nil
}

// SetFloatPaintValueRaw replaces the brush value without range clamping.
func (a *Attribute) SetFloatPaintValueRaw(values []float64) error {
	if len(values) != a.tupleSize {
		return hapi.InvalidArgument(
			"attrib %s: paint value length %d != tuple size %d", a.Name, len(values), a.tupleSize)
	}
	copy(a.floatPaintValue, values)
	return nil
}

// SetStringPaintValue replaces the brush value. The array length must match
// the tuple width.
func (a *Attribute) SetStringPaintValue(values []string) error {
	if len(values) != a.tupleSize {
		return hapi.InvalidArgument(
			"attrib %s: paint value length %d != tuple size %d", a.Name, len(values), a.tupleSize)
	}
	copy(a.stringPaintValue, values)
	return nil
}

// Info summarizes the attribute for the engine boundary. Errors on an
// undefined attribute.
func (a *Attribute) Info() (hapi.AttributeInfo, error) {
	if a.typ == TypeUndefined {
		return hapi.AttributeInfo{}, hapi.InvalidArgument("attrib %s: not defined", a.Name)
	}

	info := hapi.AttributeInfo{
		Name:      a.Name,
		Exists:    true,
		Owner:     hapi.OwnerVertex,
		Count:     a.vertexCount,
		TupleSize: a.tupleSize,
	}
	switch a.typ {
	case TypeBool, TypeInt:
		info.Storage = hapi.StorageTypeInt
	case TypeFloat:
		info.Storage = hapi.StorageTypeFloat
	case TypeString:
		info.Storage = hapi.StorageTypeString
	}
	return info, nil
}

// SetType converts the attribute to a new storage type in place. Both the
// brush value and the full per-vertex array are converted: numeric
// widenings are plain casts, float to int/bool truncates, anything to
// string stringifies, and string to numeric parses with a type default
// substituted on parse failure. No-op on an undefined attribute, an
// unchanged type, or an out-of-range type. The previous backing array is
// released; no array ever holds data of two types at once.
func (a *Attribute) SetType(newType Type) {
	oldType := a.typ
	if oldType == TypeUndefined {
		return
	}
	if oldType == newType || !newType.valid() {
		return
	}

	switch oldType {
	case TypeBool, TypeInt:
		switch newType {
		case TypeBool, TypeInt:
			// Int and bool share the int backing. Moving to bool pins
			// the range and collapses values; moving to int keeps both
			// the data and the range as they were.
			if newType == TypeBool {
				for i := range a.intPaintValue {
					a.intPaintValue[i] = boolify(a.intPaintValue[i])
				}
				for i := range a.intData {
					a.intData[i] = boolify(a.intData[i])
				}
				a.intMin = 0
				a.intMax = 1
			}
		case TypeFloat:
			a.floatPaintValue = make([]float64, a.tupleSize)
			for i := 0; i < a.tupleSize; i++ {
				a.floatPaintValue[i] = float64(a.intPaintValue[i])
			}
			a.floatMin = float64(a.intMin)
			a.floatMax = float64(a.intMax)
			a.intPaintValue = nil

			a.floatData = make([]float64, len(a.intData))
			for i := range a.intData {
				a.floatData[i] = float64(a.intData[i])
			}
			a.intData = nil
		case TypeString:
			a.stringPaintValue = make([]string, a.tupleSize)
			for i := 0; i < a.tupleSize; i++ {
				a.stringPaintValue[i] = strconv.Itoa(a.intPaintValue[i])
			}
			a.intPaintValue = nil

			a.stringData = make([]string, len(a.intData))
			for i := range a.intData {
				a.stringData[i] = strconv.Itoa(a.intData[i])
			}
			a.intData = nil
		}

	case TypeFloat:
		switch newType {
		case TypeBool, TypeInt:
			a.intPaintValue = make([]int, a.tupleSize)
			for i := 0; i < a.tupleSize; i++ {
				if newType == TypeBool {
					a.intPaintValue[i] = boolify(int(a.floatPaintValue[i]))
					a.intMin = 0
					a.intMax = 1
				} else {
					a.intPaintValue[i] = int(a.floatPaintValue[i])
					a.intMin = int(a.floatMin)
					a.intMax = int(a.floatMax)
				}
			}
			a.floatPaintValue = nil

			a.intData = make([]int, len(a.floatData))
			for i := range a.floatData {
				if newType == TypeBool {
					a.intData[i] = boolify(int(a.floatData[i]))
				} else {
					a.intData[i] = int(a.floatData[i])
				}
			}
			a.floatData = nil
		case TypeString:
			a.stringPaintValue = make([]string, a.tupleSize)
			for i := 0; i < a.tupleSize; i++ {
				a.stringPaintValue[i] = formatFloat(a.floatPaintValue[i])
			}
			a.floatPaintValue = nil

			a.stringData = make([]string, len(a.floatData))
			for i := range a.floatData {
				a.stringData[i] = formatFloat(a.floatData[i])
			}
			a.floatData = nil
		}

	case TypeString:
		switch newType {
		case TypeBool, TypeInt:
			a.intPaintValue = make([]int, a.tupleSize)
			a.intMin = defaultIntMin
			a.intMax = defaultIntMax
			for i := 0; i < a.tupleSize; i++ {
				v, err := strconv.Atoi(a.stringPaintValue[i])
				if err != nil {
					v = defaultIntPaintValue
				}
				if newType == TypeBool {
					a.intPaintValue[i] = boolify(v)
					a.intMin = 0
					a.intMax = 1
				} else {
					a.intPaintValue[i] = v
				}
			}
			a.stringPaintValue = nil

			a.intData = make([]int, len(a.stringData))
			for i := range a.stringData {
				v, err := strconv.Atoi(a.stringData[i])
				if err != nil {
					v = 0
				}
				if newType == TypeBool {
					a.intData[i] = boolify(v)
				} else {
					a.intData[i] = v
				}
			}
			a.stringData = nil
		case TypeFloat:
			a.floatPaintValue = make([]float64, a.tupleSize)
			a.floatMin = defaultFloatMin
			a.floatMax = defaultFloatMax
			for i := 0; i < a.tupleSize; i++ {
				v, err := strconv.ParseFloat(a.stringPaintValue[i], 64)
				if err != nil {
					v = defaultIntPaintValue
				}
				a.floatPaintValue[i] = v
			}
			a.stringPaintValue = nil

			a.floatData = make([]float64, len(a.stringData))
			for i := range a.stringData {
				v, err := strconv.ParseFloat(a.stringData[i], 64)
				if err != nil {
					v = 0
				}
				a.floatData[i] = v
			}
			a.stringData = nil
		}
	}

	a.typ = newType
}

// SetTupleSize resizes the tuple width in place. The overlapping prefix of
// components is copied per vertex; added components get the type default
// (bool on, int/float/string defaults). A component-specific paint mode is
// clamped so it never references a component beyond the new width. No-op on
// an undefined attribute, an unchanged width, or a width outside [1,5].
func (a *Attribute) SetTupleSize(newSize int) {
	if a.typ == TypeUndefined {
		return
	}
	if a.tupleSize == newSize || newSize < MinTupleSize || newSize > MaxTupleSize {
		return
	}

	minSize := min(a.tupleSize, newSize)

	switch a.typ {
	case TypeBool, TypeInt:
		newPaint := make([]int, newSize)
		newData := make([]int, a.vertexCount*newSize)
		copy(newPaint, a.intPaintValue[:minSize])
		for i := minSize; i < newSize; i++ {
			if a.typ == TypeBool {
				newPaint[i] = 1
			} else {
				newPaint[i] = defaultIntPaintValue
			}
		}
		for v := 0; v < a.vertexCount; v++ {
			copy(newData[v*newSize:v*newSize+minSize], a.intData[v*a.tupleSize:v*a.tupleSize+minSize])
		}
		a.intPaintValue = newPaint
		a.intData = newData

	case TypeFloat:
		newPaint := make([]float64, newSize)
		newData := make([]float64, a.vertexCount*newSize)
		copy(newPaint, a.floatPaintValue[:minSize])
		for i := minSize; i < newSize; i++ {
			newPaint[i] = defaultFloatPaintValue
		}
		for v := 0; v < a.vertexCount; v++ {
			copy(newData[v*newSize:v*newSize+minSize], a.floatData[v*a.tupleSize:v*a.tupleSize+minSize])
		}
		a.floatPaintValue = newPaint
		a.floatData = newData

	case TypeString:
		newPaint := make([]string, newSize)
		newData := make([]string, a.vertexCount*newSize)
		copy(newPaint, a.stringPaintValue[:minSize])
		for i := minSize; i < newSize; i++ {
			newPaint[i] = defaultStringPaintValue
		}
		for v := 0; v < a.vertexCount; v++ {
			copy(newData[v*newSize:v*newSize+minSize], a.stringData[v*a.tupleSize:v*a.tupleSize+minSize])
		}
		a.stringPaintValue = newPaint
		a.stringData = newData
	}

	a.tupleSize = newSize
	a.paintMode = min(a.paintMode, PaintModeComponent+newSize-1)
}

func boolify(v int) int {
	if v > 0 {
		return 1
	}
	return 0
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// inverseLerp maps v linearly from [lo,hi] to [0,1], clamped.
func inverseLerp(lo, hi, v float64) float32 {
	if hi <= lo {
		return 0
	}
	return float32(clampFloat((v-lo)/(hi-lo), 0, 1))
}
