package attrib

import "github.com/otl-tools/otlbridge/pkg/hapi"

// Preset names a stock attribute layout.
type Preset int

const (
	PresetColor Preset = iota
	PresetUV
	PresetNormal
	PresetBool
	PresetInt
	PresetFloat
	PresetString
)

// Stock attribute names and widths.
const (
	AttribNameColor  = "Cd"
	AttribNameUV     = "uv"
	AttribNameNormal = "N"

	colorVectorSize  = 4
	uvVectorSize     = 2
	normalVectorSize = 3
)

// InitPreset initializes the attribute with one of the stock layouts.
func (a *Attribute) InitPreset(vertexCount int, preset Preset) error {
	switch preset {
	case PresetColor:
		if err := a.Init(vertexCount, AttribNameColor, TypeFloat, colorVectorSize); err != nil {
			return err
		}
		// Alpha starts fully opaque.
		a.floatPaintValue[colorVectorSize-1] = 1.0
		for v := 0; v < vertexCount; v++ {
			a.floatData[v*colorVectorSize+colorVectorSize-1] = 1.0
		}
		return nil
	case PresetUV:
		return a.Init(vertexCount, AttribNameUV, TypeFloat, uvVectorSize)
	case PresetNormal:
		return a.Init(vertexCount, AttribNameNormal, TypeFloat, normalVectorSize)
	case PresetBool:
		return a.Init(vertexCount, "bool_attribute", TypeBool, 1)
	case PresetInt:
		return a.Init(vertexCount, "int_attribute", TypeInt, 1)
	case PresetFloat:
		return a.Init(vertexCount, "float_attribute", TypeFloat, 3)
	case PresetString:
		return a.Init(vertexCount, "string_attribute", TypeString, 1)
	default:
		return hapi.InvalidArgument("attrib: invalid preset %d", int(preset))
	}
}

// TypeForStorage maps an engine storage type onto the attribute type used
// to mirror it locally.
func TypeForStorage(s hapi.StorageType) Type {
	switch s {
	case hapi.StorageTypeInt:
		return TypeInt
	case hapi.StorageTypeFloat:
		return TypeFloat
	case hapi.StorageTypeString:
		return TypeString
	default:
		return TypeUndefined
	}
}
