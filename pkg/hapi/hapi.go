// Package hapi defines the boundary to the procedural cook engine.
// Implementations (native, memengine) provide asset loading, cooking and
// geometry/attribute fetches behind the Engine interface. Every call is
// blocking and returns a Result code; callers convert non-success codes
// to errors at the call site.
package hapi

// Typed ids handed out by the engine. All are engine-scoped, never reused
// within a session.
type (
	LibraryID int
	AssetID   int
	NodeID    int
)

// Result is the status code returned by every engine call.
type Result int

const (
	ResultSuccess Result = iota
	ResultFailure
	ResultInvalidArgument
	ResultCantLoadFile
	ResultNotInitialized
	ResultUserCancelled
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultFailure:
		return "failure"
	case ResultInvalidArgument:
		return "invalid argument"
	case ResultCantLoadFile:
		return "can't load file"
	case ResultNotInitialized:
		return "not initialized"
	case ResultUserCancelled:
		return "user cancelled"
	default:
		return "unknown result"
	}
}

// ParmType enumerates the parameter kinds the engine emits.
type ParmType int

const (
	ParmTypeInt ParmType = iota
	ParmTypeFloat
	ParmTypeString
	ParmTypeToggle
	ParmTypeColour
	ParmTypeFile
	ParmTypeFolder
	ParmTypeFolderList
	ParmTypeSeparator
)

func (t ParmType) String() string {
	switch t {
	case ParmTypeInt:
		return "int"
	case ParmTypeFloat:
		return "float"
	case ParmTypeString:
		return "string"
	case ParmTypeToggle:
		return "toggle"
	case ParmTypeColour:
		return "colour"
	case ParmTypeFile:
		return "file"
	case ParmTypeFolder:
		return "folder"
	case ParmTypeFolderList:
		return "folderlist"
	case ParmTypeSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// GeoType enumerates the geometry node kinds.
type GeoType int

const (
	GeoTypeDefault GeoType = iota
	GeoTypeIntermediate
	GeoTypeInput
	GeoTypeCurve
)

func (t GeoType) String() string {
	switch t {
	case GeoTypeDefault:
		return "default"
	case GeoTypeIntermediate:
		return "intermediate"
	case GeoTypeInput:
		return "input"
	case GeoTypeCurve:
		return "curve"
	default:
		return "unknown"
	}
}

// StorageType is the backing storage of an attribute.
type StorageType int

const (
	StorageTypeInt StorageType = iota
	StorageTypeFloat
	StorageTypeString
)

// AttributeOwner is the level an attribute is bound at.
type AttributeOwner int

const (
	OwnerVertex AttributeOwner = iota
	OwnerPoint
	OwnerPrim
	OwnerDetail
)

func (o AttributeOwner) String() string {
	switch o {
	case OwnerVertex:
		return "vertex"
	case OwnerPoint:
		return "point"
	case OwnerPrim:
		return "prim"
	case OwnerDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// ParmInfo describes one entry of the flat parameter array. The array order
// is semantically significant: a folder list is immediately followed by its
// Size folders, and the parameters of sibling folders are stored
// contiguously even though only one folder is shown at a time.
type ParmInfo struct {
	ID       int
	ParentID int // -1 for root-level parameters
	Type     ParmType
	Size     int // tuple width, or folder child count for folders

	Name  string
	Label string

	Invisible bool
	JoinNext  bool // render on the same line as the next control
	LabelNone bool // suppress the label

	// Index into the matching flat value array, -1 if not applicable.
	IntValuesIndex    int
	FloatValuesIndex  int
	StringValuesIndex int

	// Popup menu choices, if any. ChoiceIndex indexes the flat choice array.
	ChoiceCount int
	ChoiceIndex int

	Min float64
	Max float64
}

// IsInt reports whether the parameter stores into the int value array.
func (p ParmInfo) IsInt() bool {
	return p.Type == ParmTypeInt || p.Type == ParmTypeToggle
}

// IsFloat reports whether the parameter stores into the float value array.
func (p ParmInfo) IsFloat() bool {
	return p.Type == ParmTypeFloat || p.Type == ParmTypeColour
}

// IsString reports whether the parameter stores into the string value array.
func (p ParmInfo) IsString() bool {
	return p.Type == ParmTypeString || p.Type == ParmTypeFile
}

// ParmChoiceInfo is one entry of a parameter's popup menu.
type ParmChoiceInfo struct {
	ParentParmID int
	Label        string
	Value        string
}

// GeoInfo is the cooked description of one geometry node.
type GeoInfo struct {
	NodeID             NodeID
	Name               string
	Type               GeoType
	IsEditable         bool
	IsDisplayGeo       bool
	IsTemplated        bool
	HasGeoChanged      bool
	HasMaterialChanged bool
	PartCount          int
}

// PartInfo is the cooked description of one part of a geometry node.
type PartInfo struct {
	ID            int
	Name          string
	VertexCount   int
	PointCount    int
	FaceCount     int
	MaterialID    int
	HasMesh       bool
}

// AttributeInfo describes one geometry attribute.
type AttributeInfo struct {
	Name      string
	Exists    bool
	Owner     AttributeOwner
	Storage   StorageType
	Count     int
	TupleSize int
}

// Mesh is the triangle mesh of one cooked part. All arrays are flat:
// vertices and normals carry 3 floats per vertex, indices 3 per triangle.
type Mesh struct {
	Vertices []float32
	Normals  []float32
	Indices  []uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
