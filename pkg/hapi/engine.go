package hapi

// Engine is the abstract cook engine interface. Implementations (native,
// memengine) provide asset instantiation and cooking behind this interface.
// All calls block until the engine returns a status code; there is no
// cancellation primitive — a user abort surfaces as ResultUserCancelled.
type Engine interface {
	// Session.
	LoadLibrary(path string) (LibraryID, Result)
	AssetNames(library LibraryID) ([]string, Result)
	InstantiateAsset(name string) (AssetID, Result)
	DestroyAsset(asset AssetID) Result
	Cook(asset AssetID) Result

	// AssetNodeID resolves an instance to its parameter-bearing root node.
	AssetNodeID(asset AssetID) (NodeID, Result)

	// StatusString returns the engine's description of the last failure.
	StatusString() string

	// Parameters. The descriptor array and the three value arrays are
	// fetched whole; values are pushed back by value-array index ranges,
	// strings individually by parameter id and tuple component.
	GetParameters(node NodeID) ([]ParmInfo, Result)
	GetParmIntValues(node NodeID) ([]int, Result)
	GetParmFloatValues(node NodeID) ([]float64, Result)
	GetParmStringValues(node NodeID) ([]string, Result)
	GetParmChoiceLists(node NodeID) ([]ParmChoiceInfo, Result)
	SetParmIntValues(node NodeID, values []int, start, length int) Result
	SetParmFloatValues(node NodeID, values []float64, start, length int) Result
	SetParmStringValue(node NodeID, value string, parmID, component int) Result

	// Geometry.
	ObjectNodeIDs(asset AssetID) ([]NodeID, Result)
	GeoNodeIDs(asset AssetID, object NodeID) ([]NodeID, Result)
	GetGeoInfo(asset AssetID, object, geo NodeID) (GeoInfo, Result)
	GetPartInfo(asset AssetID, object, geo NodeID, part int) (PartInfo, Result)
	GetPartMesh(asset AssetID, object, geo NodeID, part int) (*Mesh, Result)
	GetVertexList(asset AssetID, object, geo NodeID, part int) ([]int, Result)

	// Attributes, typed by storage kind.
	GetAttributeNames(asset AssetID, object, geo NodeID, part int, owner AttributeOwner) ([]string, Result)
	GetAttributeInfo(asset AssetID, object, geo NodeID, part int, name string, owner AttributeOwner) (AttributeInfo, Result)
	GetAttributeIntData(asset AssetID, object, geo NodeID, part int, name string, owner AttributeOwner) ([]int, Result)
	GetAttributeFloatData(asset AssetID, object, geo NodeID, part int, name string, owner AttributeOwner) ([]float64, Result)
	GetAttributeStringData(asset AssetID, object, geo NodeID, part int, name string, owner AttributeOwner) ([]string, Result)

	// Presets.
	GetPreset(node NodeID) ([]byte, Result)
	SetPreset(node NodeID, preset []byte) Result
}
