// Package memengine implements hapi.Engine fully in process. Asset
// libraries are Lisp scripts declaring a parameter interface and a cook
// body; cooking evaluates the script against the instance's current values
// and tessellates the resulting solids with sdfx. The backend exists so the
// rest of the tool can run, and be tested, without a native engine install.
package memengine

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// Compile-time interface check.
var _ hapi.Engine = (*Engine)(nil)

// coordsParmName is the single parameter carried by curve geometry nodes.
const coordsParmName = "coords"

// Engine is the in-memory cook engine. Safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	log    *zap.Logger
	status string

	nextLibrary int
	nextAsset   int
	nextNode    int

	libraries map[hapi.LibraryID][]*AssetDef
	libOrder  []hapi.LibraryID
	instances map[hapi.AssetID]*instance
	parmNodes map[hapi.NodeID]*parmNode
}

// parmNode resolves a parameter-bearing node id to its backing table.
// Asset root nodes and curve geometry nodes both carry one.
type parmNode struct {
	table *parmTable
	owner *instance
	geo   *cookedGeo // nil for the asset root
}

type instance struct {
	id       hapi.AssetID
	def      *AssetDef
	nodeID   hapi.NodeID
	objectID hapi.NodeID

	parms  *parmTable
	dirty  bool
	cooked bool

	geoIDs   map[string]hapi.NodeID
	geos     map[hapi.NodeID]*cookedGeo
	geoOrder []hapi.NodeID
}

type cookedGeo struct {
	info   hapi.GeoInfo
	parts  []cookedPart
	detail []PointAttr

	curve      *parmTable // curve geos own a coords parameter
	curveDirty bool
}

type cookedPart struct {
	info       hapi.PartInfo
	mesh       *hapi.Mesh
	vertexList []int
	point      map[string]PointAttr
	pointOrder []string
}

// New returns an empty in-memory engine. A nil logger is replaced with a
// no-op logger.
func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		log:       log,
		libraries: make(map[hapi.LibraryID][]*AssetDef),
		instances: make(map[hapi.AssetID]*instance),
		parmNodes: make(map[hapi.NodeID]*parmNode),
	}
}

func (e *Engine) fail(res hapi.Result, format string, args ...any) hapi.Result {
	e.status = fmt.Sprintf(format, args...)
	return res
}

// StatusString returns the description of the last failure.
func (e *Engine) StatusString() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

// LoadLibrary reads and evaluates an asset script file. All assets the
// script defines become instantiable.
func (e *Engine) LoadLibrary(path string) (hapi.LibraryID, hapi.Result) {
	source, err := os.ReadFile(path)
	if err != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		return 0, e.fail(hapi.ResultCantLoadFile, "load library %s: %v", path, err)
	}
	defs, err := loadScript(string(source))
	if err != nil {
		e.mu.Lock()
		defer e.mu.Unlock()
		return 0, e.fail(hapi.ResultFailure, "parse library %s: %v", path, err)
	}
	return e.RegisterLibrary(defs...), hapi.ResultSuccess
}

// RegisterLibrary installs programmatically built asset definitions as a
// library. Used by tests and embedded assets.
func (e *Engine) RegisterLibrary(defs ...*AssetDef) hapi.LibraryID {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := hapi.LibraryID(e.nextLibrary)
	e.nextLibrary++
	e.libraries[id] = defs
	e.libOrder = append(e.libOrder, id)
	return id
}

// AssetNames lists the assets a library defines.
func (e *Engine) AssetNames(library hapi.LibraryID) ([]string, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defs, ok := e.libraries[library]
	if !ok {
		return nil, e.fail(hapi.ResultInvalidArgument, "unknown library %d", library)
	}
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names, hapi.ResultSuccess
}

// InstantiateAsset creates an instance of the named asset with default
// parameter values. The instance has no geometry until the first cook.
func (e *Engine) InstantiateAsset(name string) (hapi.AssetID, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var def *AssetDef
	for _, lib := range e.libOrder {
		for _, d := range e.libraries[lib] {
			if d.Name == name {
				def = d
				break
			}
		}
		if def != nil {
			break
		}
	}
	if def == nil {
		return 0, e.fail(hapi.ResultInvalidArgument, "unknown asset %q", name)
	}

	table, err := flattenParms(def.Parms)
	if err != nil {
		return 0, e.fail(hapi.ResultFailure, "asset %q: %v", name, err)
	}

	id := hapi.AssetID(e.nextAsset)
	e.nextAsset++
	inst := &instance{
		id:       id,
		def:      def,
		nodeID:   e.allocNode(),
		objectID: e.allocNode(),
		parms:    table,
		geoIDs:   make(map[string]hapi.NodeID),
		geos:     make(map[hapi.NodeID]*cookedGeo),
	}
	e.instances[id] = inst
	e.parmNodes[inst.nodeID] = &parmNode{table: table, owner: inst}
	return id, hapi.ResultSuccess
}

// AssetNodeID resolves an instance to its parameter-bearing root node.
func (e *Engine) AssetNodeID(asset hapi.AssetID) (hapi.NodeID, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.instances[asset]
	if !ok {
		return 0, e.fail(hapi.ResultInvalidArgument, "unknown asset instance %d", asset)
	}
	return inst.nodeID, hapi.ResultSuccess
}

// DestroyAsset releases an instance and all its nodes.
func (e *Engine) DestroyAsset(asset hapi.AssetID) hapi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.instances[asset]
	if !ok {
		return e.fail(hapi.ResultInvalidArgument, "unknown asset instance %d", asset)
	}
	delete(e.parmNodes, inst.nodeID)
	for _, id := range inst.geoOrder {
		delete(e.parmNodes, id)
	}
	delete(e.instances, asset)
	return hapi.ResultSuccess
}

func (e *Engine) allocNode() hapi.NodeID {
	e.nextNode++
	return hapi.NodeID(e.nextNode)
}

// ---------------------------------------------------------------------------
// Cooking
// ---------------------------------------------------------------------------

// Cook re-evaluates an instance if any of its parameters changed since the
// last cook. Change flags on geometry nodes are valid until the next cook.
func (e *Engine) Cook(asset hapi.AssetID) hapi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, ok := e.instances[asset]
	if !ok {
		return e.fail(hapi.ResultInvalidArgument, "unknown asset instance %d", asset)
	}

	needCook := !inst.cooked || inst.dirty
	for _, id := range inst.geoOrder {
		g := inst.geos[id]
		g.info.HasGeoChanged = false
		g.info.HasMaterialChanged = false
		if g.curveDirty {
			needCook = true
		}
	}
	if !needCook {
		return hapi.ResultSuccess
	}

	if inst.def.Cook == nil {
		return e.fail(hapi.ResultFailure, "asset %q has no cook body", inst.def.Name)
	}
	specs, err := inst.def.Cook(inst.parms.values())
	if err != nil {
		return e.fail(hapi.ResultFailure, "cook %q: %v", inst.def.Name, err)
	}

	old := inst.geos
	inst.geos = make(map[hapi.NodeID]*cookedGeo, len(specs))
	inst.geoOrder = inst.geoOrder[:0]
	for _, spec := range specs {
		id, known := inst.geoIDs[spec.Name]
		if !known {
			id = e.allocNode()
			inst.geoIDs[spec.Name] = id
		}
		g := e.buildGeo(id, spec, old[id])
		inst.geos[id] = g
		inst.geoOrder = append(inst.geoOrder, id)
		if g.curve != nil {
			e.parmNodes[id] = &parmNode{table: g.curve, owner: inst, geo: g}
		}
	}
	// Nodes the cook stopped emitting no longer resolve.
	for id, g := range old {
		if _, still := inst.geos[id]; !still && g.curve != nil {
			delete(e.parmNodes, id)
		}
	}

	inst.dirty = false
	inst.cooked = true
	return hapi.ResultSuccess
}

func (e *Engine) buildGeo(id hapi.NodeID, spec GeoSpec, prev *cookedGeo) *cookedGeo {
	g := &cookedGeo{
		info: hapi.GeoInfo{
			NodeID:             id,
			Name:               spec.Name,
			Type:               spec.Type,
			IsEditable:         spec.Editable,
			IsDisplayGeo:       spec.Type == hapi.GeoTypeDefault && !spec.Templated,
			IsTemplated:        spec.Templated,
			HasGeoChanged:      true,
			HasMaterialChanged: true,
			PartCount:          len(spec.Parts),
		},
	}

	if spec.Script != "" {
		g.detail = append(g.detail, PointAttr{
			Name:       "host_script",
			Storage:    hapi.StorageTypeString,
			TupleSize:  1,
			StringData: []string{spec.Script},
		})
	}

	if spec.Type == hapi.GeoTypeCurve {
		if prev != nil && prev.curve != nil {
			g.curve = prev.curve
		} else {
			g.curve = &parmTable{
				infos: []hapi.ParmInfo{{
					ID:                0,
					ParentID:          -1,
					Type:              hapi.ParmTypeString,
					Size:              1,
					Name:              coordsParmName,
					Label:             "Coordinates",
					IntValuesIndex:    -1,
					FloatValuesIndex:  -1,
					StringValuesIndex: 0,
				}},
				strs: []string{spec.Coords},
			}
		}
	}

	for i, ps := range spec.Parts {
		g.parts = append(g.parts, e.buildPart(i, spec.Name, ps))
	}
	return g
}

func (e *Engine) buildPart(index int, geoName string, spec PartSpec) cookedPart {
	mesh := spec.Solid.mesh()
	pointCount := len(spec.Points) / 3

	p := cookedPart{
		info: hapi.PartInfo{
			ID:          index,
			Name:        spec.Name,
			VertexCount: mesh.VertexCount(),
			PointCount:  pointCount,
			FaceCount:   mesh.TriangleCount(),
			MaterialID:  spec.MaterialID,
			HasMesh:     !spec.Solid.IsEmpty(),
		},
		mesh:  mesh,
		point: make(map[string]PointAttr),
	}

	if pointCount > 0 {
		pos := make([]float64, len(spec.Points))
		for i, f := range spec.Points {
			pos[i] = float64(f)
		}
		p.point["P"] = PointAttr{Name: "P", Storage: hapi.StorageTypeFloat, TupleSize: 3, FloatData: pos}
		p.pointOrder = append(p.pointOrder, "P")

		// Triangle-soup meshes have no shared topology, so vertices map
		// onto the point domain round-robin.
		p.vertexList = make([]int, mesh.VertexCount())
		for i := range p.vertexList {
			p.vertexList[i] = i % pointCount
		}
	}

	for _, a := range spec.PointAttrs {
		if n := attrLen(a); n != pointCount*a.TupleSize {
			e.log.Warn("point attribute size mismatch, skipping",
				zap.String("geo", geoName),
				zap.String("attribute", a.Name),
				zap.Int("have", n),
				zap.Int("want", pointCount*a.TupleSize))
			continue
		}
		p.point[a.Name] = a
		p.pointOrder = append(p.pointOrder, a.Name)
	}
	return p
}

func attrLen(a PointAttr) int {
	switch a.Storage {
	case hapi.StorageTypeInt:
		return len(a.IntData)
	case hapi.StorageTypeFloat:
		return len(a.FloatData)
	default:
		return len(a.StringData)
	}
}

// ---------------------------------------------------------------------------
// Parameters
// ---------------------------------------------------------------------------

func (e *Engine) parmNode(node hapi.NodeID) (*parmNode, hapi.Result) {
	pn, ok := e.parmNodes[node]
	if !ok {
		return nil, e.fail(hapi.ResultInvalidArgument, "node %d has no parameters", node)
	}
	return pn, hapi.ResultSuccess
}

func (e *Engine) GetParameters(node hapi.NodeID) ([]hapi.ParmInfo, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pn, res := e.parmNode(node)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	out := make([]hapi.ParmInfo, len(pn.table.infos))
	copy(out, pn.table.infos)
	return out, hapi.ResultSuccess
}

func (e *Engine) GetParmIntValues(node hapi.NodeID) ([]int, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pn, res := e.parmNode(node)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	out := make([]int, len(pn.table.ints))
	copy(out, pn.table.ints)
	return out, hapi.ResultSuccess
}

func (e *Engine) GetParmFloatValues(node hapi.NodeID) ([]float64, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pn, res := e.parmNode(node)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	out := make([]float64, len(pn.table.floats))
	copy(out, pn.table.floats)
	return out, hapi.ResultSuccess
}

func (e *Engine) GetParmStringValues(node hapi.NodeID) ([]string, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pn, res := e.parmNode(node)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	out := make([]string, len(pn.table.strs))
	copy(out, pn.table.strs)
	return out, hapi.ResultSuccess
}

func (e *Engine) GetParmChoiceLists(node hapi.NodeID) ([]hapi.ParmChoiceInfo, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pn, res := e.parmNode(node)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	out := make([]hapi.ParmChoiceInfo, len(pn.table.choices))
	copy(out, pn.table.choices)
	return out, hapi.ResultSuccess
}

func (e *Engine) SetParmIntValues(node hapi.NodeID, values []int, start, length int) hapi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	pn, res := e.parmNode(node)
	if res != hapi.ResultSuccess {
		return res
	}
	if start < 0 || length < 0 || start+length > len(pn.table.ints) || length > len(values) {
		return e.fail(hapi.ResultInvalidArgument, "int value range [%d,%d) out of bounds", start, start+length)
	}
	copy(pn.table.ints[start:start+length], values[:length])
	pn.markDirty()
	return hapi.ResultSuccess
}

func (e *Engine) SetParmFloatValues(node hapi.NodeID, values []float64, start, length int) hapi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	pn, res := e.parmNode(node)
	if res != hapi.ResultSuccess {
		return res
	}
	if start < 0 || length < 0 || start+length > len(pn.table.floats) || length > len(values) {
		return e.fail(hapi.ResultInvalidArgument, "float value range [%d,%d) out of bounds", start, start+length)
	}
	copy(pn.table.floats[start:start+length], values[:length])
	pn.markDirty()
	return hapi.ResultSuccess
}

func (e *Engine) SetParmStringValue(node hapi.NodeID, value string, parmID, component int) hapi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	pn, res := e.parmNode(node)
	if res != hapi.ResultSuccess {
		return res
	}
	if parmID < 0 || parmID >= len(pn.table.infos) {
		return e.fail(hapi.ResultInvalidArgument, "unknown parm id %d", parmID)
	}
	info := pn.table.infos[parmID]
	if !info.IsString() || component < 0 || component >= info.Size {
		return e.fail(hapi.ResultInvalidArgument, "parm %q: not a string component %d", info.Name, component)
	}
	pn.table.strs[info.StringValuesIndex+component] = value
	pn.markDirty()
	return hapi.ResultSuccess
}

func (pn *parmNode) markDirty() {
	if pn.geo != nil {
		pn.geo.curveDirty = true
		return
	}
	pn.owner.dirty = true
}

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

func (e *Engine) ObjectNodeIDs(asset hapi.AssetID) ([]hapi.NodeID, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.instances[asset]
	if !ok {
		return nil, e.fail(hapi.ResultInvalidArgument, "unknown asset instance %d", asset)
	}
	return []hapi.NodeID{inst.objectID}, hapi.ResultSuccess
}

func (e *Engine) GeoNodeIDs(asset hapi.AssetID, object hapi.NodeID) ([]hapi.NodeID, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.instances[asset]
	if !ok || inst.objectID != object {
		return nil, e.fail(hapi.ResultInvalidArgument, "unknown object node %d", object)
	}
	out := make([]hapi.NodeID, len(inst.geoOrder))
	copy(out, inst.geoOrder)
	return out, hapi.ResultSuccess
}

func (e *Engine) geoFor(asset hapi.AssetID, object, geo hapi.NodeID) (*cookedGeo, hapi.Result) {
	inst, ok := e.instances[asset]
	if !ok || inst.objectID != object {
		return nil, e.fail(hapi.ResultInvalidArgument, "unknown object node %d", object)
	}
	g, ok := inst.geos[geo]
	if !ok {
		return nil, e.fail(hapi.ResultInvalidArgument, "unknown geo node %d", geo)
	}
	return g, hapi.ResultSuccess
}

func (e *Engine) partFor(asset hapi.AssetID, object, geo hapi.NodeID, part int) (*cookedPart, hapi.Result) {
	g, res := e.geoFor(asset, object, geo)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	if part < 0 || part >= len(g.parts) {
		return nil, e.fail(hapi.ResultInvalidArgument, "geo %q: part %d out of range", g.info.Name, part)
	}
	return &g.parts[part], hapi.ResultSuccess
}

func (e *Engine) GetGeoInfo(asset hapi.AssetID, object, geo hapi.NodeID) (hapi.GeoInfo, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, res := e.geoFor(asset, object, geo)
	if res != hapi.ResultSuccess {
		return hapi.GeoInfo{}, res
	}
	return g.info, hapi.ResultSuccess
}

func (e *Engine) GetPartInfo(asset hapi.AssetID, object, geo hapi.NodeID, part int) (hapi.PartInfo, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, res := e.partFor(asset, object, geo, part)
	if res != hapi.ResultSuccess {
		return hapi.PartInfo{}, res
	}
	return p.info, hapi.ResultSuccess
}

func (e *Engine) GetPartMesh(asset hapi.AssetID, object, geo hapi.NodeID, part int) (*hapi.Mesh, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, res := e.partFor(asset, object, geo, part)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	return p.mesh, hapi.ResultSuccess
}

func (e *Engine) GetVertexList(asset hapi.AssetID, object, geo hapi.NodeID, part int) ([]int, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, res := e.partFor(asset, object, geo, part)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	out := make([]int, len(p.vertexList))
	copy(out, p.vertexList)
	return out, hapi.ResultSuccess
}

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

func (e *Engine) attrsFor(asset hapi.AssetID, object, geo hapi.NodeID, part int, owner hapi.AttributeOwner) (map[string]PointAttr, []string, int, hapi.Result) {
	g, res := e.geoFor(asset, object, geo)
	if res != hapi.ResultSuccess {
		return nil, nil, 0, res
	}
	switch owner {
	case hapi.OwnerPoint:
		p, res := e.partFor(asset, object, geo, part)
		if res != hapi.ResultSuccess {
			return nil, nil, 0, res
		}
		return p.point, p.pointOrder, p.info.PointCount, hapi.ResultSuccess
	case hapi.OwnerDetail:
		m := make(map[string]PointAttr, len(g.detail))
		names := make([]string, 0, len(g.detail))
		for _, a := range g.detail {
			m[a.Name] = a
			names = append(names, a.Name)
		}
		return m, names, 1, hapi.ResultSuccess
	default:
		// No vertex or primitive attributes are cooked.
		return nil, nil, 0, hapi.ResultSuccess
	}
}

func (e *Engine) GetAttributeNames(asset hapi.AssetID, object, geo hapi.NodeID, part int, owner hapi.AttributeOwner) ([]string, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, names, _, res := e.attrsFor(asset, object, geo, part, owner)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, hapi.ResultSuccess
}

func (e *Engine) GetAttributeInfo(asset hapi.AssetID, object, geo hapi.NodeID, part int, name string, owner hapi.AttributeOwner) (hapi.AttributeInfo, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	attrs, _, count, res := e.attrsFor(asset, object, geo, part, owner)
	if res != hapi.ResultSuccess {
		return hapi.AttributeInfo{}, res
	}
	a, ok := attrs[name]
	if !ok {
		return hapi.AttributeInfo{Name: name, Owner: owner}, hapi.ResultSuccess
	}
	return hapi.AttributeInfo{
		Name:      name,
		Exists:    true,
		Owner:     owner,
		Storage:   a.Storage,
		Count:     count,
		TupleSize: a.TupleSize,
	}, hapi.ResultSuccess
}

func (e *Engine) GetAttributeIntData(asset hapi.AssetID, object, geo hapi.NodeID, part int, name string, owner hapi.AttributeOwner) ([]int, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	attrs, _, _, res := e.attrsFor(asset, object, geo, part, owner)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	a, ok := attrs[name]
	if !ok || a.Storage != hapi.StorageTypeInt {
		return nil, e.fail(hapi.ResultInvalidArgument, "no int attribute %q on %s", name, owner)
	}
	out := make([]int, len(a.IntData))
	copy(out, a.IntData)
	return out, hapi.ResultSuccess
}

func (e *Engine) GetAttributeFloatData(asset hapi.AssetID, object, geo hapi.NodeID, part int, name string, owner hapi.AttributeOwner) ([]float64, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	attrs, _, _, res := e.attrsFor(asset, object, geo, part, owner)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	a, ok := attrs[name]
	if !ok || a.Storage != hapi.StorageTypeFloat {
		return nil, e.fail(hapi.ResultInvalidArgument, "no float attribute %q on %s", name, owner)
	}
	out := make([]float64, len(a.FloatData))
	copy(out, a.FloatData)
	return out, hapi.ResultSuccess
}

func (e *Engine) GetAttributeStringData(asset hapi.AssetID, object, geo hapi.NodeID, part int, name string, owner hapi.AttributeOwner) ([]string, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	attrs, _, _, res := e.attrsFor(asset, object, geo, part, owner)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	a, ok := attrs[name]
	if !ok || a.Storage != hapi.StorageTypeString {
		return nil, e.fail(hapi.ResultInvalidArgument, "no string attribute %q on %s", name, owner)
	}
	out := make([]string, len(a.StringData))
	copy(out, a.StringData)
	return out, hapi.ResultSuccess
}

// ---------------------------------------------------------------------------
// Presets
// ---------------------------------------------------------------------------

// presetBlob is the serialized value state of a parameter-bearing node.
type presetBlob struct {
	Ints    []int     `json:"ints"`
	Floats  []float64 `json:"floats"`
	Strings []string  `json:"strings"`
}

// GetPreset captures a node's current parameter values.
func (e *Engine) GetPreset(node hapi.NodeID) ([]byte, hapi.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	pn, res := e.parmNode(node)
	if res != hapi.ResultSuccess {
		return nil, res
	}
	blob, err := json.Marshal(presetBlob{
		Ints:    pn.table.ints,
		Floats:  pn.table.floats,
		Strings: pn.table.strs,
	})
	if err != nil {
		return nil, e.fail(hapi.ResultFailure, "encode preset: %v", err)
	}
	return blob, hapi.ResultSuccess
}

// SetPreset restores previously captured values. A preset whose shape no
// longer matches the node's value arrays is rejected.
func (e *Engine) SetPreset(node hapi.NodeID, preset []byte) hapi.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	pn, res := e.parmNode(node)
	if res != hapi.ResultSuccess {
		return res
	}
	var blob presetBlob
	if err := json.Unmarshal(preset, &blob); err != nil {
		return e.fail(hapi.ResultInvalidArgument, "decode preset: %v", err)
	}
	if len(blob.Ints) != len(pn.table.ints) ||
		len(blob.Floats) != len(pn.table.floats) ||
		len(blob.Strings) != len(pn.table.strs) {
		return e.fail(hapi.ResultInvalidArgument, "preset shape does not match node %d", node)
	}
	copy(pn.table.ints, blob.Ints)
	copy(pn.table.floats, blob.Floats)
	copy(pn.table.strs, blob.Strings)
	pn.markDirty()
	return hapi.ResultSuccess
}
