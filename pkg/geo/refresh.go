package geo

import (
	"go.uber.org/zap"

	"github.com/otl-tools/otlbridge/pkg/attrib"
	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// Refresh reconciles the node against a freshly cooked geometry snapshot.
// Input geos are externally driven and never synchronized here. When
// nothing changed and the node is already synced, the call is a no-op so
// unrelated cook triggers stay cheap. A reload, or curve geometry, resets
// all parts before rebuilding; otherwise the part list is diffed
// conservatively against the cooked part count. Per-part failures are
// logged and skipped so one bad part cannot blank the whole asset.
func (n *Node) Refresh(reload bool) error {
	info, res := n.eng.GetGeoInfo(n.Asset, n.Object, n.Geo)
	if err := hapi.CheckResult(n.eng, res, "GetGeoInfo"); err != nil {
		return err
	}

	if info.Type == hapi.GeoTypeInput {
		return nil
	}

	if !reload && !info.HasGeoChanged && !info.HasMaterialChanged && n.synced {
		return nil
	}

	// Curves are cheap to regenerate whole and their part count is not
	// meaningfully diffable.
	if reload || info.Type == hapi.GeoTypeCurve {
		n.destroyAllParts()
	}

	if reload || info.HasGeoChanged {
		n.NodeID = info.NodeID
		n.Name = info.Name
		n.Type = info.Type
		n.IsEditable = info.IsEditable
		n.IsDisplay = info.IsDisplayGeo
	}

	// Templated geometry that is neither displayed nor a curve is
	// imported only when the session asks for it. The filter applies
	// before any part synchronization.
	if !info.IsDisplayGeo &&
		info.Type != hapi.GeoTypeCurve &&
		!n.cfg.ImportTemplatedGeos &&
		info.IsTemplated {
		n.synced = true
		return nil
	}

	if info.Type == hapi.GeoTypeCurve {
		n.refreshCurve()
		n.synced = true
		return nil
	}

	if reload || info.HasGeoChanged {
		// Append new parts until the counts match, then truncate stale
		// parts from the tail.
		for len(n.parts) < info.PartCount {
			n.createPart(len(n.parts))
		}
		for len(n.parts) > info.PartCount {
			last := len(n.parts) - 1
			n.host.DestroyPart(n, n.parts[last].ID)
			n.parts = n.parts[:last]
		}
	}

	for _, part := range n.parts {
		if err := n.refreshPart(part, reload, info.HasGeoChanged, info.HasMaterialChanged); err != nil {
			n.log.Error("part refresh failed",
				zap.String("geo", n.Name), zap.Int("part", part.ID), zap.Error(err))
		}
	}

	if info.Type == hapi.GeoTypeIntermediate {
		n.bootstrapPaintAttributes()
	}

	if reload && info.PartCount > 0 {
		if err := n.attachBoundScript(); err != nil {
			if hapi.IsIgnorable(err) {
				n.log.Warn("script binding ignored",
					zap.String("geo", n.Name), zap.Error(err))
			} else {
				n.log.Error("script binding failed",
					zap.String("geo", n.Name), zap.Error(err))
			}
		}
	}

	n.synced = true
	return nil
}

// refreshPart rebuilds one part's derived state from the cooked snapshot.
func (n *Node) refreshPart(part *Part, reload, geoChanged, materialChanged bool) error {
	if !reload && !geoChanged && !materialChanged {
		return nil
	}

	info, res := n.eng.GetPartInfo(n.Asset, n.Object, n.Geo, part.ID)
	if err := hapi.CheckResult(n.eng, res, "GetPartInfo"); err != nil {
		return err
	}
	part.Name = info.Name
	part.MaterialID = info.MaterialID

	if reload || geoChanged {
		if info.HasMesh {
			mesh, res := n.eng.GetPartMesh(n.Asset, n.Object, n.Geo, part.ID)
			if err := hapi.CheckResult(n.eng, res, "GetPartMesh"); err != nil {
				return err
			}
			part.Mesh = mesh
		} else {
			part.Mesh = nil
		}

		vertexList, res := n.eng.GetVertexList(n.Asset, n.Object, n.Geo, part.ID)
		if err := hapi.CheckResult(n.eng, res, "GetVertexList"); err != nil {
			return err
		}
		part.VertexList = vertexList
	}

	n.host.SetPartMesh(n, part.ID, part.Mesh, part.MaterialID)
	return nil
}

// bootstrapPaintAttributes builds the paint attribute manager for an
// intermediate geo. Runs at most once per node lifetime, against the
// first part only, and only once at least one part exists. Point-level
// attribute values are expanded to per-vertex storage through the part's
// vertex-to-point index list; the built-in position attribute stays with
// the engine.
func (n *Node) bootstrapPaintAttributes() {
	if n.attrManager != nil || len(n.parts) == 0 {
		return
	}

	const partID = 0
	part := n.parts[partID]

	partInfo, res := n.eng.GetPartInfo(n.Asset, n.Object, n.Geo, partID)
	if err := hapi.CheckResult(n.eng, res, "GetPartInfo"); err != nil {
		n.log.Error("paint bootstrap failed", zap.String("geo", n.Name), zap.Error(err))
		return
	}

	names, res := n.eng.GetAttributeNames(n.Asset, n.Object, n.Geo, partID, hapi.OwnerPoint)
	if err := hapi.CheckResult(n.eng, res, "GetAttributeNames"); err != nil {
		n.log.Error("paint bootstrap failed", zap.String("geo", n.Name), zap.Error(err))
		return
	}

	n.attrManager = attrib.NewManager(partInfo.VertexCount)

	for _, name := range names {
		if name == "P" {
			continue
		}
		if err := n.importPointAttribute(part, partInfo, name); err != nil {
			// Non-fatal: the remaining attributes still get a chance.
			n.log.Error("paint attribute import failed",
				zap.String("geo", n.Name), zap.String("attribute", name), zap.Error(err))
		}
	}
}

// importPointAttribute mirrors one point attribute as a paintable
// per-vertex attribute, scattering point values through the vertex list.
func (n *Node) importPointAttribute(part *Part, partInfo hapi.PartInfo, name string) error {
	const partID = 0

	info, res := n.eng.GetAttributeInfo(n.Asset, n.Object, n.Geo, partID, name, hapi.OwnerPoint)
	if err := hapi.CheckResult(n.eng, res, "GetAttributeInfo"); err != nil {
		return err
	}

	typ := attrib.TypeForStorage(info.Storage)
	if typ == attrib.TypeUndefined {
		return hapi.InvalidArgument("attribute %s: unknown storage %d", name, int(info.Storage))
	}

	a := n.attrManager.CreateAttribute(name)
	if err := a.Init(partInfo.VertexCount, name, typ, info.TupleSize); err != nil {
		return err
	}
	a.SetOriginalOwner(hapi.OwnerPoint)
	a.BrushRate = n.cfg.BrushRate
	a.PaintFirstVertex = n.cfg.PaintFirstVertex

	vertexList := part.VertexList
	if len(vertexList) == 0 {
		list, res := n.eng.GetVertexList(n.Asset, n.Object, n.Geo, partID)
		if err := hapi.CheckResult(n.eng, res, "GetVertexList"); err != nil {
			return err
		}
		vertexList = list
	}
	if len(vertexList) != partInfo.VertexCount {
		// Detected but non-fatal: the attribute stays at defaults.
		n.log.Error("vertex list size mismatch in paint tools",
			zap.String("attribute", name),
			zap.Int("got", len(vertexList)), zap.Int("want", partInfo.VertexCount))
		return nil
	}

	ts := info.TupleSize
	switch typ {
	case attrib.TypeInt:
		data, res := n.eng.GetAttributeIntData(n.Asset, n.Object, n.Geo, partID, name, hapi.OwnerPoint)
		if err := hapi.CheckResult(n.eng, res, "GetAttributeIntData"); err != nil {
			return err
		}
		if len(data) != info.Count*ts {
			n.log.Error("attribute data size mismatch in paint tools",
				zap.String("attribute", name),
				zap.Int("got", len(data)), zap.Int("want", info.Count*ts))
			return nil
		}
		dst := a.IntData()
		for i := 0; i < partInfo.VertexCount; i++ {
			for t := 0; t < ts; t++ {
				dst[i*ts+t] = data[vertexList[i]*ts+t]
			}
		}
	case attrib.TypeFloat:
		data, res := n.eng.GetAttributeFloatData(n.Asset, n.Object, n.Geo, partID, name, hapi.OwnerPoint)
		if err := hapi.CheckResult(n.eng, res, "GetAttributeFloatData"); err != nil {
			return err
		}
		if len(data) != info.Count*ts {
			n.log.Error("attribute data size mismatch in paint tools",
				zap.String("attribute", name),
				zap.Int("got", len(data)), zap.Int("want", info.Count*ts))
			return nil
		}
		dst := a.FloatData()
		for i := 0; i < partInfo.VertexCount; i++ {
			for t := 0; t < ts; t++ {
				dst[i*ts+t] = data[vertexList[i]*ts+t]
			}
		}
	case attrib.TypeString:
		data, res := n.eng.GetAttributeStringData(n.Asset, n.Object, n.Geo, partID, name, hapi.OwnerPoint)
		if err := hapi.CheckResult(n.eng, res, "GetAttributeStringData"); err != nil {
			return err
		}
		if len(data) != info.Count*ts {
			n.log.Error("attribute data size mismatch in paint tools",
				zap.String("attribute", name),
				zap.Int("got", len(data)), zap.Int("want", info.Count*ts))
			return nil
		}
		dst := a.StringData()
		for i := 0; i < partInfo.VertexCount; i++ {
			for t := 0; t < ts; t++ {
				dst[i*ts+t] = data[vertexList[i]*ts+t]
			}
		}
	}
	return nil
}

// attachBoundScript resolves the script-binding attribute on the first
// part and hands the script name to the host. The attribute is defined to
// be detail-owned only; any other owner is an ignorable violation.
func (n *Node) attachBoundScript() error {
	const partID = 0

	owner, info, found := n.findAttribute(partID, ScriptBindingAttribute)
	if !found {
		return nil
	}
	if owner != hapi.OwnerDetail {
		return hapi.Ignorable(
			"%s is only understood as a detail attribute, got %s owner",
			ScriptBindingAttribute, owner)
	}
	if info.Storage != hapi.StorageTypeString {
		return hapi.Ignorable("%s must be a string attribute", ScriptBindingAttribute)
	}

	values, res := n.eng.GetAttributeStringData(
		n.Asset, n.Object, n.Geo, partID, ScriptBindingAttribute, hapi.OwnerDetail)
	if err := hapi.CheckResult(n.eng, res, "GetAttributeStringData"); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	n.host.AttachScript(n, values[0])
	return nil
}

// findAttribute looks the named attribute up across all owner levels,
// detail first.
func (n *Node) findAttribute(partID int, name string) (hapi.AttributeOwner, hapi.AttributeInfo, bool) {
	owners := []hapi.AttributeOwner{
		hapi.OwnerDetail, hapi.OwnerPrim, hapi.OwnerPoint, hapi.OwnerVertex,
	}
	for _, owner := range owners {
		info, res := n.eng.GetAttributeInfo(n.Asset, n.Object, n.Geo, partID, name, owner)
		if res != hapi.ResultSuccess {
			continue
		}
		if info.Exists {
			return owner, info, true
		}
	}
	return hapi.OwnerVertex, hapi.AttributeInfo{}, false
}
