package memengine

import (
	"testing"

	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// slabAsset cooks one geo with a point-only part whose point count follows
// the "count" parameter. Point-only parts keep tests clear of tessellation.
func slabAsset() *AssetDef {
	return &AssetDef{
		Name:  "slab",
		Parms: twoFolderDecls(),
		Cook: func(v *ParmValues) ([]GeoSpec, error) {
			count := v.Int("count", 0)
			points := make([]float32, 0, count*3)
			mask := make([]float64, 0, count)
			for i := 0; i < count; i++ {
				points = append(points, float32(i), 0, 0)
				mask = append(mask, v.Float("rate", 0))
			}
			return []GeoSpec{{
				Name: "body",
				Type: hapi.GeoTypeIntermediate,
				Parts: []PartSpec{{
					Name:   "slab0",
					Points: points,
					PointAttrs: []PointAttr{{
						Name: "mask", Storage: hapi.StorageTypeFloat, TupleSize: 1, FloatData: mask,
					}},
				}},
				Script: "on_rebuild",
			}}, nil
		},
	}
}

func instantiate(t *testing.T, eng *Engine) hapi.AssetID {
	t.Helper()
	eng.RegisterLibrary(slabAsset())
	id, res := eng.InstantiateAsset("slab")
	if res != hapi.ResultSuccess {
		t.Fatalf("instantiate: %s (%s)", res, eng.StatusString())
	}
	return id
}

func geoNode(t *testing.T, eng *Engine, asset hapi.AssetID) (hapi.NodeID, hapi.NodeID) {
	t.Helper()
	objects, res := eng.ObjectNodeIDs(asset)
	if res != hapi.ResultSuccess || len(objects) != 1 {
		t.Fatalf("object nodes: %s, %v", res, objects)
	}
	geos, res := eng.GeoNodeIDs(asset, objects[0])
	if res != hapi.ResultSuccess || len(geos) != 1 {
		t.Fatalf("geo nodes: %s, %v", res, geos)
	}
	return objects[0], geos[0]
}

func TestCookProducesGeometry(t *testing.T) {
	eng := New(nil)
	asset := instantiate(t, eng)

	if res := eng.Cook(asset); res != hapi.ResultSuccess {
		t.Fatalf("cook: %s (%s)", res, eng.StatusString())
	}
	object, geo := geoNode(t, eng, asset)

	info, res := eng.GetGeoInfo(asset, object, geo)
	if res != hapi.ResultSuccess {
		t.Fatalf("geo info: %s", res)
	}
	if info.Type != hapi.GeoTypeIntermediate {
		t.Errorf("geo type: expected intermediate, got %s", info.Type)
	}
	if !info.HasGeoChanged {
		t.Error("first cook should flag the geo as changed")
	}
	if info.PartCount != 1 {
		t.Fatalf("part count: expected 1, got %d", info.PartCount)
	}

	part, res := eng.GetPartInfo(asset, object, geo, 0)
	if res != hapi.ResultSuccess {
		t.Fatalf("part info: %s", res)
	}
	if part.PointCount != 2 {
		t.Errorf("point count: expected 2 (default count), got %d", part.PointCount)
	}
	if part.HasMesh {
		t.Error("point-only part should not report a mesh")
	}
}

func TestCookIsIdleWithoutChanges(t *testing.T) {
	eng := New(nil)
	asset := instantiate(t, eng)

	if res := eng.Cook(asset); res != hapi.ResultSuccess {
		t.Fatalf("cook: %s", res)
	}
	if res := eng.Cook(asset); res != hapi.ResultSuccess {
		t.Fatalf("second cook: %s", res)
	}

	object, geo := geoNode(t, eng, asset)
	info, _ := eng.GetGeoInfo(asset, object, geo)
	if info.HasGeoChanged {
		t.Error("idle cook should clear the change flag")
	}
}

func TestSetParmTriggersRecook(t *testing.T) {
	eng := New(nil)
	asset := instantiate(t, eng)
	if res := eng.Cook(asset); res != hapi.ResultSuccess {
		t.Fatalf("cook: %s", res)
	}
	eng.Cook(asset) // settle flags

	// The first instantiated asset's parameter node is the first node id.
	parms, res := eng.GetParameters(hapi.NodeID(1))
	if res != hapi.ResultSuccess {
		t.Fatalf("parameters: %s", res)
	}
	var countInfo hapi.ParmInfo
	for _, p := range parms {
		if p.Name == "count" {
			countInfo = p
		}
	}
	if countInfo.Name == "" {
		t.Fatal("count parameter not found")
	}
	if res := eng.SetParmIntValues(1, []int{5}, countInfo.IntValuesIndex, 1); res != hapi.ResultSuccess {
		t.Fatalf("set count: %s", res)
	}

	if res := eng.Cook(asset); res != hapi.ResultSuccess {
		t.Fatalf("recook: %s", res)
	}
	object, geo := geoNode(t, eng, asset)
	info, _ := eng.GetGeoInfo(asset, object, geo)
	if !info.HasGeoChanged {
		t.Error("recook after a parameter change should flag the geo")
	}
	part, _ := eng.GetPartInfo(asset, object, geo, 0)
	if part.PointCount != 5 {
		t.Errorf("point count: expected 5, got %d", part.PointCount)
	}
}

func TestPointAttributes(t *testing.T) {
	eng := New(nil)
	asset := instantiate(t, eng)
	if res := eng.Cook(asset); res != hapi.ResultSuccess {
		t.Fatalf("cook: %s", res)
	}
	object, geo := geoNode(t, eng, asset)

	names, res := eng.GetAttributeNames(asset, object, geo, 0, hapi.OwnerPoint)
	if res != hapi.ResultSuccess {
		t.Fatalf("attribute names: %s", res)
	}
	if len(names) != 2 || names[0] != "P" || names[1] != "mask" {
		t.Fatalf("expected [P mask], got %v", names)
	}

	info, res := eng.GetAttributeInfo(asset, object, geo, 0, "mask", hapi.OwnerPoint)
	if res != hapi.ResultSuccess || !info.Exists {
		t.Fatalf("mask info: %s exists=%v", res, info.Exists)
	}
	if info.Storage != hapi.StorageTypeFloat || info.TupleSize != 1 || info.Count != 2 {
		t.Errorf("mask info mismatch: %+v", info)
	}

	data, res := eng.GetAttributeFloatData(asset, object, geo, 0, "mask", hapi.OwnerPoint)
	if res != hapi.ResultSuccess {
		t.Fatalf("mask data: %s", res)
	}
	if len(data) != 2 || data[0] != 0.5 {
		t.Errorf("mask data: expected [0.5 0.5], got %v", data)
	}

	missing, res := eng.GetAttributeInfo(asset, object, geo, 0, "ghost", hapi.OwnerPoint)
	if res != hapi.ResultSuccess || missing.Exists {
		t.Errorf("missing attribute should report exists=false, got %s %+v", res, missing)
	}
}

func TestDetailScriptAttribute(t *testing.T) {
	eng := New(nil)
	asset := instantiate(t, eng)
	if res := eng.Cook(asset); res != hapi.ResultSuccess {
		t.Fatalf("cook: %s", res)
	}
	object, geo := geoNode(t, eng, asset)

	data, res := eng.GetAttributeStringData(asset, object, geo, 0, "host_script", hapi.OwnerDetail)
	if res != hapi.ResultSuccess {
		t.Fatalf("script attribute: %s", res)
	}
	if len(data) != 1 || data[0] != "on_rebuild" {
		t.Errorf("expected [on_rebuild], got %v", data)
	}
}

func TestPresetRoundTrip(t *testing.T) {
	eng := New(nil)
	instantiate(t, eng)

	node := hapi.NodeID(1)
	blob, res := eng.GetPreset(node)
	if res != hapi.ResultSuccess {
		t.Fatalf("get preset: %s", res)
	}

	parms, _ := eng.GetParameters(node)
	var countInfo hapi.ParmInfo
	for _, p := range parms {
		if p.Name == "count" {
			countInfo = p
		}
	}
	if res := eng.SetParmIntValues(node, []int{9}, countInfo.IntValuesIndex, 1); res != hapi.ResultSuccess {
		t.Fatalf("set: %s", res)
	}

	if res := eng.SetPreset(node, blob); res != hapi.ResultSuccess {
		t.Fatalf("set preset: %s", res)
	}
	ints, _ := eng.GetParmIntValues(node)
	if ints[countInfo.IntValuesIndex] != 2 {
		t.Errorf("preset restore: expected 2, got %d", ints[countInfo.IntValuesIndex])
	}

	if res := eng.SetPreset(node, []byte(`{"ints":[1,2,3,4,5,6,7]}`)); res == hapi.ResultSuccess {
		t.Error("mismatched preset shape should be rejected")
	}
}

func TestDestroyAssetReleasesNodes(t *testing.T) {
	eng := New(nil)
	asset := instantiate(t, eng)
	if res := eng.Cook(asset); res != hapi.ResultSuccess {
		t.Fatalf("cook: %s", res)
	}
	if res := eng.DestroyAsset(asset); res != hapi.ResultSuccess {
		t.Fatalf("destroy: %s", res)
	}
	if _, res := eng.GetParameters(hapi.NodeID(1)); res == hapi.ResultSuccess {
		t.Error("destroyed asset's parm node should not resolve")
	}
	if res := eng.DestroyAsset(asset); res == hapi.ResultSuccess {
		t.Error("double destroy should fail")
	}
}

func TestUnknownAssetName(t *testing.T) {
	eng := New(nil)
	if _, res := eng.InstantiateAsset("nope"); res != hapi.ResultInvalidArgument {
		t.Fatalf("expected invalid argument, got %s", res)
	}
	if eng.StatusString() == "" {
		t.Error("status string should describe the failure")
	}
}
