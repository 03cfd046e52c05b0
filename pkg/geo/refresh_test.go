package geo

import (
	"testing"

	"github.com/otl-tools/otlbridge/pkg/hapi"
	"github.com/otl-tools/otlbridge/pkg/hapi/memengine"
	"github.com/otl-tools/otlbridge/pkg/parm"
)

// recHost counts part lifecycle commands per geo name.
type recHost struct {
	created   int
	destroyed int
	meshSets  int
	scripts   []string
}

func (h *recHost) CreatePart(n *Node, partID int)  { h.created++ }
func (h *recHost) DestroyPart(n *Node, partID int) { h.destroyed++ }
func (h *recHost) SetPartMesh(n *Node, partID int, mesh *hapi.Mesh, materialID int) {
	h.meshSets++
}
func (h *recHost) AttachScript(n *Node, script string) {
	h.scripts = append(h.scripts, script)
}

// towerAsset cooks one display geo whose part count follows the "count"
// parameter, plus an intermediate paint layer bound to a host script.
func towerAsset() *memengine.AssetDef {
	return &memengine.AssetDef{
		Name: "tower",
		Parms: []memengine.ParmDecl{
			{Name: "count", Type: hapi.ParmTypeInt, DefaultInt: []int{2}, Max: 10},
		},
		Cook: func(v *memengine.ParmValues) ([]memengine.GeoSpec, error) {
			count := v.Int("count", 0)
			parts := make([]memengine.PartSpec, count)
			for i := range parts {
				parts[i] = memengine.PartSpec{
					Name:   "level",
					Points: []float32{0, 0, float32(i)},
				}
			}
			return []memengine.GeoSpec{
				{Name: "body", Parts: parts},
				{
					Name:   "skin",
					Type:   hapi.GeoTypeIntermediate,
					Script: "on_tower_rebuilt",
					Parts: []memengine.PartSpec{{
						Name:   "skin0",
						Points: []float32{0, 0, 0, 1, 0, 0},
						PointAttrs: []memengine.PointAttr{{
							Name: "mask", Storage: hapi.StorageTypeFloat,
							TupleSize: 1, FloatData: []float64{0, 1},
						}},
					}},
				},
			}, nil
		},
	}
}

type fixture struct {
	eng   *memengine.Engine
	asset hapi.AssetID
	host  *recHost
	nodes map[string]*Node
}

func cookNodes(t *testing.T, def *memengine.AssetDef, cfg Config) *fixture {
	t.Helper()
	eng := memengine.New(nil)
	eng.RegisterLibrary(def)
	id, res := eng.InstantiateAsset(def.Name)
	if res != hapi.ResultSuccess {
		t.Fatalf("instantiate: %s (%s)", res, eng.StatusString())
	}
	if res := eng.Cook(id); res != hapi.ResultSuccess {
		t.Fatalf("cook: %s (%s)", res, eng.StatusString())
	}

	objects, res := eng.ObjectNodeIDs(id)
	if res != hapi.ResultSuccess || len(objects) != 1 {
		t.Fatalf("objects: %s %v", res, objects)
	}
	geos, res := eng.GeoNodeIDs(id, objects[0])
	if res != hapi.ResultSuccess {
		t.Fatalf("geos: %s", res)
	}

	host := &recHost{}
	f := &fixture{eng: eng, asset: id, host: host, nodes: map[string]*Node{}}
	for _, g := range geos {
		n := NewNode(eng, host, nil, cfg, nil, id, objects[0], g, "/tower/obj0")
		if err := n.Refresh(true); err != nil {
			t.Fatalf("refresh %d: %v", g, err)
		}
		f.nodes[n.Name] = n
	}
	return f
}

func (f *fixture) recook(t *testing.T) {
	t.Helper()
	if res := f.eng.Cook(f.asset); res != hapi.ResultSuccess {
		t.Fatalf("recook: %s (%s)", res, f.eng.StatusString())
	}
}

func (f *fixture) setCount(t *testing.T, count int) {
	t.Helper()
	node, res := f.eng.AssetNodeID(f.asset)
	if res != hapi.ResultSuccess {
		t.Fatalf("asset node: %s", res)
	}
	p := parm.New(f.eng, node, nil)
	if err := p.Fetch(); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	c, ok := p.ControlByName("count")
	if !ok {
		t.Fatal("count not found")
	}
	c.Int[0] = count
	if err := p.Push(c); err != nil {
		t.Fatalf("push: %v", err)
	}
}

func TestRefreshPopulatesParts(t *testing.T) {
	f := cookNodes(t, towerAsset(), Config{BrushRate: 0.2})

	body := f.nodes["body"]
	if body == nil {
		t.Fatalf("body node missing, got %v", f.nodes)
	}
	if len(body.Parts()) != 2 {
		t.Fatalf("body parts = %d, want 2", len(body.Parts()))
	}
	if body.Parts()[0].Name != "level" {
		t.Errorf("part name = %q", body.Parts()[0].Name)
	}
	if !body.IsDisplay {
		t.Error("default geo should be display")
	}
	if body.Path() != "/tower/obj0/body" {
		t.Errorf("path = %q", body.Path())
	}
	if f.host.created != 3 {
		t.Errorf("created parts = %d, want 3", f.host.created)
	}
}

func TestRefreshIsNoopWhenUnchanged(t *testing.T) {
	f := cookNodes(t, towerAsset(), Config{BrushRate: 0.2})
	created := f.host.created
	meshSets := f.host.meshSets

	// Recook without edits: nothing changed, the refresh must be silent.
	f.recook(t)
	for _, n := range f.nodes {
		if err := n.Refresh(false); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	if f.host.created != created || f.host.meshSets != meshSets || f.host.destroyed != 0 {
		t.Errorf("unchanged refresh touched the host: %+v", f.host)
	}
}

func TestRefreshDiffsPartCount(t *testing.T) {
	f := cookNodes(t, towerAsset(), Config{BrushRate: 0.2})
	body := f.nodes["body"]

	f.setCount(t, 5)
	f.recook(t)
	if err := body.Refresh(false); err != nil {
		t.Fatalf("refresh after grow: %v", err)
	}
	if len(body.Parts()) != 5 {
		t.Fatalf("parts after grow = %d, want 5", len(body.Parts()))
	}

	f.setCount(t, 1)
	f.recook(t)
	if err := body.Refresh(false); err != nil {
		t.Fatalf("refresh after shrink: %v", err)
	}
	if len(body.Parts()) != 1 {
		t.Fatalf("parts after shrink = %d, want 1", len(body.Parts()))
	}
	if f.host.destroyed == 0 {
		t.Error("shrinking never told the host to destroy parts")
	}
}

func TestPaintBootstrapSurvivesRecook(t *testing.T) {
	f := cookNodes(t, towerAsset(), Config{BrushRate: 0.3})
	skin := f.nodes["skin"]

	mgr := skin.AttributeManager()
	if mgr == nil {
		t.Fatal("no attribute manager on the intermediate geo")
	}
	mask, err := mgr.Attribute("mask")
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	if mask.BrushRate != 0.3 {
		t.Errorf("brush rate = %g, want the session's 0.3", mask.BrushRate)
	}

	// Paint state must survive later cooks: the manager is bootstrapped
	// once per node lifetime.
	f.setCount(t, 4)
	f.recook(t)
	if err := skin.Refresh(false); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if skin.AttributeManager() != mgr {
		t.Error("recook replaced the attribute manager")
	}
}

func TestScriptAttachedOnReload(t *testing.T) {
	f := cookNodes(t, towerAsset(), Config{})
	if len(f.host.scripts) != 1 || f.host.scripts[0] != "on_tower_rebuilt" {
		t.Errorf("attached scripts = %v, want [on_tower_rebuilt]", f.host.scripts)
	}
}

func TestTemplatedGeoFiltered(t *testing.T) {
	def := &memengine.AssetDef{
		Name: "t",
		Cook: func(v *memengine.ParmValues) ([]memengine.GeoSpec, error) {
			return []memengine.GeoSpec{{
				Name:      "guide",
				Templated: true,
				Parts:     []memengine.PartSpec{{Name: "g0", Points: []float32{0, 0, 0}}},
			}}, nil
		},
	}

	f := cookNodes(t, def, Config{ImportTemplatedGeos: false})
	if got := len(f.nodes["guide"].Parts()); got != 0 {
		t.Errorf("templated geo imported %d parts with the filter on", got)
	}

	f = cookNodes(t, def, Config{ImportTemplatedGeos: true})
	if got := len(f.nodes["guide"].Parts()); got != 1 {
		t.Errorf("templated geo parts = %d with the filter off, want 1", got)
	}
}

func TestInputGeoNeverSynced(t *testing.T) {
	def := &memengine.AssetDef{
		Name: "t",
		Cook: func(v *memengine.ParmValues) ([]memengine.GeoSpec, error) {
			return []memengine.GeoSpec{{
				Name:  "in0",
				Type:  hapi.GeoTypeInput,
				Parts: []memengine.PartSpec{{Name: "p0", Points: []float32{0, 0, 0}}},
			}}, nil
		},
	}
	f := cookNodes(t, def, Config{})
	if f.host.created != 0 || f.host.meshSets != 0 {
		t.Errorf("input geo touched the host: %+v", f.host)
	}
}

func TestCurveRefresh(t *testing.T) {
	def := &memengine.AssetDef{
		Name: "t",
		Cook: func(v *memengine.ParmValues) ([]memengine.GeoSpec, error) {
			return []memengine.GeoSpec{{
				Name:     "path",
				Type:     hapi.GeoTypeCurve,
				Editable: true,
				Coords:   "0,0,0 1,0,2 2,0,4",
			}}, nil
		},
	}
	f := cookNodes(t, def, Config{})

	path := f.nodes["path"]
	curve := path.Curve()
	if curve == nil {
		t.Fatal("no curve state on the curve geo")
	}
	if !curve.Editable {
		t.Error("editable flag not carried over")
	}
	if len(curve.Points) != 3 {
		t.Fatalf("points = %v, want 3", curve.Points)
	}
	if curve.Points[1] != (Vec3{X: 1, Y: 0, Z: 2}) {
		t.Errorf("points[1] = %+v", curve.Points[1])
	}
}

func TestParseCoordsSkipsMalformed(t *testing.T) {
	points := parseCoords("0,0,0 nope 1,2 3,4,x 5,6,7")
	if len(points) != 2 {
		t.Fatalf("points = %v, want 2 valid triples", points)
	}
	if points[1] != (Vec3{X: 5, Y: 6, Z: 7}) {
		t.Errorf("points[1] = %+v", points[1])
	}
}

func TestDestroyReleasesParts(t *testing.T) {
	f := cookNodes(t, towerAsset(), Config{})
	body := f.nodes["body"]

	before := f.host.destroyed
	body.Destroy()
	if f.host.destroyed != before+2 {
		t.Errorf("destroyed = %d, want %d", f.host.destroyed, before+2)
	}
	if len(body.Parts()) != 0 {
		t.Error("parts survive Destroy")
	}
}
