package asset

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/otl-tools/otlbridge/pkg/geo"
	"github.com/otl-tools/otlbridge/pkg/hapi"
	"github.com/otl-tools/otlbridge/pkg/parm"
)

// Asset is one live instance of a procedural asset: its parameters and the
// object/geo node tree mirroring the engine's cooked output.
type Asset struct {
	LibraryPath string
	Name        string
	ID          hapi.AssetID

	s    *Session
	host geo.Host

	nodeID hapi.NodeID
	parms  *parm.Parms

	// nodes is keyed by engine geo node, preserving paint and curve state
	// across refreshes.
	nodes     map[hapi.NodeID]*geo.Node
	nodeOrder []hapi.NodeID
}

// LoadAsset loads a library and instantiates its first asset, then performs
// the initial full build. The host receives part lifecycle commands.
func (s *Session) LoadAsset(path string, host geo.Host) (*Asset, error) {
	lib, res := s.eng.LoadLibrary(path)
	if err := hapi.CheckResult(s.eng, res, "load library"); err != nil {
		return nil, err
	}
	names, res := s.eng.AssetNames(lib)
	if err := hapi.CheckResult(s.eng, res, "list assets"); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, hapi.NotFound("library %s defines no assets", path)
	}
	return s.InstantiateAsset(names[0], path, host)
}

// InstantiateAsset instantiates a named asset from an already loaded
// library and performs the initial full build.
func (s *Session) InstantiateAsset(name, libraryPath string, host geo.Host) (*Asset, error) {
	id, res := s.eng.InstantiateAsset(name)
	if err := hapi.CheckResult(s.eng, res, "instantiate asset"); err != nil {
		return nil, err
	}
	nodeID, res := s.eng.AssetNodeID(id)
	if err := hapi.CheckResult(s.eng, res, "resolve asset node"); err != nil {
		s.eng.DestroyAsset(id)
		return nil, err
	}

	a := &Asset{
		LibraryPath: libraryPath,
		Name:        name,
		ID:          id,
		s:           s,
		host:        host,
		nodeID:      nodeID,
		nodes:       make(map[hapi.NodeID]*geo.Node),
	}
	if err := a.Build(); err != nil {
		a.destroyNodes()
		s.eng.DestroyAsset(id)
		return nil, err
	}
	s.track(a)
	s.notify(a, EventBuilt)
	return a, nil
}

// Path is the asset's hierarchical root path, the prefix of every node
// path beneath it.
func (a *Asset) Path() string {
	return "/" + a.Name
}

// NodeID returns the asset's parameter-bearing root node.
func (a *Asset) NodeID() hapi.NodeID { return a.nodeID }

// Parms returns the asset-level parameters. Valid after a build.
func (a *Asset) Parms() *parm.Parms { return a.parms }

// Nodes returns the geo nodes in engine order.
func (a *Asset) Nodes() []*geo.Node {
	out := make([]*geo.Node, 0, len(a.nodeOrder))
	for _, id := range a.nodeOrder {
		out = append(out, a.nodes[id])
	}
	return out
}

// Node returns the geo node mirroring the given engine node.
func (a *Asset) Node(id hapi.NodeID) (*geo.Node, error) {
	n, ok := a.nodes[id]
	if !ok {
		return nil, hapi.NotFound("no geo node %d on asset %s", id, a.Name)
	}
	return n, nil
}

// Build performs a full build: restore a stored preset if one exists, cook,
// fetch parameters and reload the whole node tree. Paint data and curve
// caches are rebuilt from the cooked output.
func (a *Asset) Build() error {
	if preset, ok := a.s.presets.Get(a.Path()); ok {
		if res := a.s.eng.SetPreset(a.nodeID, preset); res != hapi.ResultSuccess {
			a.s.log.Warn("stored preset rejected, building with defaults",
				zap.String("asset", a.Name),
				zap.String("status", a.s.eng.StatusString()))
		}
	}
	if err := a.cook(); err != nil {
		return err
	}

	a.parms = parm.New(a.s.eng, a.nodeID, a.s.log)
	if err := a.parms.Fetch(); err != nil {
		return fmt.Errorf("fetch parameters: %w", err)
	}

	if err := a.refreshNodes(true); err != nil {
		return err
	}
	a.savePreset()
	return nil
}

// Rebuild re-runs the full build, preserving current parameter values, and
// notifies observers.
func (a *Asset) Rebuild() error {
	a.savePreset()
	if err := a.Build(); err != nil {
		return err
	}
	a.s.notify(a, EventBuilt)
	return nil
}

// Recook performs an incremental cook and refresh after parameter edits.
// Unchanged geos keep their parts, meshes and painted data.
func (a *Asset) Recook() error {
	if err := a.cook(); err != nil {
		return err
	}
	if err := a.refreshNodes(false); err != nil {
		return err
	}
	a.s.notify(a, EventCooked)
	return nil
}

// Destroy tears down the node tree and releases the engine instance.
func (a *Asset) Destroy() error {
	a.savePreset()
	a.destroyNodes()
	res := a.s.eng.DestroyAsset(a.ID)
	a.s.untrack(a)
	a.s.notify(a, EventDestroyed)
	return hapi.CheckResult(a.s.eng, res, "destroy asset")
}

func (a *Asset) cook() error {
	if !a.s.opts.EnableCooking {
		return nil
	}
	res := a.s.eng.Cook(a.ID)
	return hapi.CheckResult(a.s.eng, res, "cook")
}

// refreshNodes walks the engine's object/geo tree, creating mirrors for new
// geo nodes, refreshing survivors and destroying mirrors whose engine node
// disappeared. Per-node refresh failures are logged and skipped so one bad
// geo cannot take down the whole asset.
func (a *Asset) refreshNodes(reload bool) error {
	objects, res := a.s.eng.ObjectNodeIDs(a.ID)
	if err := hapi.CheckResult(a.s.eng, res, "list object nodes"); err != nil {
		return err
	}

	seen := make(map[hapi.NodeID]bool)
	order := a.nodeOrder[:0]
	for i, object := range objects {
		objectPath := fmt.Sprintf("%s/obj%d", a.Path(), i)
		geos, res := a.s.eng.GeoNodeIDs(a.ID, object)
		if err := hapi.CheckResult(a.s.eng, res, "list geo nodes"); err != nil {
			a.s.log.Error("skipping object node",
				zap.String("asset", a.Name),
				zap.Int("object", int(object)),
				zap.Error(err))
			continue
		}
		for _, geoID := range geos {
			n, ok := a.nodes[geoID]
			if !ok {
				n = geo.NewNode(a.s.eng, a.host, a.s.log, a.s.geoConfig(),
					a.s.presets, a.ID, object, geoID, objectPath)
				a.nodes[geoID] = n
			}
			if err := n.Refresh(reload); err != nil {
				a.s.log.Error("geo refresh failed",
					zap.String("asset", a.Name),
					zap.String("geo", n.Name),
					zap.Error(err))
			}
			seen[geoID] = true
			order = append(order, geoID)
		}
	}
	a.nodeOrder = order

	for id, n := range a.nodes {
		if !seen[id] {
			n.Destroy()
			delete(a.nodes, id)
		}
	}
	return nil
}

func (a *Asset) destroyNodes() {
	for _, n := range a.nodes {
		n.Destroy()
	}
	a.nodes = make(map[hapi.NodeID]*geo.Node)
	a.nodeOrder = nil
}

// savePreset snapshots the current parameter values into the preset store.
func (a *Asset) savePreset() {
	preset, res := a.s.eng.GetPreset(a.nodeID)
	if res != hapi.ResultSuccess {
		a.s.log.Warn("preset snapshot failed",
			zap.String("asset", a.Name),
			zap.String("status", a.s.eng.StatusString()))
		return
	}
	if err := a.s.presets.Set(a.Path(), preset); err != nil {
		a.s.log.Warn("preset store write failed",
			zap.String("asset", a.Name),
			zap.Error(err))
	}
}
