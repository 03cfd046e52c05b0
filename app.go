package main

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/otl-tools/otlbridge/pkg/asset"
	"github.com/otl-tools/otlbridge/pkg/attrib"
	"github.com/otl-tools/otlbridge/pkg/config"
	"github.com/otl-tools/otlbridge/pkg/geo"
	"github.com/otl-tools/otlbridge/pkg/hapi"
	"github.com/otl-tools/otlbridge/pkg/hapi/memengine"
	"github.com/otl-tools/otlbridge/pkg/hapi/native"
	"github.com/otl-tools/otlbridge/pkg/logger"
	"github.com/otl-tools/otlbridge/pkg/preset"
)

// colorPalette assigns distinct display colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes asset loading, parameter editing,
// cooking and attribute painting to the frontend via bindings.
type App struct {
	ctx context.Context
	cfg *config.Config
	log *zap.Logger

	eng     hapi.Engine
	session *asset.Session
	store   *preset.Store // nil when running on the in-memory store
	host    *appHost

	mu         sync.Mutex
	assets     map[int]*asset.Asset
	nextHandle int
}

// AssetInfo describes one loaded asset to the frontend.
type AssetInfo struct {
	Handle      int        `json:"handle"`
	Name        string     `json:"name"`
	LibraryPath string     `json:"libraryPath"`
	Nodes       []NodeInfo `json:"nodes"`
}

// NodeInfo describes one geo node of a loaded asset. Paintable nodes
// accept the attribute bindings keyed by GeoNode.
type NodeInfo struct {
	GeoNode   int    `json:"geoNode"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Paintable bool   `json:"paintable"`
}

// NewApp builds the backend from configuration: logger, engine backend,
// preset store and session.
func NewApp(cfg *config.Config) *App {
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	log := logger.New(cfg.Logging.Level, fileCfg)

	a := &App{
		cfg:    cfg,
		log:    log,
		assets: make(map[int]*asset.Asset),
	}
	a.host = &appHost{log: log, scripts: make(map[string]string)}
	a.eng = a.openEngine()

	var presets geo.PresetStore
	if cfg.Presets.Path != "" {
		store, err := preset.Open(cfg.Presets.Path)
		if err != nil {
			log.Warn("preset store unavailable, presets will not persist",
				zap.String("path", cfg.Presets.Path), zap.Error(err))
			presets = preset.NewMemory()
		} else {
			a.store = store
			presets = store
		}
	} else {
		presets = preset.NewMemory()
	}

	a.session = asset.NewSession(a.eng, log, presets, asset.Options{
		BrushRate:           cfg.Paint.BrushRate,
		PaintFirstVertex:    cfg.Paint.PaintFirstVertex,
		ImportTemplatedGeos: cfg.Import.TemplatedGeos,
		EnableCooking:       cfg.Engine.EnableCooking,
	})
	return a
}

// openEngine selects the configured engine backend, falling back to the
// in-memory engine when the native one is unavailable.
func (a *App) openEngine() hapi.Engine {
	if a.cfg.Engine.Backend == "native" {
		eng, err := native.New()
		if err == nil {
			return eng
		}
		a.log.Warn("native engine unavailable, using in-memory backend",
			zap.Error(err))
	}
	return memengine.New(a.log)
}

// startup is called by Wails on app startup. The context is saved so we
// can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.log.Info("bridge started",
		zap.String("backend", a.cfg.Engine.Backend),
		zap.Bool("cooking", a.cfg.Engine.EnableCooking))
}

// shutdown tears down live assets and closes the preset store.
func (a *App) shutdown(ctx context.Context) {
	for _, live := range a.session.Assets() {
		if err := live.Destroy(); err != nil {
			a.log.Warn("asset teardown failed",
				zap.String("asset", live.Name), zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("preset store close failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// LoadAsset loads an asset library file, instantiates its first asset and
// performs the initial build. This is the entry binding called when the
// user opens a library.
func (a *App) LoadAsset(path string) (AssetInfo, error) {
	live, err := a.session.LoadAsset(path, a.host)
	if err != nil {
		a.log.Error("asset load failed", zap.String("path", path), zap.Error(err))
		return AssetInfo{}, err
	}

	a.mu.Lock()
	a.nextHandle++
	handle := a.nextHandle
	a.assets[handle] = live
	a.mu.Unlock()

	a.log.Info("asset loaded",
		zap.String("asset", live.Name), zap.Int("handle", handle))
	return a.assetInfo(handle, live), nil
}

// Info re-reads a loaded asset's node table. Useful after Rebuild or
// Recook, which may create or destroy geo nodes.
func (a *App) Info(handle int) (AssetInfo, error) {
	live, err := a.asset(handle)
	if err != nil {
		return AssetInfo{}, err
	}
	return a.assetInfo(handle, live), nil
}

// DestroyAsset tears down a loaded asset and releases its handle.
func (a *App) DestroyAsset(handle int) error {
	live, err := a.asset(handle)
	if err != nil {
		return err
	}
	a.mu.Lock()
	delete(a.assets, handle)
	a.mu.Unlock()
	return live.Destroy()
}

// Rebuild performs a full rebuild of the asset, keeping parameter edits.
func (a *App) Rebuild(handle int) error {
	live, err := a.asset(handle)
	if err != nil {
		return err
	}
	return live.Rebuild()
}

// Recook performs an incremental cook and node refresh.
func (a *App) Recook(handle int) error {
	live, err := a.asset(handle)
	if err != nil {
		return err
	}
	return live.Recook()
}

func (a *App) asset(handle int) (*asset.Asset, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	live, ok := a.assets[handle]
	if !ok {
		return nil, hapi.NotFound("no asset with handle %d", handle)
	}
	return live, nil
}

func (a *App) assetInfo(handle int, live *asset.Asset) AssetInfo {
	info := AssetInfo{
		Handle:      handle,
		Name:        live.Name,
		LibraryPath: live.LibraryPath,
		Nodes:       []NodeInfo{},
	}
	for _, n := range live.Nodes() {
		info.Nodes = append(info.Nodes, NodeInfo{
			GeoNode:   int(n.Geo),
			Name:      n.Name,
			Path:      n.Path(),
			Paintable: n.AttributeManager() != nil,
		})
	}
	return info
}

// ParameterTree renders the asset's parameter interface as a flat control
// list in display order, honoring folder tab selections.
func (a *App) ParameterTree(handle int) ([]ParmControl, error) {
	live, err := a.asset(handle)
	if err != nil {
		return nil, err
	}
	return renderParms(live.Parms())
}

// SetParm writes one parameter's tuple and recooks. Exactly one of the
// three value slices should be non-empty, matching the parameter's type.
func (a *App) SetParm(handle, parmID int, ints []int, floats []float64, strs []string) error {
	live, err := a.asset(handle)
	if err != nil {
		return err
	}
	ctrl, ok := live.Parms().ControlFor(parmID)
	if !ok {
		return hapi.NotFound("no parameter %d on asset %s", parmID, live.Name)
	}
	// The control's slices view the cached value arrays, so a failed
	// push must restore the previous tuple or the next ParameterTree
	// would render the rejected value.
	var prevInt []int
	var prevFloat []float64
	var prevString []string
	switch {
	case ctrl.Int != nil:
		if len(ints) != len(ctrl.Int) {
			return hapi.InvalidArgument("parameter %d wants %d ints, got %d",
				parmID, len(ctrl.Int), len(ints))
		}
		prevInt = append(prevInt, ctrl.Int...)
		copy(ctrl.Int, ints)
	case ctrl.Float != nil:
		if len(floats) != len(ctrl.Float) {
			return hapi.InvalidArgument("parameter %d wants %d floats, got %d",
				parmID, len(ctrl.Float), len(floats))
		}
		prevFloat = append(prevFloat, ctrl.Float...)
		copy(ctrl.Float, floats)
	case ctrl.String != nil:
		if len(strs) != len(ctrl.String) {
			return hapi.InvalidArgument("parameter %d wants %d strings, got %d",
				parmID, len(ctrl.String), len(strs))
		}
		prevString = append(prevString, ctrl.String...)
		copy(ctrl.String, strs)
	default:
		return hapi.InvalidArgument("parameter %d holds no values", parmID)
	}
	if err := live.Parms().Push(ctrl); err != nil {
		switch {
		case prevInt != nil:
			copy(ctrl.Int, prevInt)
		case prevFloat != nil:
			copy(ctrl.Float, prevFloat)
		case prevString != nil:
			copy(ctrl.String, prevString)
		}
		return err
	}
	return live.Recook()
}

// SelectFolder records a folder list tab selection. The next
// ParameterTree call renders the newly selected folder's controls.
func (a *App) SelectFolder(handle, listIndex, selection int) error {
	live, err := a.asset(handle)
	if err != nil {
		return err
	}
	live.Parms().Selections().Set(listIndex, selection, -1)
	return nil
}

// Meshes returns the triangle meshes of every part of the asset's display
// geometry, colored from the palette in part order.
func (a *App) Meshes(handle int) ([]MeshData, error) {
	live, err := a.asset(handle)
	if err != nil {
		return nil, err
	}
	meshes := []MeshData{}
	i := 0
	for _, n := range live.Nodes() {
		for _, part := range n.Parts() {
			color := colorPalette[i%len(colorPalette)]
			meshes = append(meshes, meshData(n.Geo, part.ID, part.Name, part.Mesh, color))
			i++
		}
	}
	return meshes, nil
}

// PaintableAttribute describes one paintable attribute to the frontend.
type PaintableAttribute struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	TupleSize int    `json:"tupleSize"`
	PaintMode int    `json:"paintMode"`
	Active    bool   `json:"active"`
}

// PaintableAttributes lists the paint attributes of a geo node. Nodes
// without paintable geometry report an error.
func (a *App) PaintableAttributes(handle, geoNode int) ([]PaintableAttribute, error) {
	mgr, err := a.attrManager(handle, geoNode)
	if err != nil {
		return nil, err
	}
	out := []PaintableAttribute{}
	active := mgr.Active()
	for _, attr := range mgr.Attributes() {
		out = append(out, PaintableAttribute{
			Name:      attr.Name,
			Type:      attr.Type().String(),
			TupleSize: attr.TupleSize(),
			PaintMode: attr.PaintMode(),
			Active:    attr == active,
		})
	}
	return out, nil
}

// SetActiveAttribute selects the attribute paint strokes apply to.
func (a *App) SetActiveAttribute(handle, geoNode int, name string) error {
	mgr, err := a.attrManager(handle, geoNode)
	if err != nil {
		return err
	}
	return mgr.SetActive(name)
}

// Paint applies one brush stamp to the given vertices of the node's
// active attribute.
func (a *App) Paint(handle, geoNode int, vertices []int, factor float64, inverse bool) error {
	mgr, err := a.attrManager(handle, geoNode)
	if err != nil {
		return err
	}
	attr := mgr.Active()
	if attr == nil {
		return hapi.NotFound("no active paint attribute on node %d", geoNode)
	}
	for _, v := range vertices {
		attr.Paint(v, factor, inverse)
	}
	return nil
}

// FillAttribute floods the attribute's active component span with the
// brush value.
func (a *App) FillAttribute(handle, geoNode int, name string) error {
	attr, err := a.attribute(handle, geoNode, name)
	if err != nil {
		return err
	}
	attr.Fill()
	return nil
}

// FitAttribute rescales a numeric attribute's paint range to its data.
func (a *App) FitAttribute(handle, geoNode int, name string) error {
	attr, err := a.attribute(handle, geoNode, name)
	if err != nil {
		return err
	}
	attr.Fit()
	return nil
}

// AttributeColors returns the per-vertex RGBA visualization of an
// attribute, flattened as 4 floats per vertex.
func (a *App) AttributeColors(handle, geoNode int, name string) ([]float32, error) {
	attr, err := a.attribute(handle, geoNode, name)
	if err != nil {
		return nil, err
	}
	colors := attr.ColorRepresentation()
	out := make([]float32, 0, len(colors)*4)
	for _, c := range colors {
		out = append(out, c.R, c.G, c.B, c.A)
	}
	return out, nil
}

// SetPaintValue sets the brush value of an attribute. The slice matching
// the attribute's type is used; the others are ignored.
func (a *App) SetPaintValue(handle, geoNode int, name string, ints []int, floats []float64, strs []string) error {
	attr, err := a.attribute(handle, geoNode, name)
	if err != nil {
		return err
	}
	switch attr.Type() {
	case attrib.TypeBool, attrib.TypeInt:
		return attr.SetIntPaintValue(ints)
	case attrib.TypeFloat:
		return attr.SetFloatPaintValue(floats)
	case attrib.TypeString:
		return attr.SetStringPaintValue(strs)
	}
	return hapi.InvalidArgument("attribute %s has no storage type", name)
}

// SetAttributeType migrates an attribute to a new storage type, casting
// existing values.
func (a *App) SetAttributeType(handle, geoNode int, name, typ string) error {
	attr, err := a.attribute(handle, geoNode, name)
	if err != nil {
		return err
	}
	switch typ {
	case "bool":
		attr.SetType(attrib.TypeBool)
	case "int":
		attr.SetType(attrib.TypeInt)
	case "float":
		attr.SetType(attrib.TypeFloat)
	case "string":
		attr.SetType(attrib.TypeString)
	default:
		return hapi.InvalidArgument("unknown attribute type %q", typ)
	}
	return nil
}

// SetAttributeTupleSize resizes an attribute's tuple, preserving the
// shared prefix of existing values.
func (a *App) SetAttributeTupleSize(handle, geoNode int, name string, size int) error {
	attr, err := a.attribute(handle, geoNode, name)
	if err != nil {
		return err
	}
	attr.SetTupleSize(size)
	return nil
}

// SetPaintMode selects colour or single-component painting for an
// attribute.
func (a *App) SetPaintMode(handle, geoNode int, name string, mode int) error {
	if mode < attrib.PaintModeColour {
		return hapi.InvalidArgument("unknown paint mode %d", mode)
	}
	attr, err := a.attribute(handle, geoNode, name)
	if err != nil {
		return err
	}
	attr.SetPaintMode(mode)
	return nil
}

func (a *App) attrManager(handle, geoNode int) (*attrib.Manager, error) {
	live, err := a.asset(handle)
	if err != nil {
		return nil, err
	}
	n, err := live.Node(hapi.NodeID(geoNode))
	if err != nil {
		return nil, err
	}
	mgr := n.AttributeManager()
	if mgr == nil {
		return nil, hapi.NotFound("geo node %d carries no paintable geometry", geoNode)
	}
	return mgr, nil
}

func (a *App) attribute(handle, geoNode int, name string) (*attrib.Attribute, error) {
	mgr, err := a.attrManager(handle, geoNode)
	if err != nil {
		return nil, err
	}
	return mgr.Attribute(name)
}

// appHost receives part lifecycle commands during geo synchronization.
// Mesh state lives on the nodes themselves; the host tracks attached
// scripts and logs part churn for diagnosis.
type appHost struct {
	log *zap.Logger

	mu      sync.Mutex
	scripts map[string]string
}

func (h *appHost) CreatePart(n *geo.Node, partID int) {
	h.log.Debug("part created", zap.String("geo", n.Path()), zap.Int("part", partID))
}

func (h *appHost) DestroyPart(n *geo.Node, partID int) {
	h.log.Debug("part destroyed", zap.String("geo", n.Path()), zap.Int("part", partID))
}

func (h *appHost) SetPartMesh(n *geo.Node, partID int, mesh *hapi.Mesh, materialID int) {
}

func (h *appHost) AttachScript(n *geo.Node, script string) {
	h.mu.Lock()
	h.scripts[n.Path()] = script
	h.mu.Unlock()
	h.log.Info("script attached", zap.String("geo", n.Path()), zap.String("script", script))
}

// Script returns the script attached to a geo path, if any.
func (h *appHost) Script(path string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.scripts[path]
	return s, ok
}
