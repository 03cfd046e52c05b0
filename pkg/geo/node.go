// Package geo mirrors the engine's geometry nodes and their parts, and
// keeps them synchronized with freshly cooked geometry. Each refresh diffs
// the cooked snapshot against cached state, creating and destroying child
// parts conservatively and rebuilding derived meshes and attribute
// buffers without losing locally painted data.
package geo

import (
	"go.uber.org/zap"

	"github.com/otl-tools/otlbridge/pkg/attrib"
	"github.com/otl-tools/otlbridge/pkg/hapi"
	"github.com/otl-tools/otlbridge/pkg/parm"
)

// ScriptBindingAttribute is the detail-level string attribute naming a
// host script to attach to the geo's entity.
const ScriptBindingAttribute = "host_script"

// Config carries the session settings a geo node needs. Constructed
// explicitly by the owning asset; nothing here is global.
type Config struct {
	ImportTemplatedGeos bool
	BrushRate           float64
	PaintFirstVertex    bool
}

// Host is the presentation layer geo synchronization emits commands to.
// Implementations create/destroy renderable child entities, hand meshes
// to them and attach scripts; they never reach back into the sync state.
type Host interface {
	CreatePart(geo *Node, partID int)
	DestroyPart(geo *Node, partID int)
	SetPartMesh(geo *Node, partID int, mesh *hapi.Mesh, materialID int)
	AttachScript(geo *Node, script string)
}

// PresetStore persists parameter presets keyed by a node's full
// hierarchical path.
type PresetStore interface {
	Get(path string) ([]byte, bool)
	Set(path string, preset []byte) error
}

// Part is one discrete piece of a geo node's output, mapped 1:1 to a
// renderable child entity owned by the Host.
type Part struct {
	ID         int
	Name       string
	MaterialID int
	Mesh       *hapi.Mesh
	VertexList []int
}

// Node mirrors one engine geometry node.
type Node struct {
	Asset  hapi.AssetID
	Object hapi.NodeID
	Geo    hapi.NodeID

	NodeID     hapi.NodeID
	Name       string
	Type       hapi.GeoType
	IsEditable bool
	IsDisplay  bool

	// ObjectPath is the owning object's hierarchical path; the node's
	// own path appends its name.
	ObjectPath string

	eng     hapi.Engine
	host    Host
	log     *zap.Logger
	cfg     Config
	presets PresetStore

	parts []*Part

	// attrManager is only set for intermediate (paint) geometry, bound
	// to the first part. Bootstrapped at most once per node lifetime.
	attrManager *attrib.Manager

	// parms backs editable curve geos; lazily initialized.
	parms     *parm.Parms
	parmsInit bool

	curve *Curve

	synced bool
}

// NewNode returns an unsynced node for the given engine geo. The first
// Refresh populates identity fields and parts.
func NewNode(
	eng hapi.Engine,
	host Host,
	log *zap.Logger,
	cfg Config,
	presets PresetStore,
	asset hapi.AssetID,
	object, geoID hapi.NodeID,
	objectPath string,
) *Node {
	if log == nil {
		log = zap.NewNop()
	}
	return &Node{
		Asset:      asset,
		Object:     object,
		Geo:        geoID,
		NodeID:     -1,
		Name:       "geo_name",
		Type:       hapi.GeoTypeDefault,
		IsDisplay:  true,
		ObjectPath: objectPath,
		eng:        eng,
		host:       host,
		log:        log,
		cfg:        cfg,
		presets:    presets,
	}
}

// Path returns the node's full hierarchical path, used as the preset key.
func (n *Node) Path() string {
	return n.ObjectPath + "/" + n.Name
}

// Parts returns the node's parts in id order.
func (n *Node) Parts() []*Part { return n.parts }

// PartCount returns the current number of parts.
func (n *Node) PartCount() int { return len(n.parts) }

// AttributeManager returns the paint attribute manager, nil when the node
// carries no paintable geometry.
func (n *Node) AttributeManager() *attrib.Manager { return n.attrManager }

// Parms returns the node's own parameters, fetching them on first use.
// Only editable geos (curves) carry node-level parameters.
func (n *Node) Parms() (*parm.Parms, error) {
	if !n.parmsInit {
		n.parms = parm.New(n.eng, n.NodeID, n.log)
		if err := n.parms.Fetch(); err != nil {
			return nil, err
		}
		n.parms.Editable = n.IsEditable
		n.parmsInit = true
	}
	return n.parms, nil
}

// Destroy releases all parts and attribute data, notifying the host.
func (n *Node) Destroy() {
	n.destroyAllParts()
	n.attrManager = nil
	n.parms = nil
	n.parmsInit = false
	n.synced = false
}

func (n *Node) destroyAllParts() {
	for _, part := range n.parts {
		n.host.DestroyPart(n, part.ID)
	}
	n.parts = nil
}

func (n *Node) createPart(partID int) *Part {
	part := &Part{ID: partID, Name: "uninitialized_part", MaterialID: -1}
	n.parts = append(n.parts, part)
	n.host.CreatePart(n, partID)
	return part
}
