package main

import (
	"github.com/otl-tools/otlbridge/pkg/hapi"
	"github.com/otl-tools/otlbridge/pkg/parm"
)

// ParmControl is the JSON-serializable form of one rendered parameter
// control, in display order. Tab strips appear inline where the folder
// list sits; the controls that follow belong to the selected folder.
type ParmControl struct {
	ID        int    `json:"id"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Label     string `json:"label"`
	Size      int    `json:"size"`
	JoinNext  bool   `json:"joinNext"`
	LabelNone bool   `json:"labelNone"`

	Min float64 `json:"min"`
	Max float64 `json:"max"`

	Int    []int     `json:"int,omitempty"`
	Float  []float64 `json:"float,omitempty"`
	String []string  `json:"string,omitempty"`

	Choices []ParmChoice `json:"choices,omitempty"`

	TabLabels   []string `json:"tabLabels,omitempty"`
	TabSelected int      `json:"tabSelected,omitempty"`
}

// ParmChoice is one popup menu entry.
type ParmChoice struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// dtoRenderer collects the walked control tree as DTOs without applying
// any edits; every control reports unchanged.
type dtoRenderer struct {
	controls []ParmControl
	tabCount int
}

// Compile-time interface check.
var _ parm.Renderer = (*dtoRenderer)(nil)

func (r *dtoRenderer) add(kind string, c parm.Control) {
	dto := ParmControl{
		ID:        c.Info.ID,
		Kind:      kind,
		Name:      c.Info.Name,
		Label:     c.Info.Label,
		Size:      c.Info.Size,
		JoinNext:  c.Info.JoinNext,
		LabelNone: c.Info.LabelNone,
		Min:       c.Info.Min,
		Max:       c.Info.Max,
	}
	if c.Int != nil {
		dto.Int = append(dto.Int, c.Int...)
	}
	if c.Float != nil {
		dto.Float = append(dto.Float, c.Float...)
	}
	if c.String != nil {
		dto.String = append(dto.String, c.String...)
	}
	for _, ch := range c.Choices {
		dto.Choices = append(dto.Choices, ParmChoice{Label: ch.Label, Value: ch.Value})
	}
	r.controls = append(r.controls, dto)
}

func (r *dtoRenderer) IntField(c parm.Control) bool    { r.add("int", c); return false }
func (r *dtoRenderer) IntDropdown(c parm.Control) bool { r.add("dropdown", c); return false }
func (r *dtoRenderer) Toggle(c parm.Control) bool      { r.add("toggle", c); return false }
func (r *dtoRenderer) FloatField(c parm.Control) bool  { r.add("float", c); return false }
func (r *dtoRenderer) ColourField(c parm.Control) bool { r.add("colour", c); return false }
func (r *dtoRenderer) StringField(c parm.Control) bool { r.add("string", c); return false }
func (r *dtoRenderer) FileField(c parm.Control) bool   { r.add("file", c); return false }

func (r *dtoRenderer) Separator() {
	r.controls = append(r.controls, ParmControl{Kind: "separator"})
}

// TabStrip records the folder list as an inline tab control and keeps the
// current selection; tabs change through the SelectFolder binding, which
// triggers a re-walk.
func (r *dtoRenderer) TabStrip(labels []string, selected int) int {
	r.controls = append(r.controls, ParmControl{
		Kind:        "tabs",
		Name:        "tabs",
		TabLabels:   append([]string(nil), labels...),
		TabSelected: selected,
	})
	r.tabCount++
	return selected
}

// renderParms walks a node's parameters into the DTO list.
func renderParms(p *parm.Parms) ([]ParmControl, error) {
	r := &dtoRenderer{}
	if _, err := p.Walk(r); err != nil {
		return nil, err
	}
	return r.controls, nil
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	GeoNode  int       `json:"geoNode"`
	PartID   int       `json:"partId"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

func meshData(geoNode hapi.NodeID, partID int, name string, mesh *hapi.Mesh, color string) MeshData {
	d := MeshData{
		GeoNode:  int(geoNode),
		PartID:   partID,
		PartName: name,
		Color:    color,
	}
	if mesh != nil {
		d.Vertices = mesh.Vertices
		d.Normals = mesh.Normals
		d.Indices = mesh.Indices
	}
	return d
}
