package memengine

import (
	"fmt"

	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// AssetDef is the in-process definition of one procedural asset: its
// parameter interface plus a cook function that produces geometry from the
// current parameter values. Defs are built either programmatically or by
// loading an asset script (see script.go).
type AssetDef struct {
	Name  string
	Parms []ParmDecl

	// Cook produces the asset's geometry nodes for the given values.
	Cook func(v *ParmValues) ([]GeoSpec, error)
}

// ParmDecl declares one parameter. Folder lists carry their folders in
// Folders; all other fields describe a leaf control.
type ParmDecl struct {
	Name  string
	Label string
	Type  hapi.ParmType
	Size  int // tuple width; 0 means 1 (3 for colour)

	Invisible bool
	JoinNext  bool
	LabelNone bool

	Min float64
	Max float64

	DefaultInt    []int
	DefaultFloat  []float64
	DefaultString []string

	Choices []ChoiceDecl
	Folders []FolderDecl // folder list members, in display order
}

// ChoiceDecl is one popup menu entry.
type ChoiceDecl struct {
	Label string
	Value string
}

// FolderDecl is one tab of a folder list.
type FolderDecl struct {
	Name      string
	Label     string
	Invisible bool
	Children  []ParmDecl
}

// GeoSpec is the cook-time output for one geometry node.
type GeoSpec struct {
	Name      string
	Type      hapi.GeoType
	Editable  bool
	Templated bool

	// Script, when non-empty, is published as the detail-level binding
	// attribute so hosts can attach behaviour to the cooked output.
	Script string

	// Coords seeds the curve node's coords parameter on first cook.
	// Only meaningful for GeoTypeCurve.
	Coords string

	Parts []PartSpec
}

// PartSpec is the cook-time output for one part of a geometry node.
type PartSpec struct {
	Name       string
	MaterialID int

	// Solid is tessellated into the part mesh. A zero Solid yields an
	// empty mesh.
	Solid Solid

	// Points are explicit point positions (3 floats each). When set they
	// define the part's point domain and an implicit "P" float attribute;
	// otherwise the part has no points.
	Points []float32

	// PointAttrs carry per-point data sized TupleSize per point.
	PointAttrs []PointAttr
}

// PointAttr is one per-point attribute emitted by a cook.
type PointAttr struct {
	Name      string
	Storage   hapi.StorageType
	TupleSize int

	IntData    []int
	FloatData  []float64
	StringData []string
}

// ParmValues gives cook functions read access to the current parameter
// values of an instance, addressed by parameter name.
type ParmValues struct {
	byName map[string]hapi.ParmInfo
	ints   []int
	floats []float64
	strs   []string
}

// Int returns component c of the named int parameter, or 0 if absent.
func (v *ParmValues) Int(name string, c int) int {
	info, ok := v.byName[name]
	if !ok || !info.IsInt() || c < 0 || c >= info.Size {
		return 0
	}
	return v.ints[info.IntValuesIndex+c]
}

// Float returns component c of the named float parameter, or 0 if absent.
func (v *ParmValues) Float(name string, c int) float64 {
	info, ok := v.byName[name]
	if !ok || !info.IsFloat() || c < 0 || c >= info.Size {
		return 0
	}
	return v.floats[info.FloatValuesIndex+c]
}

// String returns component c of the named string parameter, or "" if absent.
func (v *ParmValues) String(name string, c int) string {
	info, ok := v.byName[name]
	if !ok || !info.IsString() || c < 0 || c >= info.Size {
		return ""
	}
	return v.strs[info.StringValuesIndex+c]
}

// Toggle returns the named toggle as a bool.
func (v *ParmValues) Toggle(name string) bool {
	return v.Int(name, 0) != 0
}

// parmTable is the flattened, engine-visible form of a parameter interface:
// the descriptor array plus the three value arrays and the choice array.
type parmTable struct {
	infos   []hapi.ParmInfo
	ints    []int
	floats  []float64
	strs    []string
	choices []hapi.ParmChoiceInfo
}

func (t *parmTable) values() *ParmValues {
	byName := make(map[string]hapi.ParmInfo, len(t.infos))
	for _, info := range t.infos {
		byName[info.Name] = info
	}
	return &ParmValues{byName: byName, ints: t.ints, floats: t.floats, strs: t.strs}
}

// clone deep-copies the value arrays so each instance mutates its own.
func (t *parmTable) clone() *parmTable {
	c := &parmTable{
		infos:   t.infos,
		choices: t.choices,
		ints:    make([]int, len(t.ints)),
		floats:  make([]float64, len(t.floats)),
		strs:    make([]string, len(t.strs)),
	}
	copy(c.ints, t.ints)
	copy(c.floats, t.floats)
	copy(c.strs, t.strs)
	return c
}

// flattenParms lays out a declaration tree as the flat descriptor array.
// A folder list entry is immediately followed by its folders, and the
// members of sibling folders follow contiguously, grouped per folder.
func flattenParms(decls []ParmDecl) (*parmTable, error) {
	t := &parmTable{}
	if err := flattenInto(t, decls, -1); err != nil {
		return nil, err
	}
	return t, nil
}

func flattenInto(t *parmTable, decls []ParmDecl, parentID int) error {
	for _, d := range decls {
		if d.Type == hapi.ParmTypeFolderList {
			if err := flattenFolderList(t, d, parentID); err != nil {
				return err
			}
			continue
		}
		if d.Type == hapi.ParmTypeFolder {
			return fmt.Errorf("parm %q: folders may only appear inside a folder list", d.Name)
		}
		if err := emitLeaf(t, d, parentID); err != nil {
			return err
		}
	}
	return nil
}

func flattenFolderList(t *parmTable, d ParmDecl, parentID int) error {
	listID := len(t.infos)
	t.infos = append(t.infos, hapi.ParmInfo{
		ID:                listID,
		ParentID:          parentID,
		Type:              hapi.ParmTypeFolderList,
		Size:              len(d.Folders),
		Name:              d.Name,
		Label:             d.Label,
		Invisible:         d.Invisible,
		IntValuesIndex:    -1,
		FloatValuesIndex:  -1,
		StringValuesIndex: -1,
	})

	folderIDs := make([]int, len(d.Folders))
	for i, f := range d.Folders {
		id := len(t.infos)
		folderIDs[i] = id
		t.infos = append(t.infos, hapi.ParmInfo{
			ID:                id,
			ParentID:          listID,
			Type:              hapi.ParmTypeFolder,
			Size:              countDirect(f.Children),
			Name:              f.Name,
			Label:             f.Label,
			Invisible:         f.Invisible,
			IntValuesIndex:    -1,
			FloatValuesIndex:  -1,
			StringValuesIndex: -1,
		})
	}
	for i, f := range d.Folders {
		if err := flattenInto(t, f.Children, folderIDs[i]); err != nil {
			return err
		}
	}
	return nil
}

// countDirect counts the entries a folder directly owns in the flat array.
// A nested folder list counts as one; its folders and members belong to it.
func countDirect(decls []ParmDecl) int {
	return len(decls)
}

func emitLeaf(t *parmTable, d ParmDecl, parentID int) error {
	size := d.Size
	if size == 0 {
		size = 1
		if d.Type == hapi.ParmTypeColour {
			size = 3
		}
	}
	info := hapi.ParmInfo{
		ID:                len(t.infos),
		ParentID:          parentID,
		Type:              d.Type,
		Size:              size,
		Name:              d.Name,
		Label:             d.Label,
		Invisible:         d.Invisible,
		JoinNext:          d.JoinNext,
		LabelNone:         d.LabelNone,
		IntValuesIndex:    -1,
		FloatValuesIndex:  -1,
		StringValuesIndex: -1,
		Min:               d.Min,
		Max:               d.Max,
	}

	switch {
	case info.IsInt():
		info.IntValuesIndex = len(t.ints)
		for c := 0; c < size; c++ {
			t.ints = append(t.ints, at(d.DefaultInt, c, 0))
		}
	case info.IsFloat():
		info.FloatValuesIndex = len(t.floats)
		for c := 0; c < size; c++ {
			t.floats = append(t.floats, at(d.DefaultFloat, c, 0))
		}
	case info.IsString():
		info.StringValuesIndex = len(t.strs)
		for c := 0; c < size; c++ {
			t.strs = append(t.strs, at(d.DefaultString, c, ""))
		}
	case d.Type == hapi.ParmTypeSeparator:
		// No backing value.
	default:
		return fmt.Errorf("parm %q: unsupported leaf type %s", d.Name, d.Type)
	}

	if len(d.Choices) > 0 {
		info.ChoiceIndex = len(t.choices)
		info.ChoiceCount = len(d.Choices)
		for _, ch := range d.Choices {
			t.choices = append(t.choices, hapi.ParmChoiceInfo{
				ParentParmID: info.ID,
				Label:        ch.Label,
				Value:        ch.Value,
			})
		}
	}

	t.infos = append(t.infos, info)
	return nil
}

func at[T any](s []T, i int, fallback T) T {
	if i < len(s) {
		return s[i]
	}
	if len(s) > 0 {
		return s[len(s)-1]
	}
	return fallback
}
