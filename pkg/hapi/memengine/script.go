package memengine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// Asset scripts are Lisp source evaluated in a zygomys sandbox. A script
// declares one or more assets, each with a parameter interface, followed by
// geo forms that build the cooked output:
//
//	(asset "shelf")
//	(folder-list "main"
//	  (folder "dims" :label "Dimensions"
//	    (parm-float "width" :default 600 :min 100 :max 2000))
//	  (folder "paint" :label "Paint"
//	    (parm-toggle "paintable" :default 1)))
//
//	(geo "body"
//	  (part "panel"
//	    (box :dims (vec3 (parm "width") 20 200))
//	    (points (vec3 0 0 0) (vec3 1 0 0))
//	    (point-attr "mask" :storage :float :fill 0.1)))
//
// loadScript evaluates the source once with default values to collect the
// declarations; each asset's cook re-evaluates the whole source against the
// instance's current values, the same fresh-sandbox-per-evaluation model the
// interactive shell uses.

// loadScript parses asset definitions out of a script source.
func loadScript(source string) ([]*AssetDef, error) {
	b := &builder{}
	if err := b.run(source); err != nil {
		return nil, err
	}
	if len(b.defs) == 0 {
		return nil, fmt.Errorf("script defines no assets")
	}

	defs := b.defs
	for _, def := range defs {
		name := def.Name
		def.Cook = func(v *ParmValues) ([]GeoSpec, error) {
			cb := &builder{values: v, cookTarget: name}
			if err := cb.run(source); err != nil {
				return nil, err
			}
			return cb.geosByAsset[name], nil
		}
	}
	return defs, nil
}

// builder accumulates script output during one evaluation. The declaration
// pass runs with nil values; cook passes carry the instance values for the
// asset being cooked.
type builder struct {
	defs    []*AssetDef
	current *AssetDef

	// pending holds declarations not yet claimed by a folder. Arguments
	// evaluate before the enclosing call, so folders pull their children
	// back out of this list.
	pending []*ParmDecl

	values     *ParmValues
	cookTarget string

	geosByAsset map[string][]GeoSpec
}

func (b *builder) run(source string) error {
	if strings.TrimSpace(source) == "" {
		return nil
	}
	if b.geosByAsset == nil {
		b.geosByAsset = make(map[string][]GeoSpec)
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, b)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	if _, err := env.Run(); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	b.flush()
	return nil
}

// flush attaches unclaimed declarations to the current asset.
func (b *builder) flush() {
	if b.current == nil {
		b.pending = nil
		return
	}
	for _, d := range b.pending {
		b.current.Parms = append(b.current.Parms, *d)
	}
	b.pending = nil
}

func (b *builder) claim(d *ParmDecl) {
	for i, p := range b.pending {
		if p == d {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			return
		}
	}
}

// declFor finds a leaf declaration by name in the current asset's interface,
// searching folder lists recursively. Used by the parm value accessor.
func (b *builder) declFor(name string) *ParmDecl {
	if b.current != nil {
		if d := findDecl(b.current.Parms, name); d != nil {
			return d
		}
	}
	for _, p := range b.pending {
		if d := findDecl([]ParmDecl{*p}, name); d != nil {
			return d
		}
	}
	return nil
}

func findDecl(decls []ParmDecl, name string) *ParmDecl {
	for i := range decls {
		d := &decls[i]
		if d.Name == name {
			return d
		}
		for j := range d.Folders {
			if found := findDecl(d.Folders[j].Children, name); found != nil {
				return found
			}
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

type sexpParm struct {
	decl *ParmDecl
}

func (p *sexpParm) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(parm-decl %q)", p.decl.Name)
}
func (p *sexpParm) Type() *zygo.RegisteredType { return nil }

type sexpFolder struct {
	folder FolderDecl
}

func (f *sexpFolder) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(folder %q)", f.folder.Name)
}
func (f *sexpFolder) Type() *zygo.RegisteredType { return nil }

type sexpChoice struct {
	choice ChoiceDecl
}

func (c *sexpChoice) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(choice %q %q)", c.choice.Label, c.choice.Value)
}
func (c *sexpChoice) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct {
	v [3]float64
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.v[0], v.v[1], v.v[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpSolid struct {
	solid Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string { return "(solid)" }
func (s *sexpSolid) Type() *zygo.RegisteredType            { return nil }

type sexpPoints struct {
	points []float32
}

func (p *sexpPoints) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(points n=%d)", len(p.points)/3)
}
func (p *sexpPoints) Type() *zygo.RegisteredType { return nil }

type sexpPointAttr struct {
	name    string
	storage hapi.StorageType
	tuple   int
	fill    zygo.Sexp
}

func (a *sexpPointAttr) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(point-attr %q)", a.name)
}
func (a *sexpPointAttr) Type() *zygo.RegisteredType { return nil }

type sexpPart struct {
	part PartSpec
}

func (p *sexpPart) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %q)", p.part.Name)
}
func (p *sexpPart) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// (asset "name")
	env.AddFunction("asset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("asset: expected a name")
		}
		assetName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("asset: %w", err)
		}
		b.flush()
		b.current = &AssetDef{Name: assetName}
		b.defs = append(b.defs, b.current)
		return zygo.SexpNull, nil
	})

	// Leaf parameter declarations.
	env.AddFunction("parm_int", declBuiltin(b, hapi.ParmTypeInt))
	env.AddFunction("parm_float", declBuiltin(b, hapi.ParmTypeFloat))
	env.AddFunction("parm_string", declBuiltin(b, hapi.ParmTypeString))
	env.AddFunction("parm_toggle", declBuiltin(b, hapi.ParmTypeToggle))
	env.AddFunction("parm_colour", declBuiltin(b, hapi.ParmTypeColour))
	env.AddFunction("parm_file", declBuiltin(b, hapi.ParmTypeFile))
	env.AddFunction("separator", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		d := &ParmDecl{Type: hapi.ParmTypeSeparator, Name: fmt.Sprintf("sep%d", len(b.pending))}
		b.pending = append(b.pending, d)
		return &sexpParm{decl: d}, nil
	})

	// (choice "Label" "value")
	env.AddFunction("choice", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("choice: expected label and value")
		}
		label, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("choice: %w", err)
		}
		value, err := toString(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("choice: %w", err)
		}
		return &sexpChoice{choice: ChoiceDecl{Label: label, Value: value}}, nil
	})

	// (folder "name" :label "..." decls...)
	env.AddFunction("folder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("folder: expected a name")
		}
		folderName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("folder: %w", err)
		}
		f := &sexpFolder{folder: FolderDecl{Name: folderName, Label: folderName}}
		if v, ok := pa.kw["label"]; ok {
			if f.folder.Label, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("folder: label: %w", err)
			}
		}
		if v, ok := pa.kw["invisible"]; ok {
			f.folder.Invisible = toBool(v)
		}
		for _, arg := range pa.positional[1:] {
			child, ok := arg.(*sexpParm)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("folder %q: expected parameter declarations, got %s", folderName, arg.SexpString(nil))
			}
			b.claim(child.decl)
			f.folder.Children = append(f.folder.Children, *child.decl)
		}
		return f, nil
	})

	// (folder-list "name" folders...)
	env.AddFunction("folder_list", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("folder-list: expected a name")
		}
		listName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("folder-list: %w", err)
		}
		d := &ParmDecl{Name: listName, Label: listName, Type: hapi.ParmTypeFolderList}
		if v, ok := pa.kw["label"]; ok {
			if d.Label, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("folder-list: label: %w", err)
			}
		}
		for _, arg := range pa.positional[1:] {
			f, ok := arg.(*sexpFolder)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("folder-list %q: expected folders, got %s", listName, arg.SexpString(nil))
			}
			d.Folders = append(d.Folders, f.folder)
		}
		b.pending = append(b.pending, d)
		return &sexpParm{decl: d}, nil
	})

	// (parm "name" [component]) reads the current value of a parameter.
	// During the declaration pass this evaluates to the default.
	env.AddFunction("parm", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("parm: expected a name")
		}
		parmName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("parm: %w", err)
		}
		component := 0
		if len(pa.positional) > 1 {
			f, err := toFloat64(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("parm %q: component: %w", parmName, err)
			}
			component = int(f)
		}
		return b.parmValue(parmName, component)
	})

	// (vec3 x y z)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3: expected 3 components")
		}
		var v [3]float64
		for i, arg := range pa.positional {
			f, err := toFloat64(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
			}
			v[i] = f
		}
		return &sexpVec3{v: v}, nil
	})

	// (box :dims (vec3 x y z) :at (vec3 ...) :rot (vec3 ...))
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		dims := [3]float64{1, 1, 1}
		if v, ok := pa.kw["dims"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: dims: %w", err)
			}
			dims = vec
		}
		s := Box(dims[0], dims[1], dims[2])
		s, err := placeSolid(s, pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpSolid{solid: s}, nil
	})

	// (dowel :length l :radius r :at (vec3 ...) :rot (vec3 ...))
	env.AddFunction("dowel", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		length, radius := 10.0, 1.0
		if v, ok := pa.kw["length"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("dowel: length: %w", err)
			}
			length = f
		}
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("dowel: radius: %w", err)
			}
			radius = f
		}
		s := Dowel(length, radius)
		s, err := placeSolid(s, pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dowel: %w", err)
		}
		return &sexpSolid{solid: s}, nil
	})

	// (union a b ...) and (difference a b)
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var acc Solid
		for _, arg := range pa.positional {
			s, err := toSolid(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: %w", err)
			}
			acc = Union(acc, s)
		}
		return &sexpSolid{solid: acc}, nil
	})
	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("difference: expected 2 solids")
		}
		a, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		bs, err := toSolid(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		return &sexpSolid{solid: Difference(a, bs)}, nil
	})

	// (points (vec3 ...) (vec3 ...) ...)
	env.AddFunction("points", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		p := &sexpPoints{}
		for _, arg := range pa.positional {
			v, err := toVec3(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("points: %w", err)
			}
			p.points = append(p.points, float32(v[0]), float32(v[1]), float32(v[2]))
		}
		return p, nil
	})

	// (point-attr "name" :storage :float :tuple 1 :fill 0.1)
	env.AddFunction("point_attr", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("point-attr: expected a name")
		}
		attrName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point-attr: %w", err)
		}
		a := &sexpPointAttr{name: attrName, storage: hapi.StorageTypeFloat, tuple: 1}
		if v, ok := pa.kw["storage"]; ok {
			if a.storage, err = toStorage(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("point-attr %q: %w", attrName, err)
			}
		}
		if v, ok := pa.kw["tuple"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("point-attr %q: tuple: %w", attrName, err)
			}
			a.tuple = int(f)
		}
		if v, ok := pa.kw["fill"]; ok {
			a.fill = v
		}
		return a, nil
	})

	// (part "name" :material 0 solid points attrs...)
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("part: expected a name")
		}
		partName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: %w", err)
		}
		spec := PartSpec{Name: partName}
		if v, ok := pa.kw["material"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("part %q: material: %w", partName, err)
			}
			spec.MaterialID = int(f)
		}
		var attrs []*sexpPointAttr
		for _, arg := range pa.positional[1:] {
			switch v := arg.(type) {
			case *sexpSolid:
				spec.Solid = Union(spec.Solid, v.solid)
			case *sexpPoints:
				spec.Points = append(spec.Points, v.points...)
			case *sexpPointAttr:
				attrs = append(attrs, v)
			default:
				return zygo.SexpNull, fmt.Errorf("part %q: unexpected argument %s", partName, arg.SexpString(nil))
			}
		}
		pointCount := len(spec.Points) / 3
		for _, a := range attrs {
			attr, err := expandAttr(a, pointCount)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("part %q: %w", partName, err)
			}
			spec.PointAttrs = append(spec.PointAttrs, attr)
		}
		return &sexpPart{part: spec}, nil
	})

	// (geo "name" :type :default :script "..." :coords "..." parts...)
	env.AddFunction("geo", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("geo: expected a name")
		}
		geoName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("geo: %w", err)
		}
		spec := GeoSpec{Name: geoName, Type: hapi.GeoTypeDefault}
		if v, ok := pa.kw["type"]; ok {
			if spec.Type, err = toGeoType(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("geo %q: %w", geoName, err)
			}
		}
		if v, ok := pa.kw["editable"]; ok {
			spec.Editable = toBool(v)
		}
		if v, ok := pa.kw["templated"]; ok {
			spec.Templated = toBool(v)
		}
		if v, ok := pa.kw["script"]; ok {
			if spec.Script, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("geo %q: script: %w", geoName, err)
			}
		}
		if v, ok := pa.kw["coords"]; ok {
			if spec.Coords, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("geo %q: coords: %w", geoName, err)
			}
		}
		for _, arg := range pa.positional[1:] {
			p, ok := arg.(*sexpPart)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("geo %q: expected parts, got %s", geoName, arg.SexpString(nil))
			}
			spec.Parts = append(spec.Parts, p.part)
		}
		assetName := ""
		if b.current != nil {
			assetName = b.current.Name
		}
		b.geosByAsset[assetName] = append(b.geosByAsset[assetName], spec)
		return zygo.SexpNull, nil
	})
}

// declBuiltin builds the registration function for one leaf parameter type.
func declBuiltin(b *builder, typ hapi.ParmType) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("%s: expected a name", name)
		}
		parmName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		d := &ParmDecl{Name: parmName, Label: parmName, Type: typ}
		switch typ {
		case hapi.ParmTypeInt, hapi.ParmTypeToggle:
			d.Max = 10
		case hapi.ParmTypeFloat, hapi.ParmTypeColour:
			d.Max = 1
		}
		if v, ok := pa.kw["label"]; ok {
			if d.Label, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: label: %w", name, parmName, err)
			}
		}
		if v, ok := pa.kw["size"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: size: %w", name, parmName, err)
			}
			d.Size = int(f)
		}
		if v, ok := pa.kw["min"]; ok {
			if d.Min, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: min: %w", name, parmName, err)
			}
		}
		if v, ok := pa.kw["max"]; ok {
			if d.Max, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: max: %w", name, parmName, err)
			}
		}
		if v, ok := pa.kw["invisible"]; ok {
			d.Invisible = toBool(v)
		}
		if v, ok := pa.kw["join-next"]; ok {
			d.JoinNext = toBool(v)
		}
		if v, ok := pa.kw["label-none"]; ok {
			d.LabelNone = toBool(v)
		}
		if v, ok := pa.kw["default"]; ok {
			if err := applyDefault(d, v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: default: %w", name, parmName, err)
			}
		}
		if v, ok := pa.kw["choices"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: choices: %w", name, parmName, err)
			}
			for _, item := range items {
				ch, ok := item.(*sexpChoice)
				if !ok {
					return zygo.SexpNull, fmt.Errorf("%s %q: choices: expected choice entries", name, parmName)
				}
				d.Choices = append(d.Choices, ch.choice)
			}
		}
		b.pending = append(b.pending, d)
		return &sexpParm{decl: d}, nil
	}
}

// applyDefault fills a declaration's default tuple from a scalar or list.
func applyDefault(d *ParmDecl, v zygo.Sexp) error {
	items := []zygo.Sexp{v}
	if listed, err := sexpListToSlice(v); err == nil && listed != nil {
		items = listed
	}
	for _, item := range items {
		switch {
		case d.Type == hapi.ParmTypeInt || d.Type == hapi.ParmTypeToggle:
			f, err := toFloat64(item)
			if err != nil {
				return err
			}
			d.DefaultInt = append(d.DefaultInt, int(f))
		case d.Type == hapi.ParmTypeFloat || d.Type == hapi.ParmTypeColour:
			f, err := toFloat64(item)
			if err != nil {
				return err
			}
			d.DefaultFloat = append(d.DefaultFloat, f)
		default:
			s, err := toString(item)
			if err != nil {
				return err
			}
			d.DefaultString = append(d.DefaultString, s)
		}
	}
	return nil
}

// parmValue resolves (parm "name" c) against instance values at cook time,
// or against declared defaults during the declaration pass.
func (b *builder) parmValue(name string, component int) (zygo.Sexp, error) {
	d := b.declFor(name)
	if d == nil {
		return zygo.SexpNull, fmt.Errorf("parm %q: not declared", name)
	}
	live := b.values != nil && b.current != nil && b.current.Name == b.cookTarget
	switch {
	case d.Type == hapi.ParmTypeInt || d.Type == hapi.ParmTypeToggle:
		n := at(d.DefaultInt, component, 0)
		if live {
			n = b.values.Int(name, component)
		}
		return &zygo.SexpInt{Val: int64(n)}, nil
	case d.Type == hapi.ParmTypeFloat || d.Type == hapi.ParmTypeColour:
		f := at(d.DefaultFloat, component, 0)
		if live {
			f = b.values.Float(name, component)
		}
		return &zygo.SexpFloat{Val: f}, nil
	default:
		s := at(d.DefaultString, component, "")
		if live {
			s = b.values.String(name, component)
		}
		return &zygo.SexpStr{S: s}, nil
	}
}

// expandAttr replicates a fill value across the point domain.
func expandAttr(a *sexpPointAttr, pointCount int) (PointAttr, error) {
	attr := PointAttr{Name: a.name, Storage: a.storage, TupleSize: a.tuple}
	n := pointCount * a.tuple
	switch a.storage {
	case hapi.StorageTypeInt:
		fill := 0
		if a.fill != nil {
			f, err := toFloat64(a.fill)
			if err != nil {
				return attr, fmt.Errorf("point-attr %q: fill: %w", a.name, err)
			}
			fill = int(f)
		}
		attr.IntData = make([]int, n)
		for i := range attr.IntData {
			attr.IntData[i] = fill
		}
	case hapi.StorageTypeFloat:
		fill := 0.0
		if a.fill != nil {
			f, err := toFloat64(a.fill)
			if err != nil {
				return attr, fmt.Errorf("point-attr %q: fill: %w", a.name, err)
			}
			fill = f
		}
		attr.FloatData = make([]float64, n)
		for i := range attr.FloatData {
			attr.FloatData[i] = fill
		}
	default:
		fill := ""
		if a.fill != nil {
			s, err := toString(a.fill)
			if err != nil {
				return attr, fmt.Errorf("point-attr %q: fill: %w", a.name, err)
			}
			fill = s
		}
		attr.StringData = make([]string, n)
		for i := range attr.StringData {
			attr.StringData[i] = fill
		}
	}
	return attr, nil
}

func placeSolid(s Solid, pa kwArgs) (Solid, error) {
	if v, ok := pa.kw["rot"]; ok {
		vec, err := toVec3(v)
		if err != nil {
			return s, fmt.Errorf("rot: %w", err)
		}
		s = s.Rotate(vec[0], vec[1], vec[2])
	}
	if v, ok := pa.kw["at"]; ok {
		vec, err := toVec3(v)
		if err != nil {
			return s, fmt.Errorf("at: %w", err)
		}
		s = s.Translate(vec[0], vec[1], vec[2])
	}
	return s, nil
}

func toSolid(s zygo.Sexp) (Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return Solid{}, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) ([3]float64, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.v, nil
	}
	return [3]float64{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toStorage(s zygo.Sexp) (hapi.StorageType, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected storage keyword (:int, :float, :string): %w", err)
	}
	switch name {
	case "int":
		return hapi.StorageTypeInt, nil
	case "float":
		return hapi.StorageTypeFloat, nil
	case "string":
		return hapi.StorageTypeString, nil
	}
	return 0, fmt.Errorf("invalid storage %q, expected int, float, or string", name)
}

func toGeoType(s zygo.Sexp) (hapi.GeoType, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected geo type keyword: %w", err)
	}
	switch name {
	case "default":
		return hapi.GeoTypeDefault, nil
	case "intermediate":
		return hapi.GeoTypeIntermediate, nil
	case "input":
		return hapi.GeoTypeInput, nil
	case "curve":
		return hapi.GeoTypeCurve, nil
	}
	return 0, fmt.Errorf("invalid geo type %q", name)
}

func toBool(s zygo.Sexp) bool {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val
	case *zygo.SexpInt:
		return v.Val != 0
	}
	return false
}
