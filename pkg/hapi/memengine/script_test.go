package memengine

import (
	"strings"
	"testing"

	"github.com/otl-tools/otlbridge/pkg/hapi"
)

const shelfScript = `
; A small shelf asset used across the script tests.
(asset "shelf")

(folder-list "main" :label "Main"
  (folder "dims" :label "Dimensions"
    (parm-int "slats" :label "Slats" :default 2 :min 1 :max 8
      :choices (list (choice "Few" "2") (choice "Many" "6")))
    (parm-float "gap" :label "Gap" :default 0.5 :min 0 :max 2))
  (folder "paint" :label "Paint"
    (parm-toggle "paintable" :label "Paintable" :default 1)))

(parm-string "tag" :label "Tag" :default "oak")

(geo "slats" :type :intermediate :script "rebuild_shelf"
  (part "row"
    (points (vec3 0 0 0) (vec3 (parm "gap") 0 0))
    (point-attr "mask" :storage :float :fill (parm "gap"))))
`

func TestLoadScriptDeclarations(t *testing.T) {
	defs, err := loadScript(shelfScript)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(defs) != 1 || defs[0].Name != "shelf" {
		t.Fatalf("expected one asset named shelf, got %v", defs)
	}

	table, err := flattenParms(defs[0].Parms)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}

	byName := make(map[string]hapi.ParmInfo)
	for _, p := range table.infos {
		byName[p.Name] = p
	}
	if byName["main"].Type != hapi.ParmTypeFolderList || byName["main"].Size != 2 {
		t.Errorf("main folder list: %+v", byName["main"])
	}
	if byName["slats"].ParentID != byName["dims"].ID {
		t.Errorf("slats should live in the dims folder")
	}
	if byName["slats"].ChoiceCount != 2 {
		t.Errorf("slats choices: expected 2, got %d", byName["slats"].ChoiceCount)
	}
	if byName["paintable"].Type != hapi.ParmTypeToggle {
		t.Errorf("paintable: expected toggle, got %s", byName["paintable"].Type)
	}
	if byName["tag"].ParentID != -1 {
		t.Errorf("tag should be a root parameter, got parent %d", byName["tag"].ParentID)
	}
	if got := table.strs[byName["tag"].StringValuesIndex]; got != "oak" {
		t.Errorf("tag default: expected oak, got %q", got)
	}
}

func TestScriptCookUsesCurrentValues(t *testing.T) {
	defs, err := loadScript(shelfScript)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := defs[0]

	table, err := flattenParms(def.Parms)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}

	geos, err := def.Cook(table.values())
	if err != nil {
		t.Fatalf("cook: %v", err)
	}
	if len(geos) != 1 || geos[0].Name != "slats" {
		t.Fatalf("expected one geo named slats, got %v", geos)
	}
	if geos[0].Type != hapi.GeoTypeIntermediate {
		t.Errorf("geo type: expected intermediate, got %s", geos[0].Type)
	}
	if geos[0].Script != "rebuild_shelf" {
		t.Errorf("script binding: got %q", geos[0].Script)
	}
	part := geos[0].Parts[0]
	if len(part.Points) != 6 {
		t.Fatalf("expected 2 points, got %d floats", len(part.Points))
	}
	if part.Points[3] != 0.5 {
		t.Errorf("second point x should follow the gap default, got %v", part.Points[3])
	}
	if part.PointAttrs[0].FloatData[0] != 0.5 {
		t.Errorf("mask fill should follow the gap default, got %v", part.PointAttrs[0].FloatData[0])
	}

	// A changed value flows into the next cook.
	v := table.values()
	for _, p := range table.infos {
		if p.Name == "gap" {
			table.floats[p.FloatValuesIndex] = 1.25
		}
	}
	geos, err = def.Cook(v)
	if err != nil {
		t.Fatalf("recook: %v", err)
	}
	if got := geos[0].Parts[0].Points[3]; got != 1.25 {
		t.Errorf("recook should see gap=1.25, got %v", got)
	}
}

func TestScriptThroughEngine(t *testing.T) {
	defs, err := loadScript(shelfScript)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	eng := New(nil)
	lib := eng.RegisterLibrary(defs...)
	names, res := eng.AssetNames(lib)
	if res != hapi.ResultSuccess || len(names) != 1 || names[0] != "shelf" {
		t.Fatalf("asset names: %s %v", res, names)
	}

	asset, res := eng.InstantiateAsset("shelf")
	if res != hapi.ResultSuccess {
		t.Fatalf("instantiate: %s", res)
	}
	if res := eng.Cook(asset); res != hapi.ResultSuccess {
		t.Fatalf("cook: %s (%s)", res, eng.StatusString())
	}
}

func TestLoadScriptErrors(t *testing.T) {
	if _, err := loadScript("(geo \"stray\")"); err == nil {
		t.Error("a script with no asset should fail to load")
	}
	if _, err := loadScript("(asset"); err == nil {
		t.Error("unbalanced source should fail to load")
	}
	_, err := loadScript(`(asset "x") (parm "ghost")`)
	if err == nil || !strings.Contains(err.Error(), "not declared") {
		t.Errorf("undeclared parm read should fail, got %v", err)
	}
}

func TestPreprocessSource(t *testing.T) {
	got := preprocessSource(`(parm-float "a" :min 0) ; note`)
	if !strings.Contains(got, "parm_float") {
		t.Errorf("kebab identifier not rewritten: %q", got)
	}
	if !strings.Contains(got, `"__kw_min"`) {
		t.Errorf("keyword not rewritten: %q", got)
	}
	if !strings.Contains(got, "// note") {
		t.Errorf("comment not rewritten: %q", got)
	}
	// Hyphens inside strings survive.
	if got := preprocessSource(`(asset "my-shelf")`); !strings.Contains(got, `"my-shelf"`) {
		t.Errorf("string literal mangled: %q", got)
	}
}
