package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. Unknown handles: every binding rejects a handle that was never
//    issued, with an error naming the handle.
// ---------------------------------------------------------------------------

func TestUnknownHandleRejected(t *testing.T) {
	app := newTestApp(t)

	if _, err := app.ParameterTree(42); err == nil {
		t.Error("ParameterTree accepted an unknown handle")
	}
	if _, err := app.Meshes(42); err == nil {
		t.Error("Meshes accepted an unknown handle")
	}
	if err := app.Rebuild(42); err == nil {
		t.Error("Rebuild accepted an unknown handle")
	}
	if err := app.Recook(42); err == nil {
		t.Error("Recook accepted an unknown handle")
	}
	err := app.DestroyAsset(42)
	if err == nil {
		t.Fatal("DestroyAsset accepted an unknown handle")
	}
	if !strings.Contains(err.Error(), "42") {
		t.Errorf("error should name the handle, got %q", err)
	}
}

// ---------------------------------------------------------------------------
// 2. Missing and malformed library files -> load error, no handle leaked.
// ---------------------------------------------------------------------------

func TestLoadAssetBadLibrary(t *testing.T) {
	app := newTestApp(t)

	if _, err := app.LoadAsset("examples/no_such.otl.zy"); err == nil {
		t.Error("expected an error for a missing library file")
	}

	bad := filepath.Join(t.TempDir(), "bad.otl.zy")
	if err := os.WriteFile(bad, []byte("(asset \"broken\""), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := app.LoadAsset(bad); err == nil {
		t.Error("expected an error for unbalanced source")
	}

	if n := len(app.assets); n != 0 {
		t.Errorf("failed loads leaked %d handles", n)
	}
}

// ---------------------------------------------------------------------------
// 3. Paint bindings on a display node: the node exists but carries no
//    attribute manager.
// ---------------------------------------------------------------------------

func TestPaintRequiresPaintableNode(t *testing.T) {
	app := newTestApp(t)
	info, err := app.LoadAsset("examples/shelf.otl.zy")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var bodyNode int
	for _, n := range info.Nodes {
		if !n.Paintable {
			bodyNode = n.GeoNode
		}
	}

	if _, err := app.PaintableAttributes(info.Handle, bodyNode); err == nil {
		t.Error("PaintableAttributes accepted a non-paintable node")
	}
	if err := app.Paint(info.Handle, bodyNode, []int{0}, 1.0, false); err == nil {
		t.Error("Paint accepted a non-paintable node")
	}
}

// ---------------------------------------------------------------------------
// 4. SetParm arity and type mismatches leave values untouched.
// ---------------------------------------------------------------------------

func TestSetParmRejectsMismatch(t *testing.T) {
	app := newTestApp(t)
	info, err := app.LoadAsset("examples/shelf.otl.zy")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	controls, err := app.ParameterTree(info.Handle)
	if err != nil {
		t.Fatalf("parameter tree: %v", err)
	}
	gap := controlsByName(controls)["gap"]

	if err := app.SetParm(info.Handle, gap.ID, []int{3}, nil, nil); err == nil {
		t.Error("SetParm accepted ints for a float parameter")
	}
	if err := app.SetParm(info.Handle, gap.ID, nil, []float64{1, 2}, nil); err == nil {
		t.Error("SetParm accepted a wrong-arity float tuple")
	}
	if err := app.SetParm(info.Handle, 9999, nil, []float64{1}, nil); err == nil {
		t.Error("SetParm accepted an unknown parameter id")
	}

	controls, err = app.ParameterTree(info.Handle)
	if err != nil {
		t.Fatalf("parameter tree: %v", err)
	}
	if got := controlsByName(controls)["gap"].Float; len(got) != 1 || got[0] != 0.4 {
		t.Errorf("gap changed by rejected edits: %v", got)
	}
}

// ---------------------------------------------------------------------------
// 5. Destroy releases the handle; further calls fail.
// ---------------------------------------------------------------------------

func TestDestroyReleasesHandle(t *testing.T) {
	app := newTestApp(t)
	info, err := app.LoadAsset("examples/shelf.otl.zy")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := app.DestroyAsset(info.Handle); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := app.DestroyAsset(info.Handle); err == nil {
		t.Error("second destroy should fail")
	}
	if _, err := app.Meshes(info.Handle); err == nil {
		t.Error("Meshes should fail after destroy")
	}
}

// ---------------------------------------------------------------------------
// 6. Attribute edits reject unknown names, types and modes.
// ---------------------------------------------------------------------------

func TestAttributeEditValidation(t *testing.T) {
	app := newTestApp(t)
	info, err := app.LoadAsset("examples/shelf.otl.zy")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var wearNode int
	for _, n := range info.Nodes {
		if n.Paintable {
			wearNode = n.GeoNode
		}
	}

	if err := app.SetActiveAttribute(info.Handle, wearNode, "nope"); err == nil {
		t.Error("SetActiveAttribute accepted an unknown attribute")
	}
	if err := app.SetAttributeType(info.Handle, wearNode, "wear", "quaternion"); err == nil {
		t.Error("SetAttributeType accepted an unknown type name")
	}
	if err := app.SetPaintMode(info.Handle, wearNode, "wear", -1); err == nil {
		t.Error("SetPaintMode accepted a negative mode")
	}
	if err := app.SetPaintValue(info.Handle, wearNode, "wear", nil, []float64{1, 2, 3}, nil); err == nil {
		t.Error("SetPaintValue accepted a wrong-arity tuple")
	}
}

// ---------------------------------------------------------------------------
// 7. A push that fails after validation restores the previous tuple. The
//    cached values feed the next ParameterTree render, so a rejected edit
//    must not leak into them.
// ---------------------------------------------------------------------------

func TestSetParmPushFailureRestoresValue(t *testing.T) {
	app := newTestApp(t)
	info, err := app.LoadAsset("examples/shelf.otl.zy")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	controls, err := app.ParameterTree(info.Handle)
	if err != nil {
		t.Fatalf("parameter tree: %v", err)
	}
	slats := controlsByName(controls)["slats"]
	if len(slats.Int) != 1 || slats.Int[0] != 2 {
		t.Fatalf("unexpected slats value: %v", slats.Int)
	}

	// Destroying the asset behind the app's back makes the next push
	// fail after the tuple validation has passed.
	app.eng.DestroyAsset(app.assets[info.Handle].ID)

	if err := app.SetParm(info.Handle, slats.ID, []int{3}, nil, nil); err == nil {
		t.Fatal("SetParm succeeded against a destroyed asset")
	}

	controls, err = app.ParameterTree(info.Handle)
	if err != nil {
		t.Fatalf("parameter tree: %v", err)
	}
	if got := controlsByName(controls)["slats"].Int; len(got) != 1 || got[0] != 2 {
		t.Errorf("failed push leaked into the rendered value: %v", got)
	}
}
