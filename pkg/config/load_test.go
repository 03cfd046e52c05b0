package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadExplicitMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("explicitly named missing file accepted")
	}
}

func TestLoadWithoutFileKeepsDefaults(t *testing.T) {
	// Point the search at an empty config dir so no user file interferes.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.Engine.Backend != def.Engine.Backend ||
		cfg.Paint.BrushRate != def.Paint.BrushRate ||
		cfg.Logging.Level != def.Logging.Level {
		t.Errorf("search without a file changed defaults: %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otlbridge.yaml")
	src := `
engine:
  backend: native
  enable_cooking: false
  library_paths:
    - /opt/otls
paint:
  brush_rate: 0.5
  paint_first_vertex: true
presets:
  path: /tmp/presets.db
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.Backend != "native" || cfg.Engine.EnableCooking {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if len(cfg.Engine.LibraryPaths) != 1 || cfg.Engine.LibraryPaths[0] != "/opt/otls" {
		t.Errorf("library paths = %v", cfg.Engine.LibraryPaths)
	}
	if cfg.Paint.BrushRate != 0.5 || !cfg.Paint.PaintFirstVertex {
		t.Errorf("paint = %+v", cfg.Paint)
	}
	if cfg.Presets.Path != "/tmp/presets.db" {
		t.Errorf("presets = %+v", cfg.Presets)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Import.TemplatedGeos {
		t.Error("import section changed without being set")
	}
}

func TestLoadClampsBrushRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otlbridge.yaml")
	if err := os.WriteFile(path, []byte("paint:\n  brush_rate: 3.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Paint.BrushRate != 1 {
		t.Errorf("brush rate = %g, want clamped to 1", cfg.Paint.BrushRate)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otlbridge.yaml")
	if err := os.WriteFile(path, []byte("engine: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml accepted")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "otlbridge.yaml")
	cfg := Default()
	cfg.Engine.Backend = "native"
	cfg.Paint.BrushRate = 0.7

	if err := Save(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Engine.Backend != "native" || loaded.Paint.BrushRate != 0.7 {
		t.Errorf("round trip = %+v", loaded)
	}
}
