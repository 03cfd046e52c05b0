package attrib

import (
	"math"
	"testing"
)

func almost(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPaintFloatRateLimited(t *testing.T) {
	a := floatAttr(t, 4, 1)
	a.BrushRate = 0.2
	if err := a.SetFloatPaintValue([]float64{1}); err != nil {
		t.Fatalf("brush: %v", err)
	}

	a.Paint(1, 1.0, false)
	if got := a.FloatData()[1]; !almost(got, 0.2) {
		t.Fatalf("first stroke = %g, want 0.2", got)
	}
	a.Paint(1, 1.0, false)
	if got := a.FloatData()[1]; !almost(got, 0.4) {
		t.Fatalf("second stroke = %g, want 0.4", got)
	}

	// A weaker stamp moves proportionally less.
	a.Paint(2, 0.5, false)
	if got := a.FloatData()[2]; !almost(got, 0.1) {
		t.Errorf("half-factor stroke = %g, want 0.1", got)
	}
}

func TestPaintFirstVertexExcluded(t *testing.T) {
	a := floatAttr(t, 4, 1)
	if err := a.SetFloatPaintValue([]float64{1}); err != nil {
		t.Fatalf("brush: %v", err)
	}

	a.Paint(0, 1.0, false)
	if got := a.FloatData()[0]; got != 0 {
		t.Fatalf("vertex 0 painted by default: %g", got)
	}

	a.PaintFirstVertex = true
	a.Paint(0, 1.0, false)
	if got := a.FloatData()[0]; got == 0 {
		t.Error("vertex 0 not painted with the opt-in set")
	}

	// Out-of-range indices are ignored either way.
	a.Paint(4, 1.0, false)
	a.Paint(-1, 1.0, false)
}

func TestPaintInverseTargetsMirror(t *testing.T) {
	a := floatAttr(t, 4, 1)
	if err := a.SetFloatPaintValue([]float64{1}); err != nil {
		t.Fatalf("brush: %v", err)
	}

	// Inverse of a full brush over [0,1] targets 0: no movement from 0.
	a.Paint(1, 1.0, true)
	if got := a.FloatData()[1]; got != 0 {
		t.Errorf("inverse stroke moved %g", got)
	}
}

func TestPaintForceSetOutOfRangeBrush(t *testing.T) {
	a := floatAttr(t, 4, 1)
	if err := a.SetFloatPaintValueRaw([]float64{2.5}); err != nil {
		t.Fatalf("brush: %v", err)
	}

	a.Paint(1, 0.1, false)
	if got := a.FloatData()[1]; got != 2.5 {
		t.Errorf("out-of-range brush should force-set, got %g", got)
	}
}

func TestPaintIntSteps(t *testing.T) {
	a := New()
	if err := a.Init(4, "level", TypeInt, 1); err != nil {
		t.Fatalf("init: %v", err)
	}
	a.BrushRate = 0.2
	if err := a.SetIntPaintValue([]int{10}); err != nil {
		t.Fatalf("brush: %v", err)
	}

	// Range [0,10], rate 0.2: each full stroke moves at most 2.
	a.Paint(1, 1.0, false)
	if got := a.IntData()[1]; got != 2 {
		t.Fatalf("first stroke = %d, want 2", got)
	}
	a.Paint(1, 1.0, false)
	if got := a.IntData()[1]; got != 4 {
		t.Fatalf("second stroke = %d, want 4", got)
	}
}

func TestPaintBoolNudges(t *testing.T) {
	a := New()
	if err := a.Init(3, "flag", TypeBool, 1); err != nil {
		t.Fatalf("init: %v", err)
	}

	a.Paint(1, 1.0, false)
	if got := a.IntData()[1]; got != 1 {
		t.Errorf("positive stroke = %d, want 1", got)
	}
	a.Paint(1, -1.0, false)
	if got := a.IntData()[1]; got != 0 {
		t.Errorf("negative stroke = %d, want 0", got)
	}
}

func TestPaintStringOverwrites(t *testing.T) {
	a := New()
	if err := a.Init(3, "tag", TypeString, 1); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := a.SetStringPaintValue([]string{"oak"}); err != nil {
		t.Fatalf("brush: %v", err)
	}

	a.Paint(1, 0.01, false)
	if got := a.StringData()[1]; got != "oak" {
		t.Errorf("string stroke = %q, want oak", got)
	}
}

func TestPaintComponentMode(t *testing.T) {
	a := floatAttr(t, 2, 3)
	a.BrushRate = 1
	if err := a.SetFloatPaintValue([]float64{1, 1, 1}); err != nil {
		t.Fatalf("brush: %v", err)
	}
	a.SetPaintMode(PaintModeComponent + 1)

	a.Paint(1, 1.0, false)
	got := a.FloatData()
	if got[3] != 0 || got[5] != 0 {
		t.Errorf("untargeted components painted: %v", got)
	}
	if got[4] != 1 {
		t.Errorf("targeted component = %g, want 1", got[4])
	}
}

func TestFillCoversEveryVertex(t *testing.T) {
	a := floatAttr(t, 3, 2)
	if err := a.SetFloatPaintValue([]float64{0.25, 0.75}); err != nil {
		t.Fatalf("brush: %v", err)
	}

	a.Fill()
	got := a.FloatData()
	for v := 0; v < 3; v++ {
		if got[v*2] != 0.25 || got[v*2+1] != 0.75 {
			t.Fatalf("fill data = %v", got)
		}
	}
}

func TestFitTracksDataExtremes(t *testing.T) {
	a := floatAttr(t, 3, 1)
	copy(a.FloatData(), []float64{-2, 0.5, 4})

	a.Fit()
	lo, hi := a.FloatRange()
	if lo != -2 || hi != 4 {
		t.Errorf("fit range = [%g,%g], want [-2,4]", lo, hi)
	}
}
