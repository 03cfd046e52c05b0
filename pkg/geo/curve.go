package geo

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/otl-tools/otlbridge/pkg/hapi"
	"github.com/otl-tools/otlbridge/pkg/parm"
)

// coordsParmName is the curve parameter holding the control points as
// space-separated comma-triples ("0,0,0 1,0,2 ...").
const coordsParmName = "coords"

// Vec3 is one curve control point.
type Vec3 struct {
	X, Y, Z float64
}

// Curve is the editable control-point state of a curve geo.
type Curve struct {
	Points   []Vec3
	Editable bool
}

// refreshCurve rebuilds the node's curve from its own parameters,
// restoring a saved preset on first initialization. Per-object errors are
// swallowed so the rest of the asset still gets a chance to load.
func (n *Node) refreshCurve() {
	if !n.parmsInit {
		if n.presets != nil {
			if preset, ok := n.presets.Get(n.Path()); ok {
				res := n.eng.SetPreset(n.NodeID, preset)
				if err := hapi.CheckResult(n.eng, res, "SetPreset"); err != nil {
					n.log.Error("curve preset restore failed",
						zap.String("geo", n.Name), zap.Error(err))
				}
			}
		}
	}

	parms, err := n.Parms()
	if err != nil {
		n.log.Error("curve parameter fetch failed",
			zap.String("geo", n.Name), zap.Error(err))
		return
	}

	if n.curve == nil {
		n.curve = &Curve{Editable: n.IsEditable}
	}

	if err := n.curve.syncPointsFromParms(parms); err != nil {
		n.log.Error("curve point sync failed",
			zap.String("geo", n.Name), zap.Error(err))
		return
	}

	// The curve renders as a single part entity.
	if len(n.parts) == 0 {
		n.createPart(0)
	}
	mesh, res := n.eng.GetPartMesh(n.Asset, n.Object, n.Geo, 0)
	if res == hapi.ResultSuccess {
		n.parts[0].Mesh = mesh
		n.host.SetPartMesh(n, 0, mesh, -1)
	}
}

// Curve returns the node's curve state, nil for non-curve geos.
func (n *Node) Curve() *Curve { return n.curve }

// syncPointsFromParms re-reads the control points from the coords
// parameter.
func (c *Curve) syncPointsFromParms(parms *parm.Parms) error {
	ctrl, ok := parms.ControlByName(coordsParmName)
	if !ok || len(ctrl.String) == 0 {
		return hapi.NotFound("curve has no %q parameter", coordsParmName)
	}
	c.Points = parseCoords(ctrl.String[0])
	return nil
}

// parseCoords parses "x,y,z x,y,z ..." into points, skipping malformed
// triples.
func parseCoords(coords string) []Vec3 {
	var points []Vec3
	for _, token := range strings.Fields(coords) {
		comps := strings.Split(token, ",")
		if len(comps) != 3 {
			continue
		}
		x, errX := strconv.ParseFloat(comps[0], 64)
		y, errY := strconv.ParseFloat(comps[1], 64)
		z, errZ := strconv.ParseFloat(comps[2], 64)
		if errX != nil || errY != nil || errZ != nil {
			continue
		}
		points = append(points, Vec3{X: x, Y: y, Z: z})
	}
	return points
}
