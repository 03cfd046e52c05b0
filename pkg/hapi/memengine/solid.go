package memengine

import (
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/otl-tools/otlbridge/pkg/hapi"
)

// meshCells controls marching cubes tessellation resolution.
const meshCells = 64

// Solid is an SDF-backed solid. The zero value is empty and tessellates to
// an empty mesh.
type Solid struct {
	s sdf.SDF3
}

// Box returns a box of the given dimensions with its minimum corner at the
// origin, so placement translations move the corner rather than the centre.
func Box(x, y, z float64) Solid {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return Solid{}
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return Solid{s: sdf.Transform3D(s, m)}
}

// Dowel returns a cylinder of the given length and radius, axis along Z,
// base at the origin.
func Dowel(length, radius float64) Solid {
	s, err := sdf.Cylinder3D(length, radius, 0)
	if err != nil {
		return Solid{}
	}
	m := sdf.Translate3d(v3.Vec{Z: length / 2})
	return Solid{s: sdf.Transform3D(s, m)}
}

// Translate moves the solid by (x, y, z).
func (s Solid) Translate(x, y, z float64) Solid {
	if s.s == nil {
		return s
	}
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return Solid{s: sdf.Transform3D(s.s, m)}
}

// Rotate rotates the solid by Euler angles in degrees around X, Y, Z.
func (s Solid) Rotate(x, y, z float64) Solid {
	if s.s == nil {
		return s
	}
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0
	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return Solid{s: sdf.Transform3D(s.s, m)}
}

// Union returns the union of two solids.
func Union(a, b Solid) Solid {
	if a.s == nil {
		return b
	}
	if b.s == nil {
		return a
	}
	return Solid{s: sdf.Union3D(a.s, b.s)}
}

// Difference returns a minus b.
func Difference(a, b Solid) Solid {
	if a.s == nil || b.s == nil {
		return a
	}
	return Solid{s: sdf.Difference3D(a.s, b.s)}
}

// IsEmpty reports whether the solid carries no geometry.
func (s Solid) IsEmpty() bool {
	return s.s == nil
}

// mesh tessellates the solid with marching cubes. Vertices are emitted as a
// triangle soup with per-face normals.
func (s Solid) mesh() *hapi.Mesh {
	if s.s == nil {
		return &hapi.Mesh{}
	}

	renderer := render.NewMarchingCubesUniform(meshCells)
	triangles := render.ToTriangles(s.s, renderer)

	numVerts := len(triangles) * 3
	m := &hapi.Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
	}
	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, nx, ny, nz)
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m
}
