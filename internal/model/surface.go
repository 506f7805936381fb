package model

// BoundaryType is the transport boundary condition attached to a surface.
type BoundaryType string

const (
	// Transmission lets particles cross freely (the default).
	Transmission BoundaryType = "transmission"

	// Vacuum kills particles that cross outward. The outermost surface
	// of every model must be vacuum-bounded or particles escape to
	// undefined space.
	Vacuum BoundaryType = "vacuum"
)

// Point is a position in cm.
type Point struct {
	X, Y, Z float64
}

// Surface is a primitive quadric surface. The signed evaluation
// f(p) partitions space: f < 0 is the negative halfspace (inside a
// sphere, below a plane), f > 0 the positive halfspace. The sign
// convention matches the engine's region expressions.
type Surface interface {
	// ID is the engine-facing numeric id. Must be unique and positive.
	ID() int

	// Boundary returns the surface boundary condition.
	Boundary() BoundaryType

	// Evaluate returns the signed surface function at p.
	Evaluate(p Point) float64

	// kind and coeffs feed XML export; see xml.go.
	kind() string
	coeffs() []float64
}

type surfaceBase struct {
	id       int
	boundary BoundaryType
}

func (s surfaceBase) ID() int { return s.id }

func (s surfaceBase) Boundary() BoundaryType {
	if s.boundary == "" {
		return Transmission
	}
	return s.boundary
}

// XPlane is the plane x = X0.
type XPlane struct {
	surfaceBase
	X0 float64
}

// NewXPlane creates an x-plane surface.
func NewXPlane(id int, x0 float64) *XPlane {
	return &XPlane{surfaceBase{id: id}, x0}
}

func (s *XPlane) Evaluate(p Point) float64 { return p.X - s.X0 }
func (s *XPlane) kind() string             { return "x-plane" }
func (s *XPlane) coeffs() []float64        { return []float64{s.X0} }

// YPlane is the plane y = Y0.
type YPlane struct {
	surfaceBase
	Y0 float64
}

// NewYPlane creates a y-plane surface.
func NewYPlane(id int, y0 float64) *YPlane {
	return &YPlane{surfaceBase{id: id}, y0}
}

func (s *YPlane) Evaluate(p Point) float64 { return p.Y - s.Y0 }
func (s *YPlane) kind() string             { return "y-plane" }
func (s *YPlane) coeffs() []float64        { return []float64{s.Y0} }

// ZPlane is the plane z = Z0.
type ZPlane struct {
	surfaceBase
	Z0 float64
}

// NewZPlane creates a z-plane surface.
func NewZPlane(id int, z0 float64) *ZPlane {
	return &ZPlane{surfaceBase{id: id}, z0}
}

func (s *ZPlane) Evaluate(p Point) float64 { return p.Z - s.Z0 }
func (s *ZPlane) kind() string             { return "z-plane" }
func (s *ZPlane) coeffs() []float64        { return []float64{s.Z0} }

// Sphere is a sphere of radius R centered at Center.
type Sphere struct {
	surfaceBase
	Center Point
	R      float64
}

// NewSphere creates a sphere surface.
func NewSphere(id int, center Point, r float64) *Sphere {
	return &Sphere{surfaceBase{id: id}, center, r}
}

// NewBoundarySphere creates a sphere with an explicit boundary condition.
func NewBoundarySphere(id int, center Point, r float64, bc BoundaryType) *Sphere {
	return &Sphere{surfaceBase{id: id, boundary: bc}, center, r}
}

func (s *Sphere) Evaluate(p Point) float64 {
	dx := p.X - s.Center.X
	dy := p.Y - s.Center.Y
	dz := p.Z - s.Center.Z
	return dx*dx + dy*dy + dz*dz - s.R*s.R
}

func (s *Sphere) kind() string { return "sphere" }

func (s *Sphere) coeffs() []float64 {
	return []float64{s.Center.X, s.Center.Y, s.Center.Z, s.R}
}
