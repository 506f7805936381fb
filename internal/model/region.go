package model

import (
	"fmt"
	"strings"
)

// Region is a boolean combination of surface halfspaces. Contains
// classifies a point; String renders the engine's region expression
// syntax ("-1 2", "~(3 | 4)").
type Region interface {
	Contains(p Point) bool
	String() string
}

// Side selects a halfspace of a surface.
type Side int

const (
	// Negative is the f(p) < 0 side: inside a sphere, below a plane.
	Negative Side = iota
	// Positive is the f(p) > 0 side.
	Positive
)

// Halfspace is a primitive region: one side of one surface.
type Halfspace struct {
	Surface Surface
	Side    Side
}

// Neg returns the negative halfspace of s.
func Neg(s Surface) Halfspace { return Halfspace{Surface: s, Side: Negative} }

// Pos returns the positive halfspace of s.
func Pos(s Surface) Halfspace { return Halfspace{Surface: s, Side: Positive} }

// Contains reports whether p lies strictly on this side of the surface.
// Points exactly on the surface belong to neither halfspace.
func (h Halfspace) Contains(p Point) bool {
	v := h.Surface.Evaluate(p)
	if h.Side == Negative {
		return v < 0
	}
	return v > 0
}

func (h Halfspace) String() string {
	if h.Side == Negative {
		return fmt.Sprintf("-%d", h.Surface.ID())
	}
	return fmt.Sprintf("%d", h.Surface.ID())
}

// Intersection is the region inside all of its operands.
type Intersection []Region

// And intersects regions.
func And(rs ...Region) Intersection { return Intersection(rs) }

func (i Intersection) Contains(p Point) bool {
	for _, r := range i {
		if !r.Contains(p) {
			return false
		}
	}
	return true
}

func (i Intersection) String() string {
	parts := make([]string, len(i))
	for k, r := range i {
		parts[k] = parenthesize(r)
	}
	return strings.Join(parts, " ")
}

// Union is the region inside any of its operands.
type Union []Region

// Or unions regions.
func Or(rs ...Region) Union { return Union(rs) }

func (u Union) Contains(p Point) bool {
	for _, r := range u {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

func (u Union) String() string {
	parts := make([]string, len(u))
	for k, r := range u {
		parts[k] = parenthesize(r)
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// Complement is the region outside its operand.
type Complement struct {
	Of Region
}

// Not complements a region.
func Not(r Region) Complement { return Complement{Of: r} }

func (c Complement) Contains(p Point) bool { return !c.Of.Contains(p) }

func (c Complement) String() string {
	return "~" + parenthesize(c.Of)
}

// parenthesize wraps composite operands so operator precedence in the
// rendered expression matches the tree.
func parenthesize(r Region) string {
	switch r.(type) {
	case Halfspace, Union, Complement:
		// Halfspaces are atoms; unions and complements self-delimit.
		return r.String()
	default:
		return "(" + r.String() + ")"
	}
}
