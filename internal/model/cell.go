package model

// VoidFill marks a cell with no material (vacuum interior).
const VoidFill = 0

// Cell pairs a region with a fill. Cells are the engine's spatial
// partition unit: together they must tile the model without overlap,
// or particles are lost in undefined space.
type Cell struct {
	// ID is the engine-facing numeric id. Must be unique and positive.
	ID int `json:"id"`

	// Name is a human-readable label ("detector", "environment").
	Name string `json:"name"`

	// Region is the cell's extent.
	Region Region `json:"-"`

	// MaterialID references a Material, or VoidFill for vacuum.
	MaterialID int `json:"material_id"`
}

// Void reports whether the cell has no material fill.
func (c *Cell) Void() bool { return c.MaterialID == VoidFill }
