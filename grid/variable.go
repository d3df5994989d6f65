package grid

import "fmt"

type Direction uint8

const (
	Across Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Across {
		return "across"
	}
	return "down"
}

// A Variable is one maximal run of open cells that must be filled by a
// single word. It is immutable once extracted from the grid, and
// comparable, so it can be used as a map key.
type Variable struct {
	Row       int
	Col       int
	Direction Direction
	Length    int
}

func (v Variable) String() string {
	return fmt.Sprintf("(%d,%d %s %d)", v.Row, v.Col, v.Direction, v.Length)
}

// Cell is a single grid coordinate.
type Cell struct {
	Row int
	Col int
}

// Cells returns the coordinates covered by v, in word order; Cells()[k]
// is the cell holding letter k of the variable's word.
func (v Variable) Cells() []Cell {
	cells := make([]Cell, v.Length)
	for k := 0; k < v.Length; k++ {
		if v.Direction == Across {
			cells[k] = Cell{Row: v.Row, Col: v.Col + k}
		} else {
			cells[k] = Cell{Row: v.Row + k, Col: v.Col}
		}
	}
	return cells
}
