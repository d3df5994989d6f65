// Package grid models a crossword structure: which cells are open, the
// word slots (variables) those cells form, and where the slots cross.
package grid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// OpenCell is the marker for a fillable cell in a structure file. Any
// other character is a blocked cell.
const OpenCell = '_'

// A StructureError reports a malformed structure description. It is
// fatal: no solve is ever attempted against a grid that failed to parse.
type StructureError struct {
	Row    int
	Reason string
}

func (e *StructureError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("structure: row %d: %s", e.Row, e.Reason)
	}
	return "structure: " + e.Reason
}

// An Overlap records that letter I of one variable and letter J of
// another must occupy the same cell.
type Overlap struct {
	I int
	J int
}

type varPair struct {
	a, b Variable
}

// Grid is a parsed crossword structure. It is immutable after parsing.
type Grid struct {
	width, height int
	open          [][]bool

	// variables is kept in extraction order (across runs row by row,
	// then down runs column by column). That order is the residual
	// tie-break everywhere the solver needs a total order.
	variables []Variable
	overlaps  map[varPair]Overlap
	neighbors map[Variable][]Variable
}

// Parse reads a structure description: one line per row, OpenCell for a
// fillable cell, anything else blocked. Every row must have the same
// width. Returns a *StructureError on malformed input.
func Parse(r io.Reader) (*Grid, error) {
	scanner := bufio.NewScanner(r)
	var open [][]bool
	rowIdx := 0
	width := -1
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if width == -1 {
			width = len([]rune(line))
			if width == 0 {
				return nil, &StructureError{Row: rowIdx, Reason: "empty row"}
			}
		}
		row := make([]bool, 0, width)
		for _, c := range line {
			row = append(row, c == OpenCell)
		}
		if len(row) != width {
			return nil, &StructureError{
				Row:    rowIdx,
				Reason: fmt.Sprintf("ragged row: width %d, expected %d", len(row), width),
			}
		}
		open = append(open, row)
		rowIdx++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, &StructureError{Row: -1, Reason: "no rows"}
	}

	g := &Grid{width: width, height: len(open), open: open}
	g.extractVariables()
	g.computeOverlaps()
	log.Debug().Int("width", g.width).Int("height", g.height).
		Int("variables", len(g.variables)).Int("crossings", len(g.overlaps)/2).
		Msg("parsed structure")
	return g, nil
}

// Load parses a structure file from disk.
func Load(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) IsOpen(row, col int) bool {
	return g.open[row][col]
}

// Variables returns every word slot in extraction order. Callers must
// not mutate the returned slice.
func (g *Grid) Variables() []Variable {
	return g.variables
}

// Neighbors returns the variables crossing v, in extraction order.
func (g *Grid) Neighbors(v Variable) []Variable {
	return g.neighbors[v]
}

// OverlapOf reports the crossing constraint between x and y, if any.
// It can be queried in either argument order; the indices returned are
// always relative to (x, y) as given.
func (g *Grid) OverlapOf(x, y Variable) (Overlap, bool) {
	ov, ok := g.overlaps[varPair{x, y}]
	return ov, ok
}

// extractVariables scans rows left to right and then columns top to
// bottom for maximal runs of open cells. A run of length 1 is not a
// word slot.
func (g *Grid) extractVariables() {
	for row := 0; row < g.height; row++ {
		start := -1
		for col := 0; col <= g.width; col++ {
			if col < g.width && g.open[row][col] {
				if start == -1 {
					start = col
				}
				continue
			}
			if start != -1 && col-start >= 2 {
				g.variables = append(g.variables, Variable{
					Row: row, Col: start, Direction: Across, Length: col - start,
				})
			}
			start = -1
		}
	}
	for col := 0; col < g.width; col++ {
		start := -1
		for row := 0; row <= g.height; row++ {
			if row < g.height && g.open[row][col] {
				if start == -1 {
					start = row
				}
				continue
			}
			if start != -1 && row-start >= 2 {
				g.variables = append(g.variables, Variable{
					Row: start, Col: col, Direction: Down, Length: row - start,
				})
			}
			start = -1
		}
	}
}

// computeOverlaps records the crossing cell for every across/down pair
// that shares a cell. Two parallel runs can never share a cell, so only
// across/down pairs need checking. Both orderings are stored so lookup
// is symmetric.
func (g *Grid) computeOverlaps() {
	g.overlaps = make(map[varPair]Overlap)
	g.neighbors = make(map[Variable][]Variable)
	for _, a := range g.variables {
		if a.Direction != Across {
			continue
		}
		for _, d := range g.variables {
			if d.Direction != Down {
				continue
			}
			if d.Col < a.Col || d.Col >= a.Col+a.Length {
				continue
			}
			if a.Row < d.Row || a.Row >= d.Row+d.Length {
				continue
			}
			i := d.Col - a.Col
			j := a.Row - d.Row
			g.overlaps[varPair{a, d}] = Overlap{I: i, J: j}
			g.overlaps[varPair{d, a}] = Overlap{I: j, J: i}
		}
	}
	// Neighbor lists in extraction order, for deterministic iteration.
	for _, v := range g.variables {
		for _, u := range g.variables {
			if v == u {
				continue
			}
			if _, ok := g.overlaps[varPair{v, u}]; ok {
				g.neighbors[v] = append(g.neighbors[v], u)
			}
		}
	}
}
