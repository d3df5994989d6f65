package render

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/crossfill/grid"
	"github.com/domino14/crossfill/solver"
)

func crossFill(t *testing.T) (*grid.Grid, solver.Assignment) {
	t.Helper()
	g, err := grid.Parse(strings.NewReader("#_#\n___\n#_#"))
	if err != nil {
		t.Fatal(err)
	}
	across, down := g.Variables()[0], g.Variables()[1]
	return g, solver.Assignment{across: "CAR", down: "CAT"}
}

func TestText(t *testing.T) {
	is := is.New(t)
	g, asg := crossFill(t)
	is.Equal(Text(g, asg), "█C█\nCAR\n█T█\n")
}

func TestTextLeavesUncoveredCellsBlank(t *testing.T) {
	is := is.New(t)
	// An isolated open cell belongs to no variable.
	g, err := grid.Parse(strings.NewReader("__#\n##_"))
	is.NoErr(err)
	v := g.Variables()[0]
	is.Equal(Text(g, solver.Assignment{v: "HI"}), "HI█\n██ \n")
}

func TestSavePNG(t *testing.T) {
	is := is.New(t)
	g, asg := crossFill(t)
	path := filepath.Join(t.TempDir(), "fill.png")
	is.NoErr(SavePNG(g, asg, path))

	f, err := os.Open(path)
	is.NoErr(err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	is.NoErr(err)
	is.Equal(cfg.Width, g.Width()*32)
	is.Equal(cfg.Height, g.Height()*32)
}
