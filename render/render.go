// Package render turns a completed fill into terminal or image output.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/domino14/crossfill/grid"
	"github.com/domino14/crossfill/solver"
)

const blockRune = '█'

// letterGrid lays the assignment's words out on the grid. Cells not
// covered by any variable stay zero.
func letterGrid(g *grid.Grid, asg solver.Assignment) [][]rune {
	letters := make([][]rune, g.Height())
	for i := range letters {
		letters[i] = make([]rune, g.Width())
	}
	for v, word := range asg {
		for k, cell := range v.Cells() {
			letters[cell.Row][cell.Col] = rune(word[k])
		}
	}
	return letters
}

// Text renders the fill for a terminal: letters in open cells, solid
// blocks elsewhere.
func Text(g *grid.Grid, asg solver.Assignment) string {
	letters := letterGrid(g, asg)
	var sb strings.Builder
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			switch {
			case !g.IsOpen(row, col):
				sb.WriteRune(blockRune)
			case letters[row][col] != 0:
				sb.WriteRune(letters[row][col])
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}

const (
	cellSize   = 32
	cellBorder = 2
)

// Image renders the fill as an image: white open cells with centered
// letters on a black background.
func Image(g *grid.Grid, asg solver.Assignment) *image.RGBA {
	letters := letterGrid(g, asg)
	img := image.NewRGBA(image.Rect(0, 0, g.Width()*cellSize, g.Height()*cellSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	for row := 0; row < g.Height(); row++ {
		for col := 0; col < g.Width(); col++ {
			if !g.IsOpen(row, col) {
				continue
			}
			cell := image.Rect(
				col*cellSize+cellBorder, row*cellSize+cellBorder,
				(col+1)*cellSize-cellBorder, (row+1)*cellSize-cellBorder,
			)
			draw.Draw(img, cell, image.NewUniform(color.White), image.Point{}, draw.Src)
			if letters[row][col] == 0 {
				continue
			}
			s := string(letters[row][col])
			d := font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(color.Black),
				Face: face,
			}
			w := d.MeasureString(s)
			d.Dot = fixed.Point26_6{
				X: fixed.I(col*cellSize+cellSize/2) - w/2,
				Y: fixed.I(row*cellSize + cellSize/2 + face.Height/2 - face.Descent),
			}
			d.DrawString(s)
		}
	}
	return img
}

// SavePNG writes the rendered fill to a PNG file.
func SavePNG(g *grid.Grid, asg solver.Assignment, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, Image(g, asg)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
