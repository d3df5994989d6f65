package solver

import (
	"context"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/crossfill/grid"
	"github.com/domino14/crossfill/lexicon"
)

// A cross: one across slot and one down slot, both length 3, meeting at
// each word's middle letter.
const crossStructure = `#_#
___
#_#`

// One across of length 3 whose second letter is the first letter of a
// down of length 4.
const elbowStructure = `___#
#_##
#_##
#_##`

// Two across slots that never touch.
const parallelStructure = `___
###
___`

func mustGrid(t *testing.T, structure string) *grid.Grid {
	t.Helper()
	g, err := grid.Parse(strings.NewReader(structure))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func mustLexicon(t *testing.T, words ...string) *lexicon.Lexicon {
	t.Helper()
	lex, err := lexicon.FromWords("test", words)
	if err != nil {
		t.Fatal(err)
	}
	return lex
}

// assertValidFill checks the three constraints every solution must
// satisfy: word lengths, agreement at every crossing, and distinctness.
func assertValidFill(t *testing.T, g *grid.Grid, lex *lexicon.Lexicon, asg Assignment) {
	t.Helper()
	assert.Len(t, asg, len(g.Variables()))
	seen := map[string]grid.Variable{}
	for v, w := range asg {
		assert.Equal(t, v.Length, len(w), "word %q does not fit %s", w, v)
		assert.True(t, lex.Has(w), "word %q is not in the vocabulary", w)
		if prev, dup := seen[w]; dup {
			t.Errorf("word %q used for both %s and %s", w, prev, v)
		}
		seen[w] = v
		for _, u := range g.Neighbors(v) {
			ov, _ := g.OverlapOf(v, u)
			assert.Equal(t, asg[v][ov.I], asg[u][ov.J],
				"%s and %s disagree at their crossing", v, u)
		}
	}
}

func TestSolveCross(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, crossStructure)
	lex := mustLexicon(t, "CAT", "DOG", "CAR")
	asg, err := New(g, lex).Solve(context.Background())
	is.NoErr(err)
	assertValidFill(t, g, lex, asg)
}

func TestSolveCrossUnsatisfiable(t *testing.T) {
	g := mustGrid(t, crossStructure)
	lex := mustLexicon(t, "CAT", "DOG")
	_, err := New(g, lex).Solve(context.Background())
	assert.ErrorIs(t, err, ErrUnsatisfiable)
}

func TestSolveIsolatedVariable(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, "____")
	lex := mustLexicon(t, "WORD", "BIRD")
	asg, err := New(g, lex).Solve(context.Background())
	is.NoErr(err)
	is.Equal(len(asg), 1)
	word := asg[g.Variables()[0]]
	is.Equal(len(word), 4)
	is.True(lex.Has(word))
}

func TestNoWordReuse(t *testing.T) {
	g := mustGrid(t, parallelStructure)

	// A single word cannot fill two slots.
	_, err := New(g, mustLexicon(t, "CAT")).Solve(context.Background())
	assert.ErrorIs(t, err, ErrUnsatisfiable)

	// Two words can.
	lex := mustLexicon(t, "CAT", "DOG")
	asg, err := New(g, lex).Solve(context.Background())
	assert.NoError(t, err)
	assertValidFill(t, g, lex, asg)
}

func TestNodeConsistencyDropsWrongLengths(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, "____")
	s := New(g, mustLexicon(t, "WORD", "BIRD"))
	v := g.Variables()[0]

	// Simulate an unfiltered vocabulary leaking into a domain.
	s.domains[v] = append(s.domains[v], "CAT", "LONGWORD")
	s.EnforceNodeConsistency()
	is.Equal(s.Domain(v), []string{"BIRD", "WORD"})

	// Idempotent.
	s.EnforceNodeConsistency()
	is.Equal(s.Domain(v), []string{"BIRD", "WORD"})
}

func TestArcConsistencyPrunes(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, elbowStructure)
	s := New(g, mustLexicon(t, "CAT", "DOG", "ABET", "BIRD"))
	across, down := g.Variables()[0], g.Variables()[1]

	is.True(s.EnforceArcConsistency())
	// DOG has no down word starting with O; BIRD has no across word
	// with B second.
	is.Equal(s.Domain(across), []string{"CAT"})
	is.Equal(s.Domain(down), []string{"ABET"})
}

func TestArcConsistencyIdempotent(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, elbowStructure)
	s := New(g, mustLexicon(t, "CAT", "DOG", "ABET", "BIRD"))

	is.True(s.EnforceArcConsistency())
	first := map[grid.Variable][]string{}
	for _, v := range g.Variables() {
		first[v] = s.Domain(v)
	}
	is.True(s.EnforceArcConsistency())
	for _, v := range g.Variables() {
		is.Equal(s.Domain(v), first[v])
	}
}

// Arc consistency may only remove words with no support; anything that
// participates in a solution must survive it.
func TestArcConsistencyKeepsSolutionWords(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, crossStructure)
	lex := mustLexicon(t, "CAT", "DOG", "CAR")
	s := New(g, lex)
	asg, err := s.Solve(context.Background())
	is.NoErr(err)
	for v, w := range asg {
		found := false
		for _, dw := range s.Domain(v) {
			if dw == w {
				found = true
			}
		}
		is.True(found)
	}
}

func TestDomainWipeoutSkipsSearch(t *testing.T) {
	g := mustGrid(t, elbowStructure)
	// No down word starts with A or O, so the across domain empties
	// during preprocessing.
	s := New(g, mustLexicon(t, "CAT", "DOG", "BIRD", "NAVY"))
	_, err := s.Solve(context.Background())
	assert.ErrorIs(t, err, ErrUnsatisfiable)
	assert.Equal(t, 0, s.Stats().Nodes, "search should never have started")
}

func TestIsolatedVariableWithNoCandidates(t *testing.T) {
	g := mustGrid(t, "____")
	// Nothing of length 4; there are no arcs for AC-3 to catch this.
	s := New(g, mustLexicon(t, "CAT", "DOG"))
	_, err := s.Solve(context.Background())
	assert.ErrorIs(t, err, ErrUnsatisfiable)
	assert.Equal(t, 0, s.Stats().Nodes)
}

func TestDeterministicResult(t *testing.T) {
	is := is.New(t)
	structure := `____
_##_
____`
	words := []string{"TILE", "NEAR", "TEN", "EAR", "NAG", "TAR", "DOG", "BIRD", "SAND"}

	g := mustGrid(t, structure)
	lex := mustLexicon(t, words...)
	reference, err := New(g, lex).Solve(context.Background())
	is.NoErr(err)
	assertValidFill(t, g, lex, reference)

	for i := 0; i < 5; i++ {
		asg, err := New(g, lex).Solve(context.Background())
		is.NoErr(err)
		is.Equal(asg, reference)
	}
}

// The residual tie-break (extraction order, then alphabetical word
// order) pins down exactly which of several valid fills is returned.
func TestDocumentedTieBreak(t *testing.T) {
	is := is.New(t)
	g := mustGrid(t, crossStructure)
	across, down := g.Variables()[0], g.Variables()[1]
	asg, err := New(g, mustLexicon(t, "CAT", "DOG", "CAR")).Solve(context.Background())
	is.NoErr(err)
	// The across slot is selected first (extraction order); CAR and CAT
	// tie under LCV and CAR wins alphabetically.
	is.Equal(asg[across], "CAR")
	is.Equal(asg[down], "CAT")
}

func TestInferenceFindsSameSatisfiability(t *testing.T) {
	for name, tc := range map[string]struct {
		structure string
		words     []string
		solvable  bool
	}{
		"cross":         {crossStructure, []string{"CAT", "DOG", "CAR"}, true},
		"crossUnsat":    {crossStructure, []string{"CAT", "DOG"}, false},
		"parallelUnsat": {parallelStructure, []string{"CAT"}, false},
		"elbow":         {elbowStructure, []string{"CAT", "DOG", "ABET", "BIRD"}, true},
	} {
		t.Run(name, func(t *testing.T) {
			g := mustGrid(t, tc.structure)
			lex := mustLexicon(t, tc.words...)
			s := New(g, lex)
			s.SetInference(true)
			asg, err := s.Solve(context.Background())
			if tc.solvable {
				assert.NoError(t, err)
				assertValidFill(t, g, lex, asg)
			} else {
				assert.ErrorIs(t, err, ErrUnsatisfiable)
			}
		})
	}
}

func TestNodeBudget(t *testing.T) {
	g := mustGrid(t, crossStructure)
	lex := mustLexicon(t, "CAT", "DOG", "CAR")

	s := New(g, lex)
	s.SetNodeBudget(1)
	_, err := s.Solve(context.Background())
	assert.ErrorIs(t, err, ErrBudgetExceeded)

	// A budget that is not exhausted changes nothing.
	unbudgeted, err := New(g, lex).Solve(context.Background())
	assert.NoError(t, err)
	s = New(g, lex)
	s.SetNodeBudget(1000)
	budgeted, err := s.Solve(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, unbudgeted, budgeted)
}

func TestContextCancellation(t *testing.T) {
	g := mustGrid(t, crossStructure)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(g, mustLexicon(t, "CAT", "DOG", "CAR")).Solve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
