// Package solver fills a crossword structure from a vocabulary. It is a
// constraint-satisfaction solver: variables are the structure's word
// slots, domains are candidate words, and the constraints are word
// length (unary), agreement at crossings (binary), and distinctness of
// all placed words (global).
package solver

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/crossfill/grid"
	"github.com/domino14/crossfill/lexicon"
)

var (
	// ErrUnsatisfiable means the structure has no valid fill under the
	// supplied vocabulary. It is a normal outcome, not a crash.
	ErrUnsatisfiable = errors.New("no satisfying assignment exists")
	// ErrBudgetExceeded is returned when the optional node budget runs
	// out before the search finishes.
	ErrBudgetExceeded = errors.New("node budget exceeded")
)

// An Assignment maps variables to the words chosen for them.
type Assignment map[grid.Variable]string

// Stats counts solver work, for logging and tuning.
type Stats struct {
	Nodes     int // tentative assignments tried during search
	Revisions int // AC-3 revise calls
	Pruned    int // words removed by arc consistency
}

// A Solver owns the domains for one solve. It is not safe for
// concurrent use; a solve runs start to finish on one goroutine.
type Solver struct {
	g       *grid.Grid
	domains map[grid.Variable][]string

	infer      bool
	nodeBudget int
	stats      Stats
}

// New seeds every variable's domain with the vocabulary words of its
// length. Domains are sorted (the lexicon's length index is sorted),
// which keeps every downstream ordering total.
func New(g *grid.Grid, lex *lexicon.Lexicon) *Solver {
	s := &Solver{
		g:       g,
		domains: make(map[grid.Variable][]string, len(g.Variables())),
	}
	for _, v := range g.Variables() {
		words := lex.WordsOfLength(v.Length)
		domain := make([]string, len(words))
		copy(domain, words)
		s.domains[v] = domain
	}
	return s
}

// SetInference turns on maintaining arc consistency after each
// tentative assignment. It only prunes; it never changes whether a
// solution is reachable.
func (s *Solver) SetInference(infer bool) {
	s.infer = infer
}

// SetNodeBudget caps the number of search nodes. 0 means no limit. The
// budget is a safeguard only; when it is not exhausted the result is
// identical to an unbudgeted solve.
func (s *Solver) SetNodeBudget(n int) {
	s.nodeBudget = n
}

func (s *Solver) Stats() Stats {
	return s.stats
}

// Domain returns a copy of v's current candidate words.
func (s *Solver) Domain(v grid.Variable) []string {
	words := make([]string, len(s.domains[v]))
	copy(words, s.domains[v])
	return words
}

// Solve enforces node and arc consistency and then runs backtracking
// search. The possible errors are ErrUnsatisfiable, ErrBudgetExceeded,
// and a context error; nothing here panics on an unsolvable puzzle.
func (s *Solver) Solve(ctx context.Context) (Assignment, error) {
	s.EnforceNodeConsistency()
	if !s.EnforceArcConsistency() {
		return nil, ErrUnsatisfiable
	}
	// AC-3 only sees variables with arcs; an isolated variable can
	// still have come up empty.
	for _, v := range s.g.Variables() {
		if len(s.domains[v]) == 0 {
			return nil, ErrUnsatisfiable
		}
	}
	asg, err := s.backtrack(ctx, make(Assignment, len(s.g.Variables())))
	if err != nil {
		return nil, err
	}
	log.Debug().Int("nodes", s.stats.Nodes).Int("revisions", s.stats.Revisions).
		Int("pruned", s.stats.Pruned).Msg("search complete")
	return asg, nil
}

// EnforceNodeConsistency drops words whose length does not match their
// variable's. Domains seeded through New are already node-consistent,
// so this is idempotent; it exists to tolerate unfiltered vocabularies
// and to keep the consistency phases independently testable.
func (s *Solver) EnforceNodeConsistency() {
	for _, v := range s.g.Variables() {
		length := v.Length
		s.domains[v] = lo.Filter(s.domains[v], func(w string, _ int) bool {
			return len(w) == length
		})
	}
}

type arc struct {
	x, y grid.Variable
}

// EnforceArcConsistency runs AC-3 seeded with every arc. It reports
// false if some domain was wiped out, which means no solution exists
// under the current domains.
func (s *Solver) EnforceArcConsistency() bool {
	var arcs []arc
	for _, x := range s.g.Variables() {
		for _, y := range s.g.Neighbors(x) {
			arcs = append(arcs, arc{x, y})
		}
	}
	return s.ac3(arcs, s.domains)
}

// ac3 processes the queue to a fixed point, mutating domains. When x's
// domain shrinks, every arc (z, x) into x is re-enqueued, since the
// shrinkage may have removed some z word's only support.
func (s *Solver) ac3(queue []arc, domains map[grid.Variable][]string) bool {
	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]
		revised, wiped := s.revise(a.x, a.y, domains)
		if wiped {
			log.Debug().Str("variable", a.x.String()).Msg("domain wiped out")
			return false
		}
		if revised {
			for _, z := range s.g.Neighbors(a.x) {
				if z != a.y {
					queue = append(queue, arc{z, a.x})
				}
			}
		}
	}
	return true
}

// revise removes from x's domain every word with no supporting word in
// y's domain at their crossing. The replacement slice preserves order,
// so domains stay sorted.
func (s *Solver) revise(x, y grid.Variable, domains map[grid.Variable][]string) (revised, wiped bool) {
	s.stats.Revisions++
	ov, ok := s.g.OverlapOf(x, y)
	if !ok {
		return false, false
	}
	var kept []string
	for _, xw := range domains[x] {
		supported := false
		for _, yw := range domains[y] {
			if xw[ov.I] == yw[ov.J] {
				supported = true
				break
			}
		}
		if supported {
			kept = append(kept, xw)
		}
	}
	if len(kept) == len(domains[x]) {
		return false, false
	}
	s.stats.Pruned += len(domains[x]) - len(kept)
	domains[x] = kept
	return true, len(kept) == 0
}
