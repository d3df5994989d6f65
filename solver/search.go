package solver

import (
	"context"
	"errors"
	"sort"

	"github.com/samber/lo"

	"github.com/domino14/crossfill/grid"
)

// backtrack is plain depth-first search over the assignment. Recursion
// depth is bounded by the variable count, so the call stack is fine.
// Each frame's only mutation is its own key in asg, deleted again
// before the frame exits, so sibling branches always see pristine
// state.
func (s *Solver) backtrack(ctx context.Context, asg Assignment) (Assignment, error) {
	if len(asg) == len(s.g.Variables()) {
		return asg, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v := s.selectUnassigned(asg)
	for _, w := range s.orderDomainValues(v, asg) {
		if s.nodeBudget > 0 && s.stats.Nodes >= s.nodeBudget {
			return nil, ErrBudgetExceeded
		}
		s.stats.Nodes++
		asg[v] = w
		result, err := s.descend(ctx, v, asg)
		if err == nil {
			return result, nil
		}
		delete(asg, v)
		if !errors.Is(err, ErrUnsatisfiable) {
			return nil, err
		}
	}
	return nil, ErrUnsatisfiable
}

// descend recurses one level, optionally maintaining arc consistency
// under the tentative assignment first. The pruned domains are a
// scratch copy swapped in for the subtree and swapped back out after,
// so backtracking restores them exactly.
func (s *Solver) descend(ctx context.Context, v grid.Variable, asg Assignment) (Assignment, error) {
	if !s.infer {
		return s.backtrack(ctx, asg)
	}
	pruned, ok := s.inferDomains(v, asg)
	if !ok {
		return nil, ErrUnsatisfiable
	}
	saved := s.domains
	s.domains = pruned
	result, err := s.backtrack(ctx, asg)
	s.domains = saved
	return result, err
}

// inferDomains reruns AC-3 on a copy of the domains with v pinned to
// its assigned word, seeded with the arcs into v from its unassigned
// neighbors. The copy is shallow: revise never mutates a domain slice
// in place, it replaces it.
func (s *Solver) inferDomains(v grid.Variable, asg Assignment) (map[grid.Variable][]string, bool) {
	scratch := make(map[grid.Variable][]string, len(s.domains))
	for u, words := range s.domains {
		scratch[u] = words
	}
	scratch[v] = []string{asg[v]}
	var arcs []arc
	for _, u := range s.unassignedNeighbors(v, asg) {
		arcs = append(arcs, arc{u, v})
	}
	if !s.ac3(arcs, scratch) {
		return nil, false
	}
	return scratch, true
}

// candidates returns the words in v's domain consistent with the
// current partial assignment: no conflict at any crossing with an
// already-assigned neighbor, and not already used elsewhere (all words
// in a fill are distinct). Domain order is preserved.
func (s *Solver) candidates(v grid.Variable, asg Assignment) []string {
	used := make(map[string]bool, len(asg))
	for _, w := range asg {
		used[w] = true
	}
	var out []string
	for _, w := range s.domains[v] {
		if used[w] || s.conflicts(v, w, asg) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (s *Solver) conflicts(v grid.Variable, w string, asg Assignment) bool {
	for _, u := range s.g.Neighbors(v) {
		uw, assigned := asg[u]
		if !assigned {
			continue
		}
		ov, _ := s.g.OverlapOf(v, u)
		if w[ov.I] != uw[ov.J] {
			return true
		}
	}
	return false
}

// selectUnassigned picks the next variable to fill: fewest remaining
// candidates first (MRV), then most crossings with other unassigned
// variables (degree), then extraction order. All three orders are
// total, so the choice is deterministic.
func (s *Solver) selectUnassigned(asg Assignment) grid.Variable {
	var best grid.Variable
	bestCount, bestDegree := -1, -1
	for _, v := range s.g.Variables() {
		if _, assigned := asg[v]; assigned {
			continue
		}
		count := len(s.candidates(v, asg))
		degree := len(s.unassignedNeighbors(v, asg))
		if bestCount == -1 || count < bestCount ||
			(count == bestCount && degree > bestDegree) {
			best, bestCount, bestDegree = v, count, degree
		}
	}
	return best
}

func (s *Solver) unassignedNeighbors(v grid.Variable, asg Assignment) []grid.Variable {
	return lo.Filter(s.g.Neighbors(v), func(u grid.Variable, _ int) bool {
		_, assigned := asg[u]
		return !assigned
	})
}

// orderDomainValues sorts v's consistent candidates least-constraining
// first: ascending by how many words the candidate would make
// incompatible in unassigned neighbors' domains, ties broken
// alphabetically.
func (s *Solver) orderDomainValues(v grid.Variable, asg Assignment) []string {
	words := s.candidates(v, asg)
	neighbors := s.unassignedNeighbors(v, asg)
	eliminated := make(map[string]int, len(words))
	for _, w := range words {
		n := 0
		for _, u := range neighbors {
			ov, _ := s.g.OverlapOf(v, u)
			for _, uw := range s.domains[u] {
				if w[ov.I] != uw[ov.J] {
					n++
				}
			}
		}
		eliminated[w] = n
	}
	sort.SliceStable(words, func(i, j int) bool {
		if eliminated[words[i]] != eliminated[words[j]] {
			return eliminated[words[i]] < eliminated[words[j]]
		}
		return words[i] < words[j]
	})
	return words
}
