// Package lexicon loads and indexes the candidate vocabulary for a fill.
package lexicon

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrEmptyLexicon = errors.New("lexicon: word list contains no words")

// A Lexicon is an immutable word set, indexed by length so that a
// variable's initial domain is node-consistent by construction and
// candidate enumeration never re-filters the whole vocabulary.
type Lexicon struct {
	name     string
	words    map[string]bool
	byLength map[int][]string
}

// Load reads a word list file, one word per line. Words are uppercased;
// blank lines are ignored.
func Load(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	scanner := bufio.NewScanner(f)
	var words []string
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" {
			continue
		}
		words = append(words, strings.ToUpper(w))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	lex, err := FromWords(name, words)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("lexicon", name).Int("words", lex.Len()).Msg("loaded word list")
	return lex, nil
}

// FromWords builds a lexicon from an in-memory word list. Duplicates
// are collapsed.
func FromWords(name string, words []string) (*Lexicon, error) {
	if len(words) == 0 {
		return nil, ErrEmptyLexicon
	}
	lex := &Lexicon{
		name:     name,
		words:    make(map[string]bool, len(words)),
		byLength: make(map[int][]string),
	}
	for _, w := range words {
		w = strings.ToUpper(w)
		if lex.words[w] {
			continue
		}
		lex.words[w] = true
		lex.byLength[len(w)] = append(lex.byLength[len(w)], w)
	}
	for _, ws := range lex.byLength {
		sort.Strings(ws)
	}
	return lex, nil
}

func (l *Lexicon) Name() string { return l.name }

func (l *Lexicon) Len() int { return len(l.words) }

func (l *Lexicon) Has(word string) bool {
	return l.words[strings.ToUpper(word)]
}

// WordsOfLength returns the words of the given length, sorted. Callers
// must not mutate the returned slice.
func (l *Lexicon) WordsOfLength(n int) []string {
	return l.byLength[n]
}

// Lengths returns the distinct word lengths present, sorted ascending.
func (l *Lexicon) Lengths() []int {
	lengths := make([]int, 0, len(l.byLength))
	for n := range l.byLength {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)
	return lengths
}
