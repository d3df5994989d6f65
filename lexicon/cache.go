package lexicon

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Word lists are the largest objects we handle, and the shell may solve
// many structures against the same list. Cache them by path.

type lexCache struct {
	sync.Mutex
	lexica map[string]*Lexicon
}

var globalCache = &lexCache{lexica: make(map[string]*Lexicon)}

// CachedLoad returns the lexicon at path, loading it on first use.
func CachedLoad(path string) (*Lexicon, error) {
	return globalCache.get(path)
}

func (c *lexCache) get(path string) (*Lexicon, error) {
	c.Lock()
	defer c.Unlock()
	if lex, ok := c.lexica[path]; ok {
		log.Debug().Str("path", path).Msg("getting lexicon from cache")
		return lex, nil
	}
	log.Debug().Str("path", path).Msg("loading lexicon into cache")
	lex, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.lexica[path] = lex
	return lex, nil
}
