package regex

import "github.com/sandrolain/goxmatch/pkg/cache"

// Translator memoizes Translate in a shared LRU cache.
//
// Safe for concurrent use by multiple goroutines. Failed translations are
// not cached.
type Translator struct {
	cache *cache.Cache[string]
}

// NewTranslator creates a Translator holding up to size translations.
// size <= 0 selects the cache default.
func NewTranslator(size int) *Translator {
	return &Translator{cache: cache.New[string](size)}
}

// Translate returns the host pattern for pattern.
func (t *Translator) Translate(pattern string) (string, error) {
	return t.cache.Resolve(pattern, func() (string, error) {
		return Translate(pattern)
	})
}

// Len returns the number of cached translations.
func (t *Translator) Len() int {
	return t.cache.Len()
}
