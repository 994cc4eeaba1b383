package filter

import (
	"regexp"

	"github.com/hupe1980/logsift/internal/cache"
)

// DefaultPatternCacheSize bounds the number of compiled patterns kept alive.
const DefaultPatternCacheSize = 256

// compiledPattern is the cached compile result for one pattern string.
// A nil re means the pattern failed to compile and matches everything.
type compiledPattern struct {
	re *regexp.Regexp
}

// PatternCache compiles text patterns once and caches the result per pattern
// string.
//
// Patterns are matched case-insensitively. An invalid pattern is non-fatal:
// it is reported through onError once at compile time and then treated as
// matching everything, so a typo never hides data.
type PatternCache struct {
	lru     *cache.LRU[string, compiledPattern]
	onError func(pattern string, err error)
}

// NewPatternCache creates a pattern cache holding at most capacity compiled
// patterns. onError may be nil.
func NewPatternCache(capacity int, onError func(pattern string, err error)) *PatternCache {
	if capacity <= 0 {
		capacity = DefaultPatternCacheSize
	}
	return &PatternCache{
		lru:     cache.NewLRU[string, compiledPattern](capacity),
		onError: onError,
	}
}

// Match reports whether s matches pattern, compiling and caching the pattern
// on first use.
func (c *PatternCache) Match(pattern, s string) bool {
	cp, ok := c.lru.Get(pattern)
	if !ok {
		cp = c.compile(pattern)
		c.lru.Set(pattern, cp)
	}
	if cp.re == nil {
		// Fails open: an invalid pattern matches everything.
		return true
	}
	return cp.re.MatchString(s)
}

// Purge drops all compiled patterns. Called on dataset reset.
func (c *PatternCache) Purge() {
	c.lru.Purge()
}

// Stats returns cache hit and miss counters.
func (c *PatternCache) Stats() (hits, misses int64) {
	return c.lru.Stats()
}

func (c *PatternCache) compile(pattern string) compiledPattern {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		if c.onError != nil {
			c.onError(pattern, err)
		}
		return compiledPattern{}
	}
	return compiledPattern{re: re}
}
