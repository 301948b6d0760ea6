package pathtest

import "sync"

// Cache memoizes compiled tests by their source string. It is safe for
// concurrent use by several target pipelines.
type Cache struct {
	mu    sync.RWMutex
	tests map[string]*Test
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{tests: make(map[string]*Test)}
}

// Get returns the compiled test for raw, compiling it on first use.
func (c *Cache) Get(raw string) (*Test, error) {
	c.mu.RLock()
	t, ok := c.tests[raw]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	t, err := Compile(raw)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tests[raw] = t
	c.mu.Unlock()
	return t, nil
}

// Applies decides whether a conditional operation applies to a source path.
//
// An empty test means no condition was requested. An empty srcPath means the
// caller has no path context, so the condition cannot be evaluated and the
// operation is not suppressed. Otherwise the compiled test decides.
func (c *Cache) Applies(raw, srcPath string) (bool, error) {
	if raw == "" || srcPath == "" {
		return true, nil
	}
	t, err := c.Get(raw)
	if err != nil {
		return false, err
	}
	return t.Match(srcPath)
}

var defaultCache = NewCache()

// Applies evaluates raw against srcPath using a process-wide cache.
func Applies(raw, srcPath string) (bool, error) {
	return defaultCache.Applies(raw, srcPath)
}
