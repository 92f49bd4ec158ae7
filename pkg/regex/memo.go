package regex

import "io"

// Memo remembers the most recently compiled pattern.
//
// A Memo belongs to one expression node and is not safe for concurrent use.
// A miss always compiles fresh, so a Memo never changes match results.
type Memo struct {
	engine  Engine
	pattern string
	flags   FlagSet
	matcher Matcher
}

// GetOrCompile returns the cached matcher when engine, pattern and flags
// equal the previous call, and compiles a replacement otherwise.
func (m *Memo) GetOrCompile(engine Engine, pattern string, flags FlagSet) (Matcher, error) {
	if m.matcher != nil && m.engine == engine && m.pattern == pattern && m.flags == flags {
		return m.matcher, nil
	}
	matcher, err := engine.Compile(pattern, flags)
	if err != nil {
		return nil, err
	}
	m.Reset()
	m.engine = engine
	m.pattern = pattern
	m.flags = flags
	m.matcher = matcher
	return matcher, nil
}

// Cached reports whether the memo holds a matcher for pattern and flags.
func (m *Memo) Cached(pattern string, flags FlagSet) bool {
	return m.matcher != nil && m.pattern == pattern && m.flags == flags
}

// Reset drops the cached matcher, closing it if it holds resources.
func (m *Memo) Reset() {
	if c, ok := m.matcher.(io.Closer); ok {
		_ = c.Close()
	}
	*m = Memo{}
}
