//go:build !wasip1 && !js

package regex

import (
	re2 "github.com/wasilibs/go-re2"
)

type re2Engine struct{}

// RE2 compiles patterns with the RE2 library running under wazero.
// It is not available in WebAssembly builds.
var RE2 Engine = re2Engine{}

func init() {
	engines["re2"] = RE2
}

func (re2Engine) Name() string { return "re2" }

func (re2Engine) Compile(pattern string, flags FlagSet) (Matcher, error) {
	host := Prepare(pattern, flags)
	re, err := re2.Compile(host)
	if err != nil {
		return nil, &CompileError{Engine: "re2", Pattern: host, Err: err}
	}
	return re, nil
}
