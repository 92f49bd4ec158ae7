//go:build wasip1

// Command goxmatch-wasi is the WASI (wasip1) entrypoint for use from any
// language that supports the WebAssembly System Interface.
//
// Protocol: single JSON object on stdin, single JSON object on stdout.
//
//	stdin:  { "subject": "...", "pattern": "...", "flags": "..." }
//	        { "query": "<path expression>", "data": <any JSON value> }
//	stdout: { "result": true }                   for a subject/pattern request
//	        { "result": ["...", ...] }           string values of the query result
//	        { "error": "<message>", "code": "FORX0002" }   on failure (exit code 1)
//
// Build:
//
//	GOOS=wasip1 GOARCH=wasm go build -o goxmatch.wasm ./cmd/wasm/wasi/
//
// Usage with wasmtime CLI:
//
//	echo '{"subject":"Hello","pattern":"^h","flags":"i"}' | wasmtime goxmatch.wasm
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/sandrolain/goxmatch"
	"github.com/sandrolain/goxmatch/pkg/types"
)

type request struct {
	Subject string      `json:"subject"`
	Pattern string      `json:"pattern"`
	Flags   string      `json:"flags"`
	Query   string      `json:"query"`
	Data    interface{} `json:"data"`
}

type response struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Code   string      `json:"code,omitempty"`
}

func writeResponse(r response, exitCode int) {
	_ = json.NewEncoder(os.Stdout).Encode(r)
	os.Exit(exitCode)
}

func fail(err error) {
	writeResponse(response{Error: err.Error(), Code: string(types.CodeOf(err))}, 1)
}

func main() {
	var req request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(response{Error: "invalid request JSON: " + err.Error()}, 1)
	}

	if req.Query == "" {
		ok, err := goxmatch.Matches(req.Subject, req.Pattern, req.Flags)
		if err != nil {
			fail(err)
		}
		writeResponse(response{Result: ok}, 0)
	}

	docs := types.NewDocumentSet(types.FromJSON("stdin", req.Data))
	seq, err := goxmatch.EvalWithContext(context.Background(), req.Query, docs)
	if err != nil {
		fail(err)
	}
	values := make([]string, seq.Len())
	for i := range values {
		values[i] = seq.ItemAt(i).StringValue()
	}
	writeResponse(response{Result: values}, 0)
}
