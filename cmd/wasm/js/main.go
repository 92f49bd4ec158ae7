//go:build js && wasm

// Command goxmatch-wasm-js is the WebAssembly entrypoint for browser and Node.js.
//
// It exposes a global `goxmatch` object with the following API:
//
//	goxmatch.version()                          → string
//	goxmatch.matches(subject, pattern, flags?)  → boolean     (throws on error)
//	goxmatch.translate(pattern)                 → string      (throws on error)
//	goxmatch.compile(query)                     → { eval(dataJSON) → resultJSON }  (throws on error)
//
// Build:
//
//	GOOS=js GOARCH=wasm go build -o goxmatch.wasm ./cmd/wasm/js/
//
// Usage in Node.js:
//
//	const gx = await load()
//	gx.matches('Hello World', '^hello', 'i') // true
//	const q = gx.compile('//book[matches(title, "^A")]/title')
//	JSON.parse(q.eval(JSON.stringify({library: {book: [{title: 'Alpha'}]}}))) // ['Alpha']
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/sandrolain/goxmatch"
	"github.com/sandrolain/goxmatch/pkg/evaluator"
	"github.com/sandrolain/goxmatch/pkg/types"
)

// jsThrow panics with a JS Error so the caller receives a thrown exception.
func jsThrow(msg string) {
	js.Global().Get("Error").New(msg)
	panic(msg)
}

// jsMatches implements goxmatch.matches(subject, pattern, flags?) → boolean.
func jsMatches(_ js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		jsThrow("goxmatch.matches requires 2 or 3 arguments: subject, pattern and optional flags")
	}
	flags := ""
	if len(args) > 2 && args[2].Type() == js.TypeString {
		flags = args[2].String()
	}
	ok, err := goxmatch.Matches(args[0].String(), args[1].String(), flags)
	if err != nil {
		jsThrow(fmt.Sprintf("goxmatch.matches: %v", err))
	}
	return ok
}

// jsTranslate implements goxmatch.translate(pattern) → string.
func jsTranslate(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("goxmatch.translate requires 1 argument: pattern (string)")
	}
	host, err := goxmatch.Translate(args[0].String())
	if err != nil {
		jsThrow(fmt.Sprintf("goxmatch.translate: %v", err))
	}
	return host
}

// jsCompile implements goxmatch.compile(query) → { eval(dataJSON) → resultJSON }.
func jsCompile(_ js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		jsThrow("goxmatch.compile requires 1 argument: query (string)")
	}
	expr, err := goxmatch.Compile(args[0].String())
	if err != nil {
		jsThrow(fmt.Sprintf("goxmatch.compile: %v", err))
	}
	q, err := evaluator.New().Compile(expr)
	if err != nil {
		jsThrow(fmt.Sprintf("goxmatch.compile: %v", err))
	}

	evalFn := js.FuncOf(func(_ js.Value, innerArgs []js.Value) interface{} {
		if len(innerArgs) < 1 {
			jsThrow("compiled.eval requires 1 argument: data (JSON string)")
		}
		var data interface{}
		if e := json.Unmarshal([]byte(innerArgs[0].String()), &data); e != nil {
			jsThrow(fmt.Sprintf("compiled.eval: invalid data JSON: %v", e))
		}
		docs := types.NewDocumentSet(types.FromJSON("data", data))
		seq, e := q.Eval(context.Background(), docs)
		if e != nil {
			jsThrow(fmt.Sprintf("compiled.eval: %v", e))
		}
		values := make([]string, seq.Len())
		for i := range values {
			values[i] = seq.ItemAt(i).StringValue()
		}
		out, _ := json.Marshal(values)
		return string(out)
	})

	return js.ValueOf(map[string]interface{}{"eval": evalFn})
}

func main() {
	api := map[string]interface{}{
		"matches":   js.FuncOf(jsMatches),
		"translate": js.FuncOf(jsTranslate),
		"compile":   js.FuncOf(jsCompile),
		"version": js.FuncOf(func(_ js.Value, _ []js.Value) interface{} {
			return goxmatch.Version()
		}),
	}
	js.Global().Set("goxmatch", js.ValueOf(api))

	// Block forever; the JS event loop owns execution from here.
	select {}
}
