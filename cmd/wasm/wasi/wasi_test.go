//go:build !wasip1

package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// buildModule compiles the entrypoint for wasip1. The test is skipped when
// the toolchain is unavailable or cannot target wasip1.
func buildModule(t *testing.T) []byte {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping wasip1 build in short mode")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go toolchain not found")
	}
	out := filepath.Join(t.TempDir(), "goxmatch.wasm")
	cmd := exec.Command(goBin, "build", "-o", out, ".")
	cmd.Env = append(os.Environ(), "GOOS=wasip1", "GOARCH=wasm")
	if msg, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("wasip1 build failed: %v\n%s", err, msg)
	}
	wasm, err := os.ReadFile(out)
	require.NoError(t, err)
	return wasm
}

type response struct {
	Result interface{} `json:"result"`
	Error  string      `json:"error"`
	Code   string      `json:"code"`
}

func TestWASIModule(t *testing.T) {
	wasm := buildModule(t)

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	compiled, err := rt.CompileModule(ctx, wasm)
	require.NoError(t, err)

	call := func(t *testing.T, in string) (response, uint32) {
		t.Helper()
		var stdout bytes.Buffer
		cfg := wazero.NewModuleConfig().
			WithName("").
			WithStdin(strings.NewReader(in)).
			WithStdout(&stdout).
			WithStderr(io.Discard)

		var code uint32
		if _, err := rt.InstantiateModule(ctx, compiled, cfg); err != nil {
			var exitErr *sys.ExitError
			require.True(t, errors.As(err, &exitErr), "unexpected error: %v", err)
			code = exitErr.ExitCode()
		}
		var resp response
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp), stdout.String())
		return resp, code
	}

	t.Run("match", func(t *testing.T) {
		resp, code := call(t, `{"subject": "Hello World", "pattern": "^hello", "flags": "i"}`)
		assert.Zero(t, code)
		assert.Equal(t, true, resp.Result)

		resp, code = call(t, `{"subject": "Hello World", "pattern": "^hello"}`)
		assert.Zero(t, code)
		assert.Equal(t, false, resp.Result)
	})

	t.Run("query", func(t *testing.T) {
		in := `{"query": "//book[matches(title, \"^A\")]/title", "data": {"library": {"book": [{"title": "Alpha"}, {"title": "beta"}, {"title": "Andromeda"}]}}}`
		resp, code := call(t, in)
		assert.Zero(t, code)
		assert.Equal(t, []interface{}{"Alpha", "Andromeda"}, resp.Result)
	})

	t.Run("errors", func(t *testing.T) {
		resp, code := call(t, `{"subject": "a", "pattern": "a", "flags": "q"}`)
		assert.Equal(t, uint32(1), code)
		assert.Equal(t, "FORX0001", resp.Code)

		resp, code = call(t, `not json`)
		assert.Equal(t, uint32(1), code)
		assert.Contains(t, resp.Error, "invalid request JSON")
	})
}
