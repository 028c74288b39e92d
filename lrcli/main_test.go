package lrcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"

	"oss.terrastruct.com/lrviz/lib/log"
	"oss.terrastruct.com/lrviz/lib/version"
	"oss.terrastruct.com/lrviz/lib/xmain"
)

const automatonJSON = `{
	"states": [
		{"id": 0, "items": ["S -> . E", "E -> . E + n"], "transitions": {"E": 1, "n": 2}},
		{"id": 1, "items": ["S -> E .", "E -> E . + n"], "transitions": {"+": 3}},
		{"id": 2, "items": ["E -> n ."], "transitions": {}},
		{"id": 3, "items": ["E -> E + . n"], "transitions": {"n": 2}}
	]
}`

const treeJSON = `{
	"type": "NonTerminal",
	"value": {
		"symbol": "E",
		"pattern": [
			{"type": "Terminal", "value": {"token": {"type": "Constant", "value": "10"}, "slice": "10"}},
			{"type": "Terminal", "value": {"token": "+", "slice": "+"}},
			{"type": "Terminal", "value": {"token": {"type": "Regex", "value": "num"}, "slice": "20"}}
		]
	}
}`

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

type testState struct {
	*xmain.State
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestState(args ...string) *testState {
	env := xos.NewEnv([]string{"BROWSER=none"})
	ts := &testState{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	ts.State = &xmain.State{
		Name:   "lrviz",
		Stdin:  &bytes.Buffer{},
		Stdout: nopCloser{ts.stdout},
		Stderr: nopCloser{ts.stderr},
		Env:    env,
	}
	ts.Log = cmdlog.Log(env, ts.stderr)
	ts.Opts = xmain.NewOpts(env, ts.Log, args)
	return ts
}

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	fp := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(fp, []byte(data), 0644))
	return fp
}

func TestRun(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		run  func(t *testing.T, ctx context.Context, dir string)
	}{
		{
			name: "automaton",
			run: func(t *testing.T, ctx context.Context, dir string) {
				in := writeFile(t, dir, "grammar.json", automatonJSON)
				ts := newTestState(in)
				require.NoError(t, Run(ctx, ts.State))

				svg, err := os.ReadFile(filepath.Join(dir, "grammar.svg"))
				require.NoError(t, err)
				doc, err := goquery.NewDocumentFromReader(bytes.NewReader(svg))
				require.NoError(t, err)
				assert.Equal(t, 4, doc.Find("g.automaton_state").Length())
				assert.Equal(t, 4, doc.Find("path.automaton_link").Length())
				assert.Equal(t, 1, doc.Find("g.automaton_state.root").Length())
				assert.True(t, strings.HasPrefix(string(svg), "<?xml"))
			},
		},
		{
			name: "tree_to_output",
			run: func(t *testing.T, ctx context.Context, dir string) {
				in := writeFile(t, dir, "tree.json", treeJSON)
				out := filepath.Join(dir, "out.svg")
				ts := newTestState("--no-xml-tag", "--pad=10", in, out)
				require.NoError(t, Run(ctx, ts.State))

				svg, err := os.ReadFile(out)
				require.NoError(t, err)
				assert.True(t, strings.HasPrefix(string(svg), "<svg"))
				doc, err := goquery.NewDocumentFromReader(bytes.NewReader(svg))
				require.NoError(t, err)
				assert.Equal(t, 4, doc.Find("g.tree_node").Length())
				assert.Equal(t, 3, doc.Find("rect.tree_terminal").Length())
			},
		},
		{
			name: "stdin_stdout",
			run: func(t *testing.T, ctx context.Context, dir string) {
				ts := newTestState("--steps=5", "-")
				ts.Stdin = bytes.NewBufferString(automatonJSON)
				require.NoError(t, Run(ctx, ts.State))
				assert.Contains(t, ts.stdout.String(), `class="lrviz lrviz-automaton"`)
			},
		},
		{
			name: "config",
			run: func(t *testing.T, ctx context.Context, dir string) {
				in := writeFile(t, dir, "tree.json", treeJSON)
				cfg := writeFile(t, dir, "lrviz.yaml", "direction: right\nnodeSize: 40\n")
				ts := newTestState("-c", cfg, in, "-")
				require.NoError(t, Run(ctx, ts.State))
				assert.Contains(t, ts.stdout.String(), "tree_graph")
			},
		},
		{
			name: "bad_config",
			run: func(t *testing.T, ctx context.Context, dir string) {
				in := writeFile(t, dir, "tree.json", treeJSON)
				cfg := writeFile(t, dir, "lrviz.yaml", "direction: up\n")
				ts := newTestState("--config", cfg, in)
				err := Run(ctx, ts.State)
				errContains(t, err, `direction must be "down" or "right"`)
			},
		},
		{
			name: "bad_input",
			run: func(t *testing.T, ctx context.Context, dir string) {
				in := writeFile(t, dir, "bad.json", `{"nodes": []}`)
				ts := newTestState(in)
				err := Run(ctx, ts.State)
				errContains(t, err, "failed to render: failed to parse input")
			},
		},
		{
			name: "bad_accent",
			run: func(t *testing.T, ctx context.Context, dir string) {
				in := writeFile(t, dir, "grammar.json", automatonJSON)
				ts := newTestState("--accent=notacolor", in)
				assert.Error(t, Run(ctx, ts.State))
			},
		},
		{
			name: "no_input",
			run: func(t *testing.T, ctx context.Context, dir string) {
				ts := newTestState()
				err := Run(ctx, ts.State)
				var uerr xmain.UsageError
				assert.True(t, errors.As(err, &uerr))
				assert.Contains(t, ts.stdout.String(), "Usage:")
			},
		},
		{
			name: "too_many_args",
			run: func(t *testing.T, ctx context.Context, dir string) {
				ts := newTestState("a", "b", "c")
				assert.EqualError(t, Run(ctx, ts.State), "bad usage: too many arguments passed")
			},
		},
		{
			name: "watch_stdin",
			run: func(t *testing.T, ctx context.Context, dir string) {
				ts := newTestState("--watch", "-")
				errContains(t, Run(ctx, ts.State), "cannot be combined with reading input from stdin")
			},
		},
		{
			name: "help",
			run: func(t *testing.T, ctx context.Context, dir string) {
				ts := newTestState("--help")
				require.NoError(t, Run(ctx, ts.State))
				assert.Contains(t, ts.stdout.String(), "--watch")
				assert.Contains(t, ts.stdout.String(), "$LRVIZ_CONFIG")
			},
		},
		{
			name: "version",
			run: func(t *testing.T, ctx context.Context, dir string) {
				ts := newTestState("--version")
				require.NoError(t, Run(ctx, ts.State))
				assert.Equal(t, version.Version+"\n", ts.stdout.String())
			},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			ctx = log.WithTB(ctx, t, nil)

			tc.run(t, ctx, t.TempDir())
		})
	}
}

func errContains(t *testing.T, err error, msg string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestOutputPathFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "-", outputPathFor("-"))
	assert.Equal(t, "a/grammar.svg", outputPathFor("a/grammar.json"))
	assert.Equal(t, "grammar.svg", outputPathFor("grammar"))
}

func readFrame(t *testing.T, ctx context.Context, c *websocket.Conn, accept func(*frameResult) bool) *frameResult {
	t.Helper()
	for {
		var res frameResult
		err := wsjson.Read(ctx, c, &res)
		require.NoError(t, err)
		if accept(&res) {
			return &res
		}
	}
}

func TestWatch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = log.WithTB(ctx, t, nil)

	dir := t.TempDir()
	in := writeFile(t, dir, "tree.json", treeJSON)
	ts := newTestState()
	w, err := newWatcher(ctx, ts.State, watcherOpts{
		host:      "localhost",
		port:      "0",
		inputPath: in,
		width:     800,
		height:    600,
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- w.run()
	}()

	c, _, err := websocket.Dial(ctx, fmt.Sprintf("ws://%s/watch", w.l.Addr()), nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	res := readFrame(t, ctx, c, func(res *frameResult) bool {
		return strings.Contains(res.SVG, "tree_graph")
	})
	assert.Empty(t, res.Err)

	// Panning moves the whole graph.
	for _, ev := range []inputEvent{
		{Type: "pointerdown", X: -5000, Y: -5000},
		{Type: "pointermove", X: -4990, Y: -5000},
		{Type: "pointerup", X: -4990, Y: -5000},
	} {
		require.NoError(t, wsjson.Write(ctx, c, ev))
	}
	readFrame(t, ctx, c, func(res *frameResult) bool {
		return strings.Contains(res.SVG, "translate(10,0) scale(1)")
	})

	// A broken input is reported and a fixed one replaces it.
	writeFile(t, dir, "tree.json", `{`)
	readFrame(t, ctx, c, func(res *frameResult) bool {
		return strings.Contains(res.Err, "failed to reload")
	})
	writeFile(t, dir, "tree.json", automatonJSON)
	readFrame(t, ctx, c, func(res *frameResult) bool {
		return strings.Contains(res.SVG, "automaton_graph")
	})

	w.cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("watcher did not shut down")
	}
	assert.Nil(t, w.currentView())
}
