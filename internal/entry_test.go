package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/doclint/internal/testutil"
)

// syncBuffer is a bytes.Buffer safe for one writer goroutine and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testConfig(root string) *Config {
	cfg := NewDefaultConfig()
	cfg.Docs.Root = root
	cfg.Watch.Debounce = 50 * time.Millisecond
	return cfg
}

func runTask(t *testing.T, cfg *Config, task Task) (int, string) {
	t.Helper()
	var out, logs syncBuffer
	code, err := Run(context.Background(), task, WithConfig(cfg), WithOutput(&out), WithLogOutput(&logs))
	if err != nil {
		t.Fatalf("Run: %v\nlogs:\n%s", err, logs.String())
	}
	return code, out.String()
}

const navJSON = `{"navigation":{"tabs":[{"tab":"Guides","groups":[{"group":"Start","pages":["docs/intro"]}]}]}}`

func TestRun_RequiresConfig(t *testing.T) {
	if _, err := Run(context.Background(), CheckLinks()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestRun_MissingRoot(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "absent"))
	if _, err := Run(context.Background(), CheckLinks(), WithConfig(cfg), WithLogOutput(&syncBuffer{})); err == nil {
		t.Fatal("expected error for a missing root")
	}
}

func TestCheckLinks(t *testing.T) {
	root, _ := testutil.TestTree(t, map[string]string{
		"docs.json":      navJSON,
		"docs/intro.mdx": "# Intro\n\n[ok](./setup) [broken](/no/such/page)\n",
		"docs/setup.mdx": "# Setup\n",
	})
	code, out := runTask(t, testConfig(root), CheckLinks())
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out, "Found 1 dead link(s)") || !strings.Contains(out, "no/such/page") {
		t.Errorf("output:\n%s", out)
	}
}

func TestCheckAssets(t *testing.T) {
	root, _ := testutil.TestTree(t, map[string]string{
		"docs/intro.mdx":  "![logo](/logo.png)\n![gone](/gone.png)\n",
		"images/logo.png": "png",
	})
	code, out := runTask(t, testConfig(root), CheckAssets())
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(out, "docs/intro.mdx:2") || strings.Contains(out, "/logo.png") {
		t.Errorf("output:\n%s", out)
	}
}

func TestCheckUnreferenced_AlwaysZero(t *testing.T) {
	root, _ := testutil.TestTree(t, map[string]string{
		"docs.json":       navJSON,
		"docs/intro.mdx":  "# Intro\n",
		"docs/orphan.mdx": "# Orphan\n",
	})
	code, out := runTask(t, testConfig(root), CheckUnreferenced())
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(out, "docs/orphan.mdx") {
		t.Errorf("output:\n%s", out)
	}
}

func TestListReferenced_JSON(t *testing.T) {
	root, store := testutil.TestTree(t, map[string]string{
		"docs.json":      navJSON,
		"docs/intro.mdx": "[setup](./setup)\n",
		"docs/setup.mdx": "# Setup\n",
		"README.md":      "# Readme\n",
	})
	code, out := runTask(t, testConfig(root), ListReferenced(true))
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var paths []string
	if err := json.Unmarshal([]byte(out), &paths); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, out)
	}
	// Special files are always listed, present or not.
	want := []string{
		filepath.Join(store.Root(), "AGENTS.md"),
		filepath.Join(store.Root(), "CLAUDE.md"),
		filepath.Join(store.Root(), "README.md"),
		filepath.Join(store.Root(), "docs", "intro.mdx"),
		filepath.Join(store.Root(), "docs", "setup.mdx"),
	}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestEnhanceOpenAPI(t *testing.T) {
	spec := `{"openapi":"3.0.0","info":{"title":"core.v1"},"paths":{"/v1/users":{"get":{"tags":["UserService"],"responses":{"200":{"description":"ok"}}}}}}`
	root, store := testutil.TestTree(t, map[string]string{
		"docs/api/openapi/user_openapi.json": spec,
	})
	code, out := runTask(t, testConfig(root), EnhanceOpenAPI())
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "1 enhanced, 0 unchanged, 0 failed") {
		t.Errorf("output:\n%s", out)
	}
	data, _ := store.Read("docs/api/openapi/user_openapi.json")
	if !strings.Contains(string(data), `"title": "UserService"`) {
		t.Errorf("spec not rewritten:\n%s", data)
	}

	if _, out := runTask(t, testConfig(root), EnhanceOpenAPI()); !strings.Contains(out, "0 enhanced, 1 unchanged") {
		t.Errorf("second run should change nothing:\n%s", out)
	}
}

func TestEnhanceOpenAPI_NoSpecs(t *testing.T) {
	root, _ := testutil.TestTree(t, map[string]string{"README.md": "x"})
	if code, _ := runTask(t, testConfig(root), EnhanceOpenAPI()); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestInjectServers(t *testing.T) {
	root, store := testutil.TestTree(t, map[string]string{
		"legacy-docs/api-reference/gen-openapi/a/spec.json": `{"openapi":"3.0.0"}`,
	})
	code, out := runTask(t, testConfig(root), InjectServers())
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "1 updated") {
		t.Errorf("output:\n%s", out)
	}
	data, _ := store.Read("legacy-docs/api-reference/gen-openapi/a/spec.json")
	if !strings.Contains(string(data), "https://api.joinformal.com") {
		t.Errorf("server not injected:\n%s", data)
	}
}

func TestInjectServers_MissingDir(t *testing.T) {
	root, _ := testutil.TestTree(t, nil)
	if code, _ := runTask(t, testConfig(root), InjectServers()); code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

func TestGenerateAPINavigation_MissingTab(t *testing.T) {
	root, _ := testutil.TestTree(t, map[string]string{
		"docs.json":                          navJSON,
		"docs/api/openapi/user_openapi.json": "{}",
	})
	if code, _ := runTask(t, testConfig(root), GenerateAPINavigation()); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}

func TestGenerateAPINavigation(t *testing.T) {
	root, _ := testutil.TestTree(t, map[string]string{
		"docs.json":                          `{"navigation":{"tabs":[{"tab":"API Reference","openapi":"x.json","groups":[]}]}}`,
		"docs/api/openapi/user_openapi.json": "{}",
	})
	code, out := runTask(t, testConfig(root), GenerateAPINavigation())
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "Identity & Access") || !strings.Contains(out, "- User") {
		t.Errorf("output:\n%s", out)
	}
}

func TestGraphQueries(t *testing.T) {
	root, _ := testutil.TestTree(t, map[string]string{
		"docs/intro.mdx": "[setup](./setup)\n\n[gone](/docs/gone)\n",
		"docs/setup.mdx": "# Setup\n",
		"docs/other.md":  "<Link href=\"/docs/setup\">s</Link>\n",
	})
	cfg := testConfig(root)

	code, out := runTask(t, cfg, Backlinks("docs/setup"))
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "Documents linking to docs/setup.mdx: 2") ||
		!strings.Contains(out, "docs/intro.mdx:1 (markdown)") ||
		!strings.Contains(out, "docs/other.md:1 (jsx)") {
		t.Errorf("backlinks output:\n%s", out)
	}

	code, out = runTask(t, cfg, Outlinks("/docs/intro.mdx"))
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if !strings.Contains(out, "1: docs/setup.mdx (markdown)\n") ||
		!strings.Contains(out, "3: docs/gone.mdx (markdown) [missing]") {
		t.Errorf("outlinks output:\n%s", out)
	}

	if code, _ := runTask(t, cfg, Outlinks("docs/nope")); code != 1 {
		t.Errorf("unknown document exit code = %d, want 1", code)
	}
}

func TestWatch_RerunsChecksOnChange(t *testing.T) {
	root, store := testutil.TestTree(t, map[string]string{
		"docs.json":      navJSON,
		"docs/intro.mdx": "# Intro\n",
	})
	cfg := testConfig(root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out, logs syncBuffer
	type result struct {
		code int
		err  error
	}
	done := make(chan result, 1)
	go func() {
		code, err := Run(ctx, Watch(), WithConfig(cfg), WithOutput(&out), WithLogOutput(&logs))
		done <- result{code, err}
	}()

	waitFor(t, func() bool { return strings.Contains(out.String(), "No dead links found.") }, "initial check did not run")
	time.Sleep(150 * time.Millisecond)

	if err := store.Write("docs/intro.mdx", []byte("# Intro\n[broken](/docs/missing)\n")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return strings.Contains(out.String(), "docs/missing") }, "checks not re-run after change")

	cancel()
	select {
	case r := <-done:
		if r.err != nil || r.code != 0 {
			t.Errorf("Run = %d, %v; want 0, nil", r.code, r.err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestDebounce_CoalescesByPath(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan change)
	batches := make(chan []change, 4)
	go debounce(ctx, 50*time.Millisecond, in, func(b []change) { batches <- b })

	in <- change{kind: "created", path: "b.mdx"}
	in <- change{kind: "updated", path: "a.mdx"}
	in <- change{kind: "deleted", path: "b.mdx"}

	select {
	case b := <-batches:
		if len(b) != 2 || b[0].path != "a.mdx" || b[1].path != "b.mdx" || b[1].kind != "deleted" {
			t.Errorf("batch = %+v", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no batch flushed")
	}
}

func waitFor(t *testing.T, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal(msg)
}
