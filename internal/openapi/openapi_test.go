package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/starford/doclint/internal/apperr"
	"github.com/starford/doclint/internal/testutil"
)

const baseURL = "https://api.example.com"

func testEnhancer() *Enhancer {
	return NewEnhancer(Options{
		BaseURL:           baseURL,
		ServerDescription: "Production API",
		TitlePlaceholder:  "core.v1",
	})
}

const generated = `{
  "openapi": "3.0.3",
  "info": {"title": "core.v1", "version": "1"},
  "paths": {
    "/v1/users/{id}": {
      "parameters": [{"name": "id", "in": "path"}],
      "get": {
        "tags": ["UserService"],
        "operationId": "GetUser",
        "responses": {
          "200": {"description": "OK"},
          "400": {"description": "custom bad request"}
        }
      },
      "delete": {
        "operationId": "DeleteUser",
        "security": [],
        "responses": {"default": {"description": "error"}}
      }
    },
    "/v1/ping": {
      "post": {"operationId": "Ping"}
    }
  }
}`

// decode returns the enhanced document as generic JSON for inspection.
func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, data)
	}
	return v
}

func dig(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

func TestEnhance_AddsMissingParts(t *testing.T) {
	out, change, err := testEnhancer().Enhance([]byte(generated))
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if !change.Modified {
		t.Fatal("expected a modification")
	}
	if change.Title != "UserService" {
		t.Errorf("title = %q, want UserService", change.Title)
	}
	if change.Operations != 3 {
		t.Errorf("operations = %d, want 3", change.Operations)
	}

	doc := decode(t, out)
	if got := dig(doc, "info", "title"); got != "UserService" {
		t.Errorf("info.title = %v", got)
	}

	servers, _ := doc["servers"].([]any)
	if len(servers) != 1 || dig(servers[0], "url") != baseURL || dig(servers[0], "description") != "Production API" {
		t.Errorf("servers = %v", doc["servers"])
	}

	scheme := dig(doc, "components", "securitySchemes", SchemeName)
	if dig(scheme, "type") != "http" || dig(scheme, "scheme") != "bearer" || dig(scheme, "bearerFormat") != "API Key" {
		t.Errorf("security scheme = %v", scheme)
	}

	get := dig(doc, "paths", "/v1/users/{id}", "get")
	if sec, _ := dig(get, "security").([]any); len(sec) != 1 {
		t.Errorf("get.security = %v", dig(get, "security"))
	}
	// 404 added, existing 400 untouched.
	if dig(get, "responses", "404", "description") != "Not Found - Resource does not exist" {
		t.Errorf("404 = %v", dig(get, "responses", "404"))
	}
	if dig(get, "responses", "400", "description") != "custom bad request" {
		t.Errorf("400 overwritten: %v", dig(get, "responses", "400"))
	}
	for _, code := range []string{"401", "403", "500"} {
		if dig(get, "responses", code) == nil {
			t.Errorf("response %s missing", code)
		}
	}
	samples, _ := dig(get, "x-codeSamples").([]any)
	if len(samples) != 4 {
		t.Fatalf("x-codeSamples = %v", dig(get, "x-codeSamples"))
	}
	langs := []string{"curl", "javascript", "python", "go"}
	for i, s := range samples {
		if dig(s, "lang") != langs[i] {
			t.Errorf("sample %d lang = %v, want %s", i, dig(s, "lang"), langs[i])
		}
	}
	if src, _ := dig(samples[2], "source").(string); !strings.Contains(src, "requests.get(url") {
		t.Errorf("python sample = %q", src)
	}
	if src, _ := dig(samples[0], "source").(string); !strings.Contains(src, `curl -X GET "https://api.example.com/v1/users/{id}"`) {
		t.Errorf("curl sample = %q", src)
	}

	del := dig(doc, "paths", "/v1/users/{id}", "delete")
	if sec, ok := dig(del, "security").([]any); !ok || len(sec) != 0 {
		t.Errorf("empty security list must be kept: %v", dig(del, "security"))
	}
	if dig(del, "responses", "404") != nil {
		t.Error("error responses added to an operation without 200/201")
	}
	if dig(del, "x-codeSamples") == nil {
		t.Error("code samples missing on operation with responses")
	}

	ping := dig(doc, "paths", "/v1/ping", "post")
	if dig(ping, "x-codeSamples") != nil {
		t.Error("code samples added to operation without responses")
	}
	if dig(ping, "security") == nil {
		t.Error("security missing on ping")
	}

	if _, ok := dig(doc, "paths", "/v1/users/{id}", "parameters").([]any); !ok {
		t.Error("parameters array must be preserved")
	}
}

func TestEnhance_Idempotent(t *testing.T) {
	e := testEnhancer()
	once, _, err := e.Enhance([]byte(generated))
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	twice, change, err := e.Enhance(once)
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if change.Modified {
		t.Error("second run should not modify")
	}
	if string(twice) != string(once) {
		t.Error("second run output differs from first")
	}
}

func TestEnhance_KeyOrderPreserved(t *testing.T) {
	out, _, err := testEnhancer().Enhance([]byte(generated))
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	order := []string{`"openapi"`, `"info"`, `"paths"`, `"servers"`, `"components"`}
	last := -1
	for _, key := range order {
		i := strings.Index(s, key)
		if i < last {
			t.Errorf("%s out of order", key)
		}
		last = i
	}
	if !strings.HasPrefix(s, "{\n  \"openapi\": \"3.0.3\",") {
		t.Errorf("unexpected prefix: %q", s[:40])
	}
}

func TestEnhance_ExistingPartsKept(t *testing.T) {
	in := `{
  "info": {"title": "Custom"},
  "servers": [{"url": "https://other.example.com"}],
  "components": {"securitySchemes": {"ApiKey": {"type": "apiKey"}}},
  "paths": {}
}`
	out, change, err := testEnhancer().Enhance([]byte(in))
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if change.Modified {
		t.Errorf("nothing to add, got modified output:\n%s", out)
	}
	if string(out) != in {
		t.Error("unmodified spec must be returned as is")
	}
}

func TestEnhance_InvalidShape(t *testing.T) {
	for _, in := range []string{`{"paths": []}`, `{"paths": {"/x": 3}}`, `{"info": "x"}`, `[1]`, `{`} {
		_, _, err := testEnhancer().Enhance([]byte(in))
		if !errors.Is(err, apperr.ErrInvalidSpec) {
			t.Errorf("Enhance(%s) error = %v, want ErrInvalidSpec", in, err)
		}
	}
}

func TestEnhance_PathExtensionsAllowed(t *testing.T) {
	in := `{"openapi":"3.0.0","info":{"title":"x"},"paths":{` +
		`"x-internal":true,"x-owner":"billing",` +
		`"/a":{"get":{"responses":{"200":{"description":"ok"}}}}}}`
	out, change, err := testEnhancer().Enhance([]byte(in))
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if !change.Modified || change.Operations != 1 {
		t.Errorf("change = %+v, want modified with 1 operation", change)
	}
	doc := decode(t, out)
	if dig(doc, "paths", "x-internal") != true || dig(doc, "paths", "x-owner") != "billing" {
		t.Errorf("extensions altered: %v", dig(doc, "paths"))
	}
	if dig(doc, "paths", "/a", "get", "responses", "404") == nil {
		t.Errorf("operation not enhanced: %v", dig(doc, "paths", "/a", "get"))
	}
}

func TestEnhanceDir(t *testing.T) {
	_, store := testutil.TestTree(t, map[string]string{
		"docs/api/openapi/user_openapi.json":  generated,
		"docs/api/openapi/broken_openapi.json": `{"paths": [}`,
		"docs/api/openapi/notes.json":          `{}`,
	})

	results, err := testEnhancer().EnhanceDir(context.Background(), store, "docs/api/openapi", "_openapi.json", testutil.Logger())
	if err != nil {
		t.Fatalf("EnhanceDir: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %+v, want 2", results)
	}
	if results[0].Path != "docs/api/openapi/broken_openapi.json" || results[0].Err == nil {
		t.Errorf("broken spec result = %+v", results[0])
	}
	if results[1].Err != nil || !results[1].Modified {
		t.Errorf("user spec result = %+v", results[1])
	}

	data, err := store.Read("docs/api/openapi/user_openapi.json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "x-codeSamples") {
		t.Error("enhanced spec was not written back")
	}

	again, err := testEnhancer().EnhanceDir(context.Background(), store, "docs/api/openapi", "_openapi.json", testutil.Logger())
	if err != nil {
		t.Fatal(err)
	}
	if again[1].Modified {
		t.Error("second directory run modified the spec")
	}
}

func TestEnhanceDir_NoSpecs(t *testing.T) {
	_, store := testutil.TestTree(t, map[string]string{"docs/api/openapi/readme.md": "x"})
	_, err := testEnhancer().EnhanceDir(context.Background(), store, "docs/api/openapi", "_openapi.json", testutil.Logger())
	if !errors.Is(err, apperr.ErrNoSpecs) {
		t.Errorf("error = %v, want ErrNoSpecs", err)
	}
	_, err = testEnhancer().EnhanceDir(context.Background(), store, "absent", "_openapi.json", testutil.Logger())
	if !errors.Is(err, apperr.ErrNoSpecs) {
		t.Errorf("missing dir error = %v, want ErrNoSpecs", err)
	}
}

func TestInjectServer(t *testing.T) {
	in := `{"swagger": "2.0", "servers": [{"url": "https://old.example.com"}], "paths": {}}`
	out, changed, err := InjectServer([]byte(in), baseURL)
	if err != nil {
		t.Fatalf("InjectServer: %v", err)
	}
	if !changed {
		t.Fatal("expected change")
	}
	doc := decode(t, out)
	servers, _ := doc["servers"].([]any)
	if len(servers) != 1 || dig(servers[0], "url") != baseURL {
		t.Errorf("servers = %v", doc["servers"])
	}
	if dig(servers[0], "description") != nil {
		t.Error("injected server should only carry a url")
	}

	again, changed, err := InjectServer(out, baseURL)
	if err != nil || changed {
		t.Errorf("second injection changed = %v, err = %v", changed, err)
	}
	if string(again) != string(out) {
		t.Error("second injection altered the document")
	}

	if _, _, err := InjectServer([]byte(`not json`), baseURL); !errors.Is(err, apperr.ErrInvalidSpec) {
		t.Errorf("error = %v, want ErrInvalidSpec", err)
	}
}

func TestInjectServers_Recursive(t *testing.T) {
	_, store := testutil.TestTree(t, map[string]string{
		"gen/a.json":       `{"paths": {}}`,
		"gen/nested/b.JSON": `{"servers": [{"url": "` + baseURL + `"}]}`,
		"gen/nested/c.json": `{oops`,
		"gen/readme.md":     "x",
	})
	results, err := InjectServers(context.Background(), store, "gen", baseURL, testutil.Logger())
	if err != nil {
		t.Fatalf("InjectServers: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %+v, want 3", results)
	}
	byPath := map[string]FileResult{}
	for _, r := range results {
		byPath[r.Path] = r
	}
	if r := byPath["gen/a.json"]; !r.Modified || r.Err != nil {
		t.Errorf("a.json = %+v", r)
	}
	if r := byPath["gen/nested/b.JSON"]; r.Modified || r.Err != nil {
		t.Errorf("b.JSON = %+v", r)
	}
	if r := byPath["gen/nested/c.json"]; r.Err == nil {
		t.Errorf("c.json = %+v, want error", r)
	}
}

func TestServiceName(t *testing.T) {
	tests := map[string]string{
		"user_openapi.json":                         "User",
		"docs/api/openapi/policy_data_loaders_openapi.json": "Policy Data Loaders",
		"integration_bi_openapi.json":               "Integration Bi",
	}
	for in, want := range tests {
		if got := ServiceName(in, "_openapi.json"); got != want {
			t.Errorf("ServiceName(%q) = %q, want %q", in, got, want)
		}
	}
}

const navDoc = `{
  "name": "Docs",
  "navigation": {
    "tabs": [
      {"tab": "Guides", "groups": [{"group": "Start", "pages": ["docs/intro"]}]},
      {"tab": "API Reference", "openapi": ["docs/api/openapi/old.json"], "groups": []}
    ]
  },
  "footer": {"x": "<b>"}
}`

func navOptions() NavOptions {
	return NavOptions{
		NavFile:    "docs.json",
		Tab:        "API Reference",
		IntroGroup: "API Documentation",
		IntroPage:  "docs/api/introduction",
		SpecDir:    "docs/api/openapi",
		Suffix:     "_openapi.json",
	}
}

func TestUpdateNavigation(t *testing.T) {
	groups := BuildGroups([]string{"docs/api/openapi/user_openapi.json"}, navOptions())
	out, err := UpdateNavigation([]byte(navDoc), "API Reference", groups)
	if err != nil {
		t.Fatalf("UpdateNavigation: %v", err)
	}
	s := string(out)
	want := `      {
        "tab": "API Reference",
        "groups": [
          {
            "group": "API Documentation",
            "pages": [
              "docs/api/introduction"
            ]
          },
          {
            "group": "User",
            "openapi": "docs/api/openapi/user_openapi.json"
          }
        ]
      }`
	if !strings.Contains(s, want) {
		t.Errorf("API tab not rewritten as expected:\n%s", s)
	}
	if !strings.Contains(s, `"x": "<b>"`) {
		t.Error("unrelated content altered")
	}
	if strings.Index(s, `"name"`) > strings.Index(s, `"navigation"`) || strings.Index(s, `"navigation"`) > strings.Index(s, `"footer"`) {
		t.Error("top-level key order changed")
	}

	_, err = UpdateNavigation([]byte(`{"navigation":{"tabs":[{"tab":"Guides"}]}}`), "API Reference", groups)
	if !errors.Is(err, apperr.ErrNavTabNotFound) {
		t.Errorf("error = %v, want ErrNavTabNotFound", err)
	}
	_, err = UpdateNavigation([]byte(`{"tabs":[]}`), "API Reference", groups)
	if !errors.Is(err, apperr.ErrNavTabNotFound) {
		t.Errorf("error = %v, want ErrNavTabNotFound", err)
	}
}

func TestGenerateNavigation(t *testing.T) {
	_, store := testutil.TestTree(t, map[string]string{
		"docs.json":                           navDoc,
		"docs/api/openapi/user_openapi.json":  "{}",
		"docs/api/openapi/graph_openapi.json": "{}",
		"docs/api/openapi/misc_openapi.json":  "{}",
	})
	summary, err := GenerateNavigation(context.Background(), store, navOptions())
	if err != nil {
		t.Fatalf("GenerateNavigation: %v", err)
	}
	if summary.Specs != 3 || summary.Groups != 4 {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.Categories) != 2 ||
		summary.Categories[0].Name != "Identity & Access" ||
		summary.Categories[1].Name != "Data Management" {
		t.Errorf("categories = %+v", summary.Categories)
	}

	data, _ := store.Read("docs.json")
	s := string(data)
	if !strings.Contains(s, `"group": "Graph"`) || strings.Contains(s, "old.json") {
		t.Errorf("docs.json not rewritten:\n%s", s)
	}
	if strings.Index(s, `"Graph"`) > strings.Index(s, `"Misc"`) {
		t.Error("spec groups should be sorted by file name")
	}
}
