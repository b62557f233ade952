// Package openapi post-processes generated OpenAPI specifications: it adds
// servers, security, standard error responses, and code samples, injects
// servers into legacy specs, and rebuilds the API navigation tab.
package openapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/starford/doclint/internal/apperr"
	"github.com/starford/doclint/internal/jsondoc"
	"github.com/starford/doclint/internal/storage"
)

// SchemeName is the name of the security scheme added to specs.
const SchemeName = "BearerAuth"

// Options configures an Enhancer.
type Options struct {
	BaseURL           string
	ServerDescription string
	TitlePlaceholder  string
}

// Enhancer adds the standard parts a published spec needs.
type Enhancer struct {
	opts Options
}

// NewEnhancer creates an Enhancer.
func NewEnhancer(opts Options) *Enhancer {
	return &Enhancer{opts: opts}
}

// Change summarises what Enhance did to one spec.
type Change struct {
	Modified   bool
	Title      string // new title, when the placeholder was replaced
	Operations int    // operation objects visited
}

type server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

type securityScheme struct {
	Type         string `json:"type"`
	Scheme       string `json:"scheme"`
	BearerFormat string `json:"bearerFormat"`
	Description  string `json:"description"`
}

// Enhance returns the enhanced form of the spec in data. When nothing had
// to be added, Change.Modified is false and the returned bytes should not
// be written back. Enhance is idempotent.
func (e *Enhancer) Enhance(data []byte) ([]byte, Change, error) {
	var change Change
	if err := checkShape(data); err != nil {
		return nil, change, err
	}
	spec, err := jsondoc.Parse(data)
	if err != nil {
		return nil, change, fmt.Errorf("%w: %v", apperr.ErrInvalidSpec, err)
	}

	title, err := e.fixTitle(spec)
	if err != nil {
		return nil, change, err
	}
	if title != "" {
		change.Title = title
		change.Modified = true
	}

	if !hasServers(spec) {
		if err := spec.Set("servers", []server{{URL: e.opts.BaseURL, Description: e.opts.ServerDescription}}); err != nil {
			return nil, change, err
		}
		change.Modified = true
	}

	added, err := e.addSecurityScheme(spec)
	if err != nil {
		return nil, change, err
	}
	if added {
		change.Modified = true
	}

	ops, modified, err := e.enhancePaths(spec)
	if err != nil {
		return nil, change, err
	}
	change.Operations = ops
	if modified {
		change.Modified = true
	}

	if !change.Modified {
		return data, change, nil
	}
	out, err := jsondoc.Encode(spec)
	if err != nil {
		return nil, change, err
	}
	return out, change, nil
}

// fixTitle replaces a placeholder info.title with the first tag of the
// first operation and returns the new title.
func (e *Enhancer) fixTitle(spec *jsondoc.Object) (string, error) {
	info, ok := spec.Object("info")
	if !ok {
		return "", nil
	}
	if title, _ := info.String("title"); title != e.opts.TitlePlaceholder {
		return "", nil
	}
	name := serviceName(spec)
	if name == "" {
		return "", nil
	}
	if err := info.Set("title", name); err != nil {
		return "", err
	}
	return name, spec.Set("info", info)
}

// serviceName returns the first tag of the first operation in document
// order, or "".
func serviceName(spec *jsondoc.Object) string {
	paths, ok := spec.Object("paths")
	if !ok {
		return ""
	}
	for _, p := range paths.Keys() {
		item, ok := paths.Object(p)
		if !ok {
			continue
		}
		for _, m := range item.Keys() {
			op, ok := item.Object(m)
			if !ok {
				continue
			}
			tags, ok := op.Array("tags")
			if !ok || len(tags) == 0 {
				continue
			}
			var tag string
			if err := json.Unmarshal(tags[0], &tag); err == nil && tag != "" {
				return tag
			}
		}
	}
	return ""
}

func hasServers(spec *jsondoc.Object) bool {
	raw, ok := spec.Raw("servers")
	if !ok {
		return false
	}
	if arr, ok := jsondoc.AsArray(raw); ok {
		return len(arr) > 0
	}
	return jsondoc.Truthy(raw)
}

func (e *Enhancer) addSecurityScheme(spec *jsondoc.Object) (bool, error) {
	components, ok := spec.Object("components")
	if !ok {
		components = jsondoc.New()
	}
	if components.Truthy("securitySchemes") {
		return false, nil
	}
	err := components.Set("securitySchemes", map[string]securityScheme{
		SchemeName: {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "API Key",
			Description:  "API key authentication. Get your API key from the Formal dashboard.",
		},
	})
	if err != nil {
		return false, err
	}
	return true, spec.Set("components", components)
}

// enhancePaths visits every operation object under paths. Non-object
// members of a path item, such as a "parameters" array, are skipped.
func (e *Enhancer) enhancePaths(spec *jsondoc.Object) (int, bool, error) {
	paths, ok := spec.Object("paths")
	if !ok {
		return 0, false, nil
	}
	ops := 0
	modified := false
	for _, p := range paths.Keys() {
		item, ok := paths.Object(p)
		if !ok {
			continue
		}
		itemModified := false
		for _, m := range item.Keys() {
			op, ok := item.Object(m)
			if !ok {
				continue
			}
			ops++
			changed, err := e.enhanceOperation(op, p, m)
			if err != nil {
				return 0, false, fmt.Errorf("openapi: %s %s: %w", m, p, err)
			}
			if !changed {
				continue
			}
			if err := item.Set(m, op); err != nil {
				return 0, false, err
			}
			itemModified = true
		}
		if itemModified {
			if err := paths.Set(p, item); err != nil {
				return 0, false, err
			}
			modified = true
		}
	}
	if modified {
		return ops, true, spec.Set("paths", paths)
	}
	return ops, false, nil
}

func (e *Enhancer) enhanceOperation(op *jsondoc.Object, pathKey, method string) (bool, error) {
	modified := false

	if !op.Truthy("security") {
		if err := op.Set("security", []map[string][]string{{SchemeName: {}}}); err != nil {
			return false, err
		}
		modified = true
	}

	if !op.Truthy("responses") {
		return modified, nil
	}

	if responses, ok := op.Object("responses"); ok && (responses.Truthy("200") || responses.Truthy("201")) {
		added := false
		for _, sr := range standardResponses {
			if responses.Truthy(sr.Code) {
				continue
			}
			if err := responses.Set(sr.Code, sr.Response); err != nil {
				return false, err
			}
			added = true
		}
		if added {
			if err := op.Set("responses", responses); err != nil {
				return false, err
			}
			modified = true
		}
	}

	if !op.Truthy("x-codeSamples") {
		samples, err := CodeSamples(e.opts.BaseURL, pathKey, method)
		if err != nil {
			return false, err
		}
		if err := op.Set("x-codeSamples", samples); err != nil {
			return false, err
		}
		modified = true
	}

	return modified, nil
}

// FileResult is the outcome for one spec file.
type FileResult struct {
	Path string
	Change
	Err error
}

// EnhanceDir enhances every file directly under dir whose name ends in
// suffix and writes back the files that changed. A file that cannot be
// read, parsed, or written is recorded in its FileResult and skipped.
// It returns apperr.ErrNoSpecs when no file matches.
func (e *Enhancer) EnhanceDir(ctx context.Context, store storage.Provider, dir, suffix string, logger *slog.Logger) ([]FileResult, error) {
	metas, err := store.List(dir, storage.Filter{Suffixes: []string{suffix}, Shallow: true})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("openapi: list %s: %w", dir, err)
	}
	if len(metas) == 0 {
		return nil, fmt.Errorf("%w in %s", apperr.ErrNoSpecs, dir)
	}

	results := make([]FileResult, 0, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := FileResult{Path: m.Path}
		res.Change, res.Err = e.enhanceFile(store, m.Path)
		if res.Err != nil {
			logger.Error("openapi: spec skipped",
				slog.String("file", path.Base(m.Path)),
				slog.String("error", res.Err.Error()))
		} else {
			logger.Debug("openapi: spec processed",
				slog.String("file", path.Base(m.Path)),
				slog.Bool("modified", res.Modified),
				slog.Int("operations", res.Operations))
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Enhancer) enhanceFile(store storage.Provider, p string) (Change, error) {
	data, err := store.Read(p)
	if err != nil {
		return Change{}, err
	}
	out, change, err := e.Enhance(data)
	if err != nil {
		return change, err
	}
	if change.Modified {
		if err := store.Write(p, out); err != nil {
			return change, err
		}
	}
	return change, nil
}
