package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/starford/doclint/internal/apperr"
	"github.com/starford/doclint/internal/jsondoc"
	"github.com/starford/doclint/internal/storage"
)

// InjectServer points the spec in data at serverURL. A spec whose servers
// already list serverURL is left alone and reported as unchanged;
// otherwise servers is replaced by a single entry for serverURL.
func InjectServer(data []byte, serverURL string) ([]byte, bool, error) {
	spec, err := jsondoc.Parse(data)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", apperr.ErrInvalidSpec, err)
	}
	if servers, ok := spec.Array("servers"); ok {
		for _, raw := range servers {
			var s server
			if err := json.Unmarshal(raw, &s); err == nil && s.URL == serverURL {
				return data, false, nil
			}
		}
	}
	if err := spec.Set("servers", []server{{URL: serverURL}}); err != nil {
		return nil, false, err
	}
	out, err := jsondoc.Encode(spec)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// InjectServers applies InjectServer to every .json file under dir,
// recursively. Files that fail are logged, recorded, and skipped.
func InjectServers(ctx context.Context, store storage.Provider, dir, serverURL string, logger *slog.Logger) ([]FileResult, error) {
	metas, err := store.List(dir, storage.Filter{Suffixes: []string{".json"}})
	if err != nil {
		return nil, fmt.Errorf("openapi: list %s: %w", dir, err)
	}

	results := make([]FileResult, 0, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := FileResult{Path: m.Path}
		res.Modified, res.Err = injectFile(store, m.Path, serverURL)
		switch {
		case res.Err != nil:
			logger.Error("openapi: server injection failed",
				slog.String("file", m.Path),
				slog.String("error", res.Err.Error()))
		case res.Modified:
			logger.Debug("openapi: server injected", slog.String("file", m.Path))
		default:
			logger.Debug("openapi: server already present", slog.String("file", m.Path))
		}
		results = append(results, res)
	}
	return results, nil
}

func injectFile(store storage.Provider, p, serverURL string) (bool, error) {
	data, err := store.Read(p)
	if err != nil {
		return false, err
	}
	out, changed, err := InjectServer(data, serverURL)
	if err != nil || !changed {
		return false, err
	}
	if err := store.Write(p, out); err != nil {
		return false, err
	}
	return true, nil
}
