package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/starford/doclint/internal/docs"
	"github.com/starford/doclint/internal/parser"
	"github.com/starford/doclint/internal/storage"
)

// Source describes the documentation tree the index mirrors.
type Source struct {
	Store  storage.Provider
	Oracle *docs.Oracle
	// Filter selects the documents to index; its Suffixes are normally
	// the documentation extensions.
	Filter storage.Filter
}

// Sync walks the documentation tree and brings the index up to date:
//   - new/changed documents are parsed and upserted
//   - documents removed from disk are deleted from the index
func Sync(ctx context.Context, db *DB, src Source, logger *slog.Logger) error {
	metas, err := src.Store.List("", src.Filter)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return err
		}
		disk[m.Path] = struct{}{}

		data, err := src.Store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if checksums[m.Path] == checksum(data) {
			continue
		}
		if err := indexFile(db, src.Oracle, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile extracts the title and references of a document and upserts
// it into the DB. Reference targets are stored as canonical document paths.
func indexFile(db *DB, oracle *docs.Oracle, path string, data []byte) error {
	refs := parser.References(path, string(data))
	links := make([]LinkRow, 0, len(refs))
	for _, r := range refs {
		links = append(links, LinkRow{
			Source: path,
			Target: oracle.DocPath(docs.Resolve(r.Target, path)),
			Kind:   string(r.Kind),
			Line:   r.Line,
		})
	}

	row := DocumentRow{
		Path:      path,
		Title:     parser.Title(data),
		Checksum:  checksum(data),
		UpdatedAt: time.Now().UTC(),
	}
	return db.UpsertDocument(row, links)
}

// checksum returns the hex-encoded SHA-256 of data.
func checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
