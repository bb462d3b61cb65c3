package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// ApplySchema runs every embedded schema file in name order. Statements are
// written with IF NOT EXISTS so re-running is harmless.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool, embeddingDim int) error {
	entries, err := fs.ReadDir(schemaFS, "schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := schemaFS.ReadFile("schema/" + name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		stmt := strings.ReplaceAll(string(raw), "{{EMBEDDING_DIM}}", fmt.Sprint(embeddingDim))
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}
