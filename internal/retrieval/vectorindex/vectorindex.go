// Package vectorindex is the optional pgvector-accelerated pre-filter
// in front of the example retriever's LCS-ratio scan. Scanning every
// cached chunk under a (language, path hash) scope with the ratio
// algorithm is O(n) per lookup; for a cache directory with thousands
// of chunks, an approximate-nearest-neighbor shortlist narrows that
// scan to a handful of candidates before the ratio becomes the final
// arbiter. It is strictly an accelerator: a Retriever with no Index
// configured still produces correct results, just slower.
package vectorindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/seanblong/doctran/pkg/doctypes"
)

// Index stores one embedding per cached chunk, keyed by the same
// (language, path hash, checksum) coordinates as the blob cache, and
// answers approximate-nearest-neighbor queries scoped to one file.
type Index struct {
	pool *pgxpool.Pool
}

// New connects to the Postgres+pgvector database at databaseURL.
func New(ctx context.Context, databaseURL string) (*Index, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Index{pool: pool}, nil
}

func (i *Index) Close() { i.pool.Close() }

// Migrate creates the chunk_embeddings table and its ANN index for the
// given vector dimension.
func (i *Index) Migrate(ctx context.Context, dim int) error {
	q := fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS chunk_embeddings (
  path_hash  TEXT NOT NULL,
  language   TEXT NOT NULL,
  checksum   TEXT NOT NULL,
  embedding  vector(%d) NOT NULL,
  PRIMARY KEY (path_hash, language, checksum)
);

CREATE INDEX IF NOT EXISTS chunk_embeddings_ann_idx
  ON chunk_embeddings USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
`, dim)
	_, err := i.pool.Exec(ctx, q)
	return err
}

// Upsert records or replaces the embedding for one cached chunk.
func (i *Index) Upsert(ctx context.Context, lang doctypes.Language, pathHash, checksum string, vec []float32) error {
	const q = `
INSERT INTO chunk_embeddings (path_hash, language, checksum, embedding)
VALUES ($1, $2, $3, $4)
ON CONFLICT (path_hash, language, checksum) DO UPDATE SET embedding = EXCLUDED.embedding;`
	_, err := i.pool.Exec(ctx, q, pathHash, string(lang), checksum, pgvector.NewVector(vec))
	return err
}

// NearestNeighbors returns up to limit cached chunk checksums under
// (lang, pathHash), ordered by cosine distance to vec, nearest first.
func (i *Index) NearestNeighbors(ctx context.Context, lang doctypes.Language, pathHash string, vec []float32, limit int) ([]string, error) {
	const q = `
SELECT checksum
FROM chunk_embeddings
WHERE path_hash = $1 AND language = $2
ORDER BY embedding <=> $3
LIMIT $4;`
	rows, err := i.pool.Query(ctx, q, pathHash, string(lang), pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sum string
		if err := rows.Scan(&sum); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Remove deletes the embedding for one cached chunk. The cleaner does
// not call it, so a blob removed by the cleaner keeps its embedding row.
func (i *Index) Remove(ctx context.Context, lang doctypes.Language, pathHash, checksum string) error {
	const q = `DELETE FROM chunk_embeddings WHERE path_hash = $1 AND language = $2 AND checksum = $3;`
	_, err := i.pool.Exec(ctx, q, pathHash, string(lang), checksum)
	if err == pgx.ErrNoRows {
		return nil
	}
	return err
}
