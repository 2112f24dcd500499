package index

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"aedocs/internal/correrr"
	"aedocs/internal/model"
)

// PostgresLexical is the shared full-text index across every chunk type,
// generalised from the teacher's postgres_search.go SearchChunks path:
// one `chunks` table, a generated tsvector column, GIN index, JSONB
// payload filters.
type PostgresLexical struct {
	pool *pgxpool.Pool

	mu       sync.Mutex
	hashSeen map[string]string
}

// NewPostgresLexical bootstraps the chunks table/index and returns a
// LexicalStore over pool.
func NewPostgresLexical(ctx context.Context, pool *pgxpool.Pool) (*PostgresLexical, error) {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pg_trgm`); err != nil {
		return nil, fmt.Errorf("create pg_trgm: %w", err)
	}
	ddl := `
CREATE TABLE IF NOT EXISTS chunks (
  id TEXT PRIMARY KEY,
  content_hash TEXT NOT NULL,
  payload JSONB NOT NULL DEFAULT '{}'::jsonb,
  content TEXT NOT NULL,
  tsv tsvector GENERATED ALWAYS AS (to_tsvector('simple', content)) STORED
);
CREATE INDEX IF NOT EXISTS chunks_tsv_idx ON chunks USING GIN(tsv);
CREATE INDEX IF NOT EXISTS chunks_payload_idx ON chunks USING GIN(payload);
`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create chunks table: %w", err)
	}
	return &PostgresLexical{pool: pool, hashSeen: make(map[string]string)}, nil
}

func (l *PostgresLexical) IndexBatch(ctx context.Context, chunks []model.Chunk) error {
	for _, c := range chunks {
		payload := c.Payload()
		hash := contentHash(payload.Content)

		l.mu.Lock()
		prior, seen := l.hashSeen[c.ID()]
		l.mu.Unlock()
		if seen && prior != hash {
			return correrr.Integrity(c.ID(), fmt.Errorf("re-index with differing content hash"))
		}

		payloadJSON, err := json.Marshal(payloadMap(payload))
		if err != nil {
			return correrr.InvalidInput("marshal payload: %v", err)
		}

		_, err = l.pool.Exec(ctx, `
INSERT INTO chunks (id, content_hash, payload, content) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET content_hash = EXCLUDED.content_hash, payload = EXCLUDED.payload, content = EXCLUDED.content
`, c.ID(), hash, payloadJSON, payload.Content)
		if err != nil {
			return correrr.Transient(err)
		}

		l.mu.Lock()
		l.hashSeen[c.ID()] = hash
		l.mu.Unlock()
	}
	return nil
}

func (l *PostgresLexical) Search(ctx context.Context, query string, topK int, equality map[string]string) ([]LexicalResult, error) {
	if topK <= 0 {
		topK = 10
	}
	where := []string{"tsv @@ websearch_to_tsquery('simple', $1)"}
	args := []any{query}
	for k, v := range equality {
		args = append(args, v)
		where = append(where, fmt.Sprintf("payload->>'%s' = $%d", k, len(args)))
	}
	args = append(args, topK)

	q := fmt.Sprintf(`
SELECT id, payload, ts_rank(tsv, websearch_to_tsquery('simple', $1)) AS rank
FROM chunks
WHERE %s
ORDER BY rank DESC
LIMIT $%d
`, strings.Join(where, " AND "), len(args))

	rows, err := l.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, correrr.Transient(err)
	}
	defer rows.Close()

	var out []LexicalResult
	for rows.Next() {
		var id string
		var payloadJSON []byte
		var rank float32
		if err := rows.Scan(&id, &payloadJSON, &rank); err != nil {
			return nil, correrr.Transient(err)
		}
		var raw map[string]any
		_ = json.Unmarshal(payloadJSON, &raw)
		out = append(out, LexicalResult{ID: id, Score: rank, Payload: payloadFromJSON(raw)})
	}
	return out, rows.Err()
}

func (l *PostgresLexical) DeleteByFilter(ctx context.Context, equality map[string]string) error {
	where := []string{}
	args := []any{}
	for k, v := range equality {
		args = append(args, v)
		where = append(where, fmt.Sprintf("payload->>'%s' = $%d", k, len(args)))
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}
	_, err := l.pool.Exec(ctx, "DELETE FROM chunks "+whereClause, args...)
	if err != nil {
		return correrr.Transient(err)
	}
	return nil
}

var _ LexicalStore = (*PostgresLexical)(nil)
