package index

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"aedocs/internal/correrr"
	"aedocs/internal/model"
)

// PGVector is the alternate VectorStore implementation for deployments
// without Qdrant (spec.md §9 Open Question), one table per collection.
type PGVector struct {
	pool       *pgxpool.Pool
	collection string
	dimension  int
	metric     string

	mu       sync.Mutex
	hashSeen map[string]string
}

// NewPGVector ensures collection's table exists in pool and returns a
// VectorStore over it.
func NewPGVector(ctx context.Context, pool *pgxpool.Pool, c model.Collection) (*PGVector, error) {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return nil, fmt.Errorf("create vector extension: %w", err)
	}
	table := tableName(c.Name)
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  id TEXT PRIMARY KEY,
  vec vector(%d) NOT NULL,
  content_hash TEXT NOT NULL,
  payload JSONB NOT NULL DEFAULT '{}'::jsonb
)`, table, c.Dimensions)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	return &PGVector{
		pool:       pool,
		collection: c.Name,
		dimension:  c.Dimensions,
		metric:     strings.ToLower(c.Metric),
		hashSeen:   make(map[string]string),
	}, nil
}

func tableName(collection string) string { return "vec_" + collection }

func (p *PGVector) Collection() string { return p.collection }
func (p *PGVector) Dimension() int     { return p.dimension }

func (p *PGVector) UpsertBatch(ctx context.Context, points []model.VectorPoint) error {
	table := tableName(p.collection)
	for _, pt := range points {
		hash := contentHash(pt.Payload.Content)

		p.mu.Lock()
		prior, seen := p.hashSeen[pt.ID]
		p.mu.Unlock()
		if seen && prior != hash {
			return correrr.Integrity(pt.ID, fmt.Errorf("re-upsert with differing content hash"))
		}

		payloadJSON, err := json.Marshal(payloadMap(pt.Payload))
		if err != nil {
			return correrr.InvalidInput("marshal payload: %v", err)
		}

		_, err = p.pool.Exec(ctx, fmt.Sprintf(`
INSERT INTO %s (id, vec, content_hash, payload) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET vec = EXCLUDED.vec, content_hash = EXCLUDED.content_hash, payload = EXCLUDED.payload
`, table), pt.ID, pgvector.NewVector(pt.Vector), hash, payloadJSON)
		if err != nil {
			return correrr.Transient(err)
		}

		p.mu.Lock()
		p.hashSeen[pt.ID] = hash
		p.mu.Unlock()
	}
	return nil
}

func (p *PGVector) Search(ctx context.Context, vector []float32, topK int, ranges []RangeFilter, equality map[string]string) ([]VectorResult, error) {
	if topK <= 0 {
		topK = 10
	}
	table := tableName(p.collection)
	op := "<=>"
	switch p.metric {
	case "l2", "euclidean":
		op = "<->"
	case "ip", "dot":
		op = "<#>"
	}

	where := []string{}
	args := []any{pgvector.NewVector(vector)}
	for k, v := range equality {
		args = append(args, v)
		where = append(where, fmt.Sprintf("payload->>'%s' = $%d", k, len(args)))
	}
	for _, r := range ranges {
		args = append(args, r.Min, r.Max)
		where = append(where, fmt.Sprintf("(payload->>'numeric.%s')::float8 BETWEEN $%d AND $%d", r.Key, len(args)-1, len(args)))
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, topK)

	query := fmt.Sprintf(`
SELECT id, payload, 1 - (vec %s $1) AS score
FROM %s
%s
ORDER BY vec %s $1
LIMIT $%d
`, op, table, whereClause, op, len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, correrr.Transient(err)
	}
	defer rows.Close()

	var results []VectorResult
	for rows.Next() {
		var id string
		var payloadJSON []byte
		var score float32
		if err := rows.Scan(&id, &payloadJSON, &score); err != nil {
			return nil, correrr.Transient(err)
		}
		var raw map[string]any
		_ = json.Unmarshal(payloadJSON, &raw)
		results = append(results, VectorResult{ID: id, Score: score, Payload: payloadFromJSON(raw)})
	}
	return results, rows.Err()
}

func (p *PGVector) DeleteByFilter(ctx context.Context, equality map[string]string) error {
	table := tableName(p.collection)
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
	_, err := p.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s %s", table, whereClause), args...)
	if err != nil {
		return correrr.Transient(err)
	}
	return nil
}

func payloadFromJSON(raw map[string]any) model.CommonPayload {
	str := func(k string) string {
		if v, ok := raw[k].(string); ok {
			return v
		}
		return ""
	}
	return model.CommonPayload{
		ProjectID:       str("project_id"),
		ObjectID:        str("object_id"),
		Discipline:      model.Discipline(str("discipline")),
		DocNo:           str("doc_no"),
		Revision:        str("revision"),
		Language:        str("language"),
		SourcePath:      str("source_path"),
		Confidentiality: model.Confidentiality(str("confidentiality")),
		DocFamily:       str("doc_family"),
		DocTitle:        str("doc_title"),
		ChunkType:       model.ChunkType(str("chunk_type")),
		Content:         str("content"),
	}
}

var _ VectorStore = (*PGVector)(nil)
