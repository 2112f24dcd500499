package index

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"aedocs/internal/correrr"
	"aedocs/internal/model"
)

// payloadIDField stores a chunk id that wasn't already a UUID, the same
// workaround the teacher's qdrant_vector.go uses since Qdrant point ids
// must be a UUID or a positive integer.
const payloadIDField = "_original_id"

const contentHashField = "_content_hash"

// Qdrant is a per-collection VectorStore backed by Qdrant's gRPC API.
type Qdrant struct {
	client     *qdrant.Client
	collection string
	dimension  int
	metric     string

	mu       sync.Mutex
	hashSeen map[string]string // chunk id -> content hash, for the idempotent-upsert/collision check
}

// NewQdrant connects to dsn (e.g. "http://localhost:6334?api_key=...") and
// ensures collection exists with the given dimension/metric, creating it if
// absent.
func NewQdrant(dsn string, collection model.Collection) (*Qdrant, error) {
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant dsn: %w", err)
	}
	host := parsed.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := parsed.Port()
	if port == "" {
		port = "6334"
	}
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant port: %w", err)
	}

	cfg := &qdrant.Config{Host: host, Port: portNum}
	if parsed.Scheme == "https" {
		cfg.UseTLS = true
	}
	if apiKey := parsed.Query().Get("api_key"); apiKey != "" {
		cfg.APIKey = apiKey
	}

	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	q := &Qdrant{
		client:     client,
		collection: collection.Name,
		dimension:  collection.Dimensions,
		metric:     strings.ToLower(strings.TrimSpace(collection.Metric)),
		hashSeen:   make(map[string]string),
	}
	if err := q.ensureCollection(context.Background()); err != nil {
		client.Close()
		return nil, err
	}
	return q, nil
}

func (q *Qdrant) ensureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("check collection exists: %w", err)
	}
	if exists {
		return nil
	}
	if q.dimension <= 0 {
		return fmt.Errorf("qdrant collection %q requires dimensions > 0", q.collection)
	}

	var distance qdrant.Distance
	switch q.metric {
	case "l2", "euclidean":
		distance = qdrant.Distance_Euclid
	case "ip", "dot":
		distance = qdrant.Distance_Dot
	default:
		distance = qdrant.Distance_Cosine
	}

	return q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(q.dimension),
			Distance: distance,
		}),
	})
}

func (q *Qdrant) Collection() string { return q.collection }
func (q *Qdrant) Dimension() int     { return q.dimension }

func pointUUID(id string) string {
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
}

func (q *Qdrant) UpsertBatch(ctx context.Context, points []model.VectorPoint) error {
	pbPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		hash := contentHash(p.Payload.Content)

		q.mu.Lock()
		prior, seen := q.hashSeen[p.ID]
		q.mu.Unlock()
		if seen && prior != hash {
			return correrr.Integrity(p.ID, fmt.Errorf("re-upsert with differing content hash"))
		}

		uuidStr := pointUUID(p.ID)
		payload := payloadMap(p.Payload)
		payload[contentHashField] = hash
		if uuidStr != p.ID {
			payload[payloadIDField] = p.ID
		}

		vec := make([]float32, len(p.Vector))
		copy(vec, p.Vector)

		pbPoints = append(pbPoints, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuidStr),
			Vectors: qdrant.NewVectorsDense(vec),
			Payload: qdrant.NewValueMap(payload),
		})

		q.mu.Lock()
		q.hashSeen[p.ID] = hash
		q.mu.Unlock()
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points:         pbPoints,
	})
	if err != nil {
		return correrr.Transient(err)
	}
	return nil
}

func (q *Qdrant) Search(ctx context.Context, vector []float32, topK int, ranges []RangeFilter, equality map[string]string) ([]VectorResult, error) {
	if topK <= 0 {
		topK = 10
	}
	vec := make([]float32, len(vector))
	copy(vec, vector)

	var must []*qdrant.Condition
	for k, v := range equality {
		must = append(must, qdrant.NewMatch(k, v))
	}
	for _, r := range ranges {
		must = append(must, qdrant.NewRange(r.Key, &qdrant.Range{Gte: &r.Min, Lte: &r.Max}))
	}
	var filter *qdrant.Filter
	if len(must) > 0 {
		filter = &qdrant.Filter{Must: must}
	}

	limit := uint64(topK)
	hits, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQueryDense(vec),
		Limit:          &limit,
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, correrr.Transient(err)
	}

	results := make([]VectorResult, 0, len(hits))
	for _, hit := range hits {
		payload := hit.GetPayload()
		id := ""
		if v, ok := payload[payloadIDField]; ok {
			id = v.GetStringValue()
		} else if hit.Id != nil {
			id = hit.Id.GetUuid()
		}
		results = append(results, VectorResult{
			ID:      id,
			Score:   hit.Score,
			Payload: payloadFromMap(payload),
		})
	}
	return results, nil
}

func (q *Qdrant) DeleteByFilter(ctx context.Context, equality map[string]string) error {
	var must []*qdrant.Condition
	for k, v := range equality {
		must = append(must, qdrant.NewMatch(k, v))
	}
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points:         qdrant.NewPointsSelectorFilter(&qdrant.Filter{Must: must}),
	})
	if err != nil {
		return correrr.Transient(err)
	}
	return nil
}

func (q *Qdrant) Close() error { return q.client.Close() }

var _ VectorStore = (*Qdrant)(nil)
