// Package config loads the process configuration: typed nested structs
// populated from a YAML file plus environment-variable overrides, following
// the teacher's LoadConfig(path) convention.
package config

import (
	"time"

	"aedocs/internal/ingest"
)

// ObjectStoreConfig configures C1.
type ObjectStoreConfig struct {
	Bucket          string        `yaml:"bucket"`
	Region          string        `yaml:"region"`
	Endpoint        string        `yaml:"endpoint,omitempty"` // non-empty for S3-compatible (non-AWS) endpoints
	PresignTTL      time.Duration `yaml:"presign_ttl"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
}

// CollectionConfig is one dense vector collection's provisioning (spec.md
// §3 "Collection").
type CollectionConfig struct {
	Name       string `yaml:"name"`
	ModelName  string `yaml:"model_name"`
	Dimensions int    `yaml:"dimensions"`
	Metric     string `yaml:"metric"`
}

// VectorStoreConfig configures C6's vector side.
type VectorStoreConfig struct {
	Backend     string             `yaml:"backend"` // "qdrant" | "pgvector"
	DSN         string             `yaml:"dsn"`
	Collections []CollectionConfig `yaml:"collections"`
	UpsertTimeout time.Duration    `yaml:"upsert_timeout"`
}

// LexicalStoreConfig configures C6's lexical side (Postgres full-text
// search).
type LexicalStoreConfig struct {
	DSN           string        `yaml:"dsn"`
	TableName     string        `yaml:"table_name"`
	SearchTimeout time.Duration `yaml:"search_timeout"`
}

// EmbedderModelConfig is one model-family embedder endpoint (spec.md §4.5).
type EmbedderModelConfig struct {
	Collection string        `yaml:"collection"`
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key,omitempty"`
	BatchSize  int           `yaml:"batch_size"`
	Timeout    time.Duration `yaml:"timeout"`
}

// EmbedderConfig configures C5.
type EmbedderConfig struct {
	Models []EmbedderModelConfig `yaml:"models"`
}

// RerankerConfig configures C10.
type RerankerConfig struct {
	Endpoint        string        `yaml:"endpoint"`
	APIKey          string        `yaml:"api_key,omitempty"`
	Timeout         time.Duration `yaml:"timeout"`
	SimilarityFloor float64       `yaml:"similarity_floor"`
}

// OrchestratorConfig configures C7.
type OrchestratorConfig struct {
	Workers         int `yaml:"workers"`
	BatchSize       int `yaml:"batch_size"`
	ChannelCapacity int `yaml:"channel_capacity"`

	KafkaBrokers []string `yaml:"kafka_brokers,omitempty"`
	KafkaTopic   string   `yaml:"kafka_topic,omitempty"`

	// ReingestPolicy controls what happens when an archive with a content
	// hash already seen before is uploaded again (spec.md §3 archive-hash
	// dedupe invariant): skip_if_unchanged, overwrite or new_version.
	ReingestPolicy string `yaml:"reingest_policy"`
}

// QueryConfig configures C8-C12.
type QueryConfig struct {
	Deadline        time.Duration `yaml:"deadline"`
	DenseTopN       int           `yaml:"dense_top_n"`
	LexicalTopN     int           `yaml:"lexical_top_n"`
	RerankTopK      int           `yaml:"rerank_top_k"`
	FinalTopK       int           `yaml:"final_top_k"`
	MaxFanout       int           `yaml:"max_fanout"`
	WeightBM25      float64       `yaml:"weight_bm25"`
	WeightDense     float64       `yaml:"weight_dense"`
	AnalogTolerance float64       `yaml:"analog_tolerance"`
	SynonymsPath    string        `yaml:"synonyms_path"`
	UnitTablePath   string        `yaml:"unit_table_path"`
}

// TelemetryConfig configures the OpenTelemetry metrics export.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint,omitempty"`
	ServiceName string `yaml:"service_name"`
}

// Config is the process-wide configuration root.
type Config struct {
	LogLevel string `yaml:"log_level"`

	ObjectStore  ObjectStoreConfig  `yaml:"object_store"`
	VectorStore  VectorStoreConfig  `yaml:"vector_store"`
	LexicalStore LexicalStoreConfig `yaml:"lexical_store"`
	Embedder     EmbedderConfig     `yaml:"embedder"`
	Reranker     RerankerConfig     `yaml:"reranker"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Query        QueryConfig        `yaml:"query"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// Default returns a Config with spec.md's default tuning constants applied,
// suitable as a base before YAML/env overrides.
func Default() Config {
	return Config{
		LogLevel: "info",
		ObjectStore: ObjectStoreConfig{
			PresignTTL:  15 * time.Minute,
			ReadTimeout: 30 * time.Second,
		},
		VectorStore: VectorStoreConfig{
			Backend:       "qdrant",
			Collections:   defaultCollections(),
			UpsertTimeout: 30 * time.Second,
		},
		LexicalStore: LexicalStoreConfig{
			TableName:     "chunks",
			SearchTimeout: 5 * time.Second,
		},
		Reranker: RerankerConfig{
			Timeout:         10 * time.Second,
			SimilarityFloor: 0.7,
		},
		Orchestrator: OrchestratorConfig{
			Workers:         4,
			BatchSize:       64,
			ChannelCapacity: 256,
			ReingestPolicy:  string(ingest.ReingestSkipIfUnchanged),
		},
		Query: QueryConfig{
			Deadline:        10 * time.Second,
			DenseTopN:       30,
			LexicalTopN:     30,
			RerankTopK:      50,
			FinalTopK:       10,
			MaxFanout:       32,
			WeightBM25:      0.3,
			WeightDense:     0.4,
			AnalogTolerance: 0.20,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "aedocs",
		},
	}
}

func defaultCollections() []CollectionConfig {
	return []CollectionConfig{
		{Name: "ae_text_m3", ModelName: "bge-m3", Dimensions: 1024, Metric: "cosine"},
		{Name: "ae_tables", ModelName: "bge-m3", Dimensions: 1024, Metric: "cosine"},
		{Name: "ae_drawings_clip", ModelName: "clip", Dimensions: 768, Metric: "cosine"},
		{Name: "ae_ifc", ModelName: "bge-m3", Dimensions: 1024, Metric: "cosine"},
	}
}
