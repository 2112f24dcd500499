// Command ingestd drives one archive through C1-C7: it uploads every file
// under a local directory into the configured object store, then runs
// Core.Ingest over the resulting logical paths. Archive intake framing
// (the actual multi-file upload endpoint) is out of scope (spec.md §1);
// this main stands in for it against a local fixture directory, the way
// cmd/orchestrator wires a Kafka consumer loop in the teacher's tree.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"aedocs/internal/config"
	"aedocs/internal/core"
	"aedocs/internal/corelog"
	"aedocs/internal/model"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("ingestd")
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: ingestd <fixture-directory>")
	}
	root := os.Args[1]

	cfg, err := config.Load(getenv("AEDOCS_CONFIG_PATH", ""))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := corelog.New(os.Stdout, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	c, closeCore, err := core.Bootstrap(ctx, cfg, core.Providers{}, logger)
	if err != nil {
		return fmt.Errorf("bootstrap core: %w", err)
	}
	defer func() {
		if err := closeCore(); err != nil {
			log.Error().Err(err).Msg("error closing core")
		}
	}()

	archive := model.Archive{
		ID:        uuid.NewString(),
		ProjectID: getenv("AEDOCS_PROJECT_ID", "demo-project"),
		ObjectID:  getenv("AEDOCS_OBJECT_ID", "demo-object"),
		Phase:     model.Phase(getenv("AEDOCS_PHASE", string(model.PhasePD))),
		Manifest: model.Manifest{
			ProjectID:         getenv("AEDOCS_PROJECT_ID", "demo-project"),
			ObjectID:          getenv("AEDOCS_OBJECT_ID", "demo-object"),
			Phase:             model.Phase(getenv("AEDOCS_PHASE", string(model.PhasePD))),
			Customer:          getenv("AEDOCS_CUSTOMER", ""),
			Confidentiality:   model.Confidentiality(getenv("AEDOCS_CONFIDENTIALITY", string(model.ConfidentialityInternal))),
			DefaultDiscipline: model.Discipline(getenv("AEDOCS_DISCIPLINE", string(model.DisciplineProcess))),
		},
		ReceivedAt: time.Now().UTC(),
	}

	documents, err := collectDocuments(ctx, c, root, archive.Manifest.DefaultDiscipline)
	if err != nil {
		return fmt.Errorf("collect documents: %w", err)
	}
	if len(documents) == 0 {
		return fmt.Errorf("no documents found under %s", root)
	}

	job, err := c.Ingest(ctx, archive, documents)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	out, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// collectDocuments walks root, uploading each regular file into the
// configured object store under its path relative to root and returning
// the ingest metadata Core.Ingest needs per document.
func collectDocuments(ctx context.Context, c *core.Core, root string, discipline model.Discipline) ([]core.IngestDocument, error) {
	var documents []core.IngestDocument
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		mediaType := mediaTypeFor(p)
		contentHash, err := c.PutObject(ctx, rel, data)
		if err != nil {
			return fmt.Errorf("upload %s: %w", rel, err)
		}

		documents = append(documents, core.IngestDocument{
			LogicalPath: rel,
			MediaType:   mediaType,
			Discipline:  discipline,
			IssuedAt:    info.ModTime().UTC(),
			Title:       strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel)),
			ContentHash: contentHash,
		})
		return nil
	})
	return documents, err
}

func mediaTypeFor(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".ifc":
		return "model/ifc"
	case ".dxf":
		return "application/dxf"
	default:
		if guessed := mime.TypeByExtension(filepath.Ext(p)); guessed != "" {
			return guessed
		}
		return "application/octet-stream"
	}
}
