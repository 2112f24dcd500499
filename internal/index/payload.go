package index

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"aedocs/internal/model"
)

func contentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// payloadMap flattens a CommonPayload into the string-keyed map Qdrant and
// the lexical store both filter on.
func payloadMap(p model.CommonPayload) map[string]any {
	m := map[string]any{
		"project_id":      p.ProjectID,
		"object_id":       p.ObjectID,
		"discipline":      string(p.Discipline),
		"doc_no":          p.DocNo,
		"revision":        p.Revision,
		"language":        p.Language,
		"source_path":     p.SourcePath,
		"confidentiality": string(p.Confidentiality),
		"doc_family":      p.DocFamily,
		"doc_title":       p.DocTitle,
		"chunk_type":      string(p.ChunkType),
		"is_current":      p.IsCurrent,
		"status":          p.Status,
		"superseded_by":   p.SupersededBy,
		"tags":            strings.Join(p.Tags, ","),
		"permissions":     strings.Join(p.Permissions, ","),
		"content":         p.Content,
		"importance":      p.Importance,
	}
	for k, fact := range p.Numeric {
		v, _ := fact.Value.Float64()
		m["numeric."+k] = v
		m["numeric_unit."+k] = string(fact.Unit)
	}
	return m
}

func payloadFromMap(payload map[string]*qdrant.Value) model.CommonPayload {
	get := func(key string) string {
		if v, ok := payload[key]; ok {
			return v.GetStringValue()
		}
		return ""
	}
	var tags, perms []string
	if t := get("tags"); t != "" {
		tags = strings.Split(t, ",")
	}
	if pm := get("permissions"); pm != "" {
		perms = strings.Split(pm, ",")
	}
	importance, _ := strconv.ParseFloat(get("importance"), 64)

	return model.CommonPayload{
		ProjectID:       get("project_id"),
		ObjectID:        get("object_id"),
		Discipline:      model.Discipline(get("discipline")),
		DocNo:           get("doc_no"),
		Revision:        get("revision"),
		Language:        get("language"),
		SourcePath:      get("source_path"),
		Confidentiality: model.Confidentiality(get("confidentiality")),
		DocFamily:       get("doc_family"),
		DocTitle:        get("doc_title"),
		ChunkType:       model.ChunkType(get("chunk_type")),
		IsCurrent:       get("is_current") == "true",
		Status:          get("status"),
		SupersededBy:    get("superseded_by"),
		Tags:            tags,
		Permissions:     perms,
		Content:         get("content"),
		Importance:      importance,
	}
}
