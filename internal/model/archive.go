// Package model holds the shared data types of the retrieval core: Archive,
// Document, the Chunk tagged union, Job, and Manifest. These are fixed-schema
// messages (the teacher's dynamic typed dictionaries become a closed union
// here) passed by value between components; chunks are reached only through
// an archive's job record or through the index, never through a mutable
// in-memory graph.
package model

import "time"

// Phase is the manifest-declared project phase.
type Phase string

const (
	PhasePD       Phase = "pd"
	PhaseRD       Phase = "rd"
	PhaseAsBuilt  Phase = "asbuilt"
)

// Confidentiality is the manifest- and chunk-level sensitivity tag.
type Confidentiality string

const (
	ConfidentialityPublic       Confidentiality = "public"
	ConfidentialityInternal     Confidentiality = "internal"
	ConfidentialityConfidential Confidentiality = "confidential"
	ConfidentialitySecret       Confidentiality = "secret"
)

// Discipline is the engineering discipline a document or chunk belongs to.
type Discipline string

const (
	DisciplineProcess     Discipline = "process"
	DisciplinePiping      Discipline = "piping"
	DisciplineCivil       Discipline = "civil"
	DisciplineElec        Discipline = "elec"
	DisciplineInstr       Discipline = "instr"
	DisciplineHVAC        Discipline = "hvac"
	DisciplineProcurement Discipline = "procurement"
)

// Manifest is the required archive-level metadata descriptor (spec.md §6).
// A missing manifest is a hard job failure.
type Manifest struct {
	ProjectID         string          `yaml:"project_id" json:"project_id"`
	ObjectID          string          `yaml:"object_id" json:"object_id"`
	Phase             Phase           `yaml:"phase" json:"phase"`
	Customer          string          `yaml:"customer" json:"customer"`
	Language          []string        `yaml:"language" json:"language"`
	Confidentiality   Confidentiality `yaml:"confidentiality" json:"confidentiality"`
	DefaultDiscipline Discipline      `yaml:"default_discipline" json:"default_discipline"`
}

// Validate reports the first missing required field, wrapped by the caller
// into an InvalidInput error.
func (m Manifest) Validate() error {
	switch {
	case m.ProjectID == "":
		return errRequired("project_id")
	case m.ObjectID == "":
		return errRequired("object_id")
	case m.Phase != PhasePD && m.Phase != PhaseRD && m.Phase != PhaseAsBuilt:
		return errRequired("phase")
	case m.Confidentiality == "":
		return errRequired("confidentiality")
	case m.DefaultDiscipline == "":
		return errRequired("default_discipline")
	}
	return nil
}

type missingFieldError struct{ field string }

func (e missingFieldError) Error() string { return "manifest: missing required field " + e.field }

func errRequired(field string) error { return missingFieldError{field: field} }

// Archive is the immutable upload unit. Never mutated after creation; the
// archive hash uniquely dedupes re-uploads.
type Archive struct {
	ID          string
	ContentHash string
	ProjectID   string
	ObjectID    string
	Phase       Phase
	Manifest    Manifest
	ByteSize    int64
	ReceivedAt  time.Time
}

// DocType is the inferred or declared kind of document.
type DocType string

const (
	DocTypePFD     DocType = "PFD"
	DocTypePID     DocType = "P&ID"
	DocTypeSpec    DocType = "SPEC"
	DocTypeBOM     DocType = "BOM"
	DocTypeBOQ     DocType = "BOQ"
	DocTypeDrawing DocType = "DRAWING"
	DocTypeIFC     DocType = "IFC"
	DocTypeManual  DocType = "MANUAL"
	DocTypeReport  DocType = "REPORT"
)

// DocStatus is the document lifecycle state.
type DocStatus string

const (
	DocStatusPending  DocStatus = "pending"
	DocStatusParsed   DocStatus = "parsed"
	DocStatusChunked  DocStatus = "chunked"
	DocStatusIndexed  DocStatus = "indexed"
	DocStatusReady    DocStatus = "ready"
	DocStatusFailed   DocStatus = "failed"
)

// Document is a single file inside an archive.
type Document struct {
	ID          string
	ArchiveID   string
	LogicalPath string
	MediaType   string
	ContentHash string
	Discipline  Discipline
	DocType     DocType
	RevisionTag string
	IssuedAt    time.Time
	Vendor      string
	Language    string
	Title       string
	Status      DocStatus
}
