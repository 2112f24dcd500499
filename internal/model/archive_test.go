package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManifestValidate(t *testing.T) {
	valid := Manifest{
		ProjectID:         "P-100",
		ObjectID:          "O-200",
		Phase:             PhaseRD,
		Confidentiality:   ConfidentialityInternal,
		DefaultDiscipline: DisciplineProcess,
	}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(*Manifest)
	}{
		{"missing project", func(m *Manifest) { m.ProjectID = "" }},
		{"missing object", func(m *Manifest) { m.ObjectID = "" }},
		{"bad phase", func(m *Manifest) { m.Phase = "draft" }},
		{"missing confidentiality", func(m *Manifest) { m.Confidentiality = "" }},
		{"missing discipline", func(m *Manifest) { m.DefaultDiscipline = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := valid
			tc.mutate(&m)
			assert.Error(t, m.Validate())
		})
	}
}
