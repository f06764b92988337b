package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ExperimentID ID
	RunID        ID
	UnitID       int
	VariableKey  ID
)

// String conversions for domain IDs
func (id ExperimentID) String() string { return ID(id).String() }
func (id RunID) String() string        { return ID(id).String() }
func (id VariableKey) String() string  { return ID(id).String() }

// String returns the unit identifier as a decimal string
func (id UnitID) String() string { return fmt.Sprintf("%d", int(id)) }

// ParseExperimentID parses a string into ExperimentID
func ParseExperimentID(s string) (ExperimentID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("experiment ID cannot be empty")
	}
	return ExperimentID(s), nil
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseVariableKey parses a string into VariableKey
func ParseVariableKey(s string) (VariableKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("variable key cannot be empty")
	}
	return VariableKey(s), nil
}

// Artifact represents any output of the system
type Artifact struct {
	ID        ID           `json:"id"`
	Kind      ArtifactKind `json:"kind"`
	Payload   interface{}  `json:"payload"`
	CreatedAt Timestamp    `json:"created_at"`
}

// ArtifactKind defines types of artifacts
type ArtifactKind string

const (
	// ArtifactRandomizationDistribution carries the full trial sequence of a
	// randomization-distribution run plus its summary statistics.
	ArtifactRandomizationDistribution ArtifactKind = "randomization_distribution"
	// ArtifactNullDistribution carries a permutation-test null distribution
	// and its p-values.
	ArtifactNullDistribution ArtifactKind = "null_distribution"
	// ArtifactExperimentManifest captures audit metadata for a run (seed,
	// trials, roster fingerprint, runtime).
	ArtifactExperimentManifest ArtifactKind = "experiment_manifest"
	ArtifactStandardError      ArtifactKind = "standard_error"
)
