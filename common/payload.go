package common

import (
	"fmt"
)

const (
	ResultTypeMerge = "merge"
)

// Default layers of a MergeJob
const (
	DefaultReferenceLayer = "ifg"
	DefaultSecondaryLayer = "unw"
)

// MergeJob asks for the import of the unwrapped phase of an interferometric pair into its InSAR product
type MergeJob struct {
	ID               int    `json:"id"`
	AOI              string `json:"aoi"`
	Name             string `json:"name"`                // Name of the pair, prefix of all its layers
	Reference        string `json:"reference,omitempty"` // Layer of the InSAR product (default: DefaultReferenceLayer)
	Secondary        string `json:"secondary,omitempty"` // Layer of the unwrapped phase (default: DefaultSecondaryLayer)
	DoNotKeepWrapped bool   `json:"do_not_keep_wrapped,omitempty"`
	DateLayout       string `json:"date_layout,omitempty"`
}

// WithDefaults returns a copy of the job with the default layers
func (j MergeJob) WithDefaults() MergeJob {
	if j.Reference == "" {
		j.Reference = DefaultReferenceLayer
	}
	if j.Secondary == "" {
		j.Secondary = DefaultSecondaryLayer
	}
	return j
}

// Validate checks that the job can be processed
func (j MergeJob) Validate() error {
	if j.AOI == "" {
		return fmt.Errorf("MergeJob[%d]: missing aoi", j.ID)
	}
	if j.Name == "" {
		return fmt.Errorf("MergeJob[%d]: missing name", j.ID)
	}
	if j.Reference != "" && j.Reference == j.Secondary {
		return fmt.Errorf("MergeJob[%d]: reference and secondary are the same layer (%s)", j.ID, j.Reference)
	}
	return nil
}

type Result struct {
	Type    string `json:"type"` // ResultTypeMerge
	ID      int    `json:"id"`
	Status  Status `json:"status"`
	Kind    string `json:"kind,omitempty"` // Kind of failure of the import, if any
	Message string `json:"message"`
}
