package snaphu

import (
	"fmt"
	"strings"

	"github.com/airbusgeo/geocube-insar/product"
)

const unwrappedPhasePrefix = "Unw_Phase_ifg_"

// IsUnwrappedPhase returns true if the name of the band designates an unwrapped phase,
// i.e. it contains "unw" or "band" (case insensitive).
// NB: "band" is a broad rule, matching any band whose name contains "band".
func IsUnwrappedPhase(bandName string) bool {
	name := strings.ToLower(bandName)
	return strings.Contains(name, "unw") || strings.Contains(name, "band")
}

// UnwrappedPhaseName returns the name of an unwrapped phase band: Unw_Phase_ifg_<referenceDate>_<secondaryDate>
func UnwrappedPhaseName(referenceDate, secondaryDate string) string {
	return unwrappedPhasePrefix + referenceDate + "_" + secondaryDate
}

// AcquisitionDates returns the acquisition dates of the reference and the secondary acquisitions.
// Both are read from the metadata of the reference product: the secondary date is the date of
// the first element of the Slave_Metadata group.
func AcquisitionDates(referenceMetadata *product.MetadataElement, layout string) (referenceDate, secondaryDate string, err error) {
	if referenceDate, err = product.AcquisitionDate(referenceMetadata.Element(product.AbstractMetadataRoot), layout); err != nil {
		return "", "", fmt.Errorf("AcquisitionDates.reference: %w", err)
	}
	slaves := referenceMetadata.Element(product.SlaveMetadataRoot)
	if slaves == nil || len(slaves.Elements) == 0 {
		return "", "", fmt.Errorf("AcquisitionDates.secondary: %s not found or empty", product.SlaveMetadataRoot)
	}
	if secondaryDate, err = product.AcquisitionDate(slaves.ElementAt(0), layout); err != nil {
		return "", "", fmt.Errorf("AcquisitionDates.secondary: %w", err)
	}
	return referenceDate, secondaryDate, nil
}

// bandTagger renames and sets the unit of the unwrapped phase bands
type bandTagger struct {
	refDate, secondaryDate string
}

// newBandTagger reads the acquisition dates from the metadata of the reference.
// It fails even if no band is an unwrapped phase: the dates are mandatory.
func newBandTagger(referenceMetadata *product.MetadataElement, layout string) (*bandTagger, error) {
	refDate, secondaryDate, err := AcquisitionDates(referenceMetadata, layout)
	if err != nil {
		return nil, newError(OperatorFailed, err, "acquisition dates not found")
	}
	return &bandTagger{refDate: refDate, secondaryDate: secondaryDate}, nil
}

// tag updates the band of the target product if it is an unwrapped phase.
// Returns true if the band has been tagged.
func (t *bandTagger) tag(target *product.Product, band *product.Band) (bool, error) {
	if !IsUnwrappedPhase(band.Name) {
		return false, nil
	}
	name := UnwrappedPhaseName(t.refDate, t.secondaryDate)
	if err := target.RenameBand(band.Name, name); err != nil {
		return false, newError(BandCopyFailed, err, "band %s", band.Name)
	}
	band.Unit = product.UnitAbsPhase
	return true, nil
}

// TagBand sets the unit to absolute phase and renames the band of the target
// product if it is an unwrapped phase.
// The acquisition dates must be found in the metadata of the reference, whatever the band.
// Returns true if the band has been tagged.
func TagBand(target *product.Product, bandName string, referenceMetadata *product.MetadataElement, layout string) (bool, error) {
	band := target.Band(bandName)
	if band == nil {
		return false, newError(BandCopyFailed, product.ErrBandNotFound, "band %s", bandName)
	}
	tagger, err := newBandTagger(referenceMetadata, layout)
	if err != nil {
		return false, err
	}
	return tagger.tag(target, band)
}
