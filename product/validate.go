package product

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationOptions configures ValidateMetadata
type ValidationOptions struct {
	ValidateOrbitStateVectors bool
	ValidateAcquisitionDates  bool
}

// DefaultValidationOptions validates everything
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		ValidateOrbitStateVectors: true,
		ValidateAcquisitionDates:  true,
	}
}

var mandatoryAttributes = []string{AttrProduct, AttrProductType, AttrMission, AttrFirstLineTime}

// Validate checks the consistency of a product freshly read
func Validate(p *Product) error {
	if p == nil {
		return fmt.Errorf("Validate: nil product")
	}
	var errs []error
	if p.Name == "" {
		errs = append(errs, fmt.Errorf("product name is empty"))
	}
	if p.Type == "" {
		errs = append(errs, fmt.Errorf("product type is empty"))
	}
	if p.Width <= 0 || p.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid dimensions %dx%d", p.Width, p.Height))
	}
	if p.Metadata == nil {
		errs = append(errs, fmt.Errorf("metadata root is missing"))
	}
	names := map[string]struct{}{}
	for _, b := range p.bands {
		if _, ok := names[b.Name]; ok {
			errs = append(errs, fmt.Errorf("band %s: duplicated", b.Name))
		}
		names[b.Name] = struct{}{}
		if w, h := b.Dims(); w != p.Width || h != p.Height {
			errs = append(errs, fmt.Errorf("band %s: raster %dx%d does not match the product %dx%d", b.Name, w, h, p.Width, p.Height))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("Validate[%s]: %w", p.Name, err)
	}
	return nil
}

// ValidateBands checks that the product has exactly the expected bands (in any order)
func ValidateBands(p *Product, expected []string) error {
	actual := p.BandNames()
	sort.Strings(actual)
	exp := append([]string(nil), expected...)
	sort.Strings(exp)
	if strings.Join(actual, ",") != strings.Join(exp, ",") {
		return fmt.Errorf("ValidateBands[%s]: expected bands %v, got %v", p.Name, exp, actual)
	}
	return nil
}

// ValidateMetadata checks the abstracted metadata of the product
func ValidateMetadata(p *Product, opts ValidationOptions) error {
	absRoot := AbstractedMetadata(p)
	if absRoot == nil {
		return fmt.Errorf("ValidateMetadata[%s]: %s not found", p.Name, AbstractMetadataRoot)
	}
	var errs []error
	for _, name := range mandatoryAttributes {
		if absRoot.AttributeString(name, "") == "" {
			errs = append(errs, fmt.Errorf("attribute %s is missing", name))
		}
	}
	if opts.ValidateAcquisitionDates {
		first, err := AcquisitionTime(absRoot)
		if err != nil {
			errs = append(errs, err)
		}
		if last := absRoot.AttributeString(AttrLastLineTime, ""); last != "" && err == nil {
			if t, err := ParseUTC(last); err != nil {
				errs = append(errs, err)
			} else if t.Before(first) {
				errs = append(errs, fmt.Errorf("%s is before %s", AttrLastLineTime, AttrFirstLineTime))
			}
		}
	}
	if opts.ValidateOrbitStateVectors {
		if osv := absRoot.Element(OrbitStateVectors); osv == nil || len(osv.Elements) == 0 {
			errs = append(errs, fmt.Errorf("%s are missing", OrbitStateVectors))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("ValidateMetadata[%s]: %w", p.Name, err)
	}
	return nil
}
