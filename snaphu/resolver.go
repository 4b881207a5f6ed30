package snaphu

import (
	"github.com/airbusgeo/geocube-insar/product"
)

// ResolveReference returns the reference product (the first one that is geocoded)
// and the secondary product (the other one).
// Exactly two products are expected.
func ResolveReference(products []*product.Product) (reference, secondary *product.Product, err error) {
	if len(products) != 2 {
		return nil, nil, newError(InvalidInputCount, nil, "requires EXACTLY two source products (got %d)", len(products))
	}
	for i, p := range products {
		if p == nil {
			return nil, nil, newError(OperatorFailed, nil, "source product %d is nil", i)
		}
	}
	switch {
	case product.HasGeoPos(products[0]):
		return products[0], products[1], nil
	case product.HasGeoPos(products[1]):
		return products[1], products[0], nil
	}
	return nil, nil, newError(NoGeoReferenceFound, nil, "requires at least one product with InSAR metadata and geocoding")
}

// CheckDimensions returns an error if the products do not share the same pixel grid.
// The height is checked first.
func CheckDimensions(reference, secondary *product.Product) error {
	if reference.Height != secondary.Height {
		return newError(HeightMismatch, nil, "requires input products to be of the same HEIGHT dimension (%d != %d)", reference.Height, secondary.Height)
	}
	if reference.Width != secondary.Width {
		return newError(WidthMismatch, nil, "requires input products to be of the same WIDTH dimension (%d != %d)", reference.Width, secondary.Width)
	}
	return nil
}
