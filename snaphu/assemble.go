package snaphu

import (
	"context"
	"fmt"

	"github.com/airbusgeo/geocube-insar/product"
	"github.com/airbusgeo/geocube-insar/service/log"
)

// Assemble creates the target product from the reference and the secondary products.
//
// The target is named and sized after the reference but has the product type of the
// secondary product: it takes the metadata and the geocoding of the reference and the
// bands of the secondary. If keepWrapped is true, the bands of the reference are also copied.
// The unwrapped phase bands of the secondary product are renamed (see TagBand): the
// acquisition dates must be in the metadata of the reference as soon as the secondary has a band.
//
// On error, no product is returned.
func Assemble(ctx context.Context, reference, secondary *product.Product, keepWrapped bool, dateLayout string) (*product.Product, error) {
	target := product.New(reference.Name, secondary.Type, reference.Width, reference.Height)
	if reference.Metadata != nil {
		target.Metadata = reference.Metadata.Clone()
	}
	if reference.GeoCoding != nil {
		target.GeoCoding = reference.GeoCoding.Clone()
	}

	if keepWrapped {
		for _, name := range reference.BandNames() {
			if _, err := copyBand(ctx, reference, name, target); err != nil {
				return nil, err
			}
		}
	}

	secondaryBands := secondary.BandNames()
	if len(secondaryBands) == 0 {
		return target, nil
	}
	tagger, err := newBandTagger(reference.Metadata, dateLayout)
	if err != nil {
		return nil, err
	}
	for _, name := range secondaryBands {
		band, err := copyBand(ctx, secondary, name, target)
		if err != nil {
			return nil, err
		}
		tagged, err := tagger.tag(target, band)
		if err != nil {
			return nil, err
		}
		if tagged {
			log.Logger(ctx).Sugar().Debugf("band %s renamed %s (%s)", name, band.Name, band.Unit)
		}
	}

	return target, nil
}

// copyBand copies the band of the source product in the target product, with the same name.
// The raster is duplicated: the new band is a real band, independent of the source.
func copyBand(ctx context.Context, source *product.Product, bandName string, target *product.Product) (*product.Band, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError(OperatorFailed, err, "copy band %s", bandName)
	}
	src := source.Band(bandName)
	if src == nil {
		return nil, newError(BandCopyFailed, product.ErrBandNotFound, "band %s of %s", bandName, source.Name)
	}
	if src.Data() == nil {
		return nil, newError(BandCopyFailed, fmt.Errorf("no raster data"), "band %s of %s", bandName, source.Name)
	}
	if w, h := src.Dims(); w != target.Width || h != target.Height {
		return nil, newError(BandCopyFailed, fmt.Errorf("raster %dx%d does not fit the target %dx%d", w, h, target.Width, target.Height), "band %s of %s", bandName, source.Name)
	}
	band := src.Copy()
	band.Virtual = false
	if err := target.AddBand(band); err != nil {
		return nil, newError(BandCopyFailed, err, "band %s of %s", bandName, source.Name)
	}
	log.Logger(ctx).Sugar().Debugf("band %s copied from %s", bandName, source.Name)
	return band, nil
}
