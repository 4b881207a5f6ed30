package snaphu

import (
	"context"
	"fmt"

	"github.com/airbusgeo/geocube-insar/product"
	"github.com/airbusgeo/geocube-insar/service/log"
)

type options struct {
	doNotKeepWrapped bool
	dateLayout       string
}

// Option of Import
type Option func(*options)

// WithoutWrapped does not copy the wrapped interferogram in the target product
func WithoutWrapped() Option {
	return WithDoNotKeepWrapped(true)
}

// WithDoNotKeepWrapped configures whether the wrapped interferogram is copied in the target product (default: false)
func WithDoNotKeepWrapped(doNotKeepWrapped bool) Option {
	return func(o *options) {
		o.doNotKeepWrapped = doNotKeepWrapped
	}
}

// WithDateLayout sets the layout of the dates in the name of the unwrapped phase bands (default: product.DefaultDateLayout)
func WithDateLayout(layout string) Option {
	return func(o *options) {
		if layout != "" {
			o.dateLayout = layout
		}
	}
}

// Import ingests the result of a phase unwrapping (SNAPHU) into an InSAR product.
// It takes exactly two products: the InSAR product (geocoded, that provides the metadata)
// and the unwrapped phase (in any order).
//
// All the errors are returned as *Error. On error, no product is returned.
func Import(ctx context.Context, products []*product.Product, opts ...Option) (target *product.Product, err error) {
	o := options{dateLayout: product.DefaultDateLayout}
	for _, opt := range opts {
		opt(&o)
	}

	defer func() {
		if r := recover(); r != nil {
			target = nil
			err = newError(OperatorFailed, fmt.Errorf("%v", r), "unexpected failure")
		}
		if err != nil {
			target = nil
			err = asOperatorError(err)
		}
	}()

	reference, secondary, err := ResolveReference(products)
	if err != nil {
		return nil, err
	}
	log.Logger(ctx).Sugar().Debugf("reference product: %s, secondary product: %s", reference.Name, secondary.Name)

	if err := CheckDimensions(reference, secondary); err != nil {
		return nil, err
	}

	return Assemble(ctx, reference, secondary, !o.doNotKeepWrapped, o.dateLayout)
}
