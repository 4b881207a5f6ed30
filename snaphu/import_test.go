package snaphu_test

import (
	"context"
	"errors"
	"sort"

	"github.com/airbusgeo/geocube-insar/product"
	"github.com/airbusgeo/geocube-insar/snaphu"
	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

// newInSARProduct creates a geocoded product with the InSAR metadata of a reference and a secondary acquisition
func newInSARProduct(name string, width, height int, refDate, secDate string, bands map[string]string) *product.Product {
	p := product.New(name, "InSAR", width, height)
	p.GeoCoding = product.NewAffineGeoCoding("EPSG:4326", [6]float64{10, 0.5, 0, 45, 0, -0.25})
	abs := p.Metadata.AddElement(product.NewMetadataElement(product.AbstractMetadataRoot))
	abs.SetAttribute(product.AttrProduct, name)
	abs.SetAttribute(product.AttrFirstLineTime, refDate)
	slaves := p.Metadata.AddElement(product.NewMetadataElement(product.SlaveMetadataRoot))
	slave := slaves.AddElement(product.NewMetadataElement("secondary"))
	slave.SetAttribute(product.AttrFirstLineTime, secDate)
	for _, n := range sortedKeys(bands) {
		b := product.NewBand(n, bands[n], width, height)
		b.Data().Set(0, 0, 1)
		Expect(p.AddBand(b)).To(Succeed())
	}
	return p
}

// newUnwrappedProduct creates a product without geocoding
func newUnwrappedProduct(name string, width, height int, date string, bands ...string) *product.Product {
	p := product.New(name, "SNAPHU", width, height)
	abs := p.Metadata.AddElement(product.NewMetadataElement(product.AbstractMetadataRoot))
	abs.SetAttribute(product.AttrFirstLineTime, date)
	for _, n := range bands {
		b := product.NewBand(n, "", width, height)
		b.Data().Set(0, 0, 2)
		Expect(p.AddBand(b)).To(Succeed())
	}
	return p
}

func sortedKeys(m map[string]string) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func kindOf(err error) snaphu.Kind {
	var e *snaphu.Error
	Expect(errors.As(err, &e)).To(BeTrue(), "error should be a *snaphu.Error: %v", err)
	return e.Kind
}

var _ = Describe("ResolveReference", func() {
	var geocoded, notGeocoded *product.Product

	BeforeEach(func() {
		geocoded = newInSARProduct("A", 200, 100, "2021-01-01", "2021-02-01", nil)
		notGeocoded = newUnwrappedProduct("B", 200, 100, "2021-02-01")
	})

	It("should pick the geocoded product when it is first", func() {
		ref, sec, err := snaphu.ResolveReference([]*product.Product{geocoded, notGeocoded})
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(BeIdenticalTo(geocoded))
		Expect(sec).To(BeIdenticalTo(notGeocoded))
	})

	It("should pick the geocoded product when it is second", func() {
		ref, sec, err := snaphu.ResolveReference([]*product.Product{notGeocoded, geocoded})
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(BeIdenticalTo(geocoded))
		Expect(sec).To(BeIdenticalTo(notGeocoded))
	})

	It("should pick the first product when both are geocoded", func() {
		other := newInSARProduct("C", 200, 100, "2021-01-01", "2021-02-01", nil)
		ref, sec, err := snaphu.ResolveReference([]*product.Product{other, geocoded})
		Expect(err).NotTo(HaveOccurred())
		Expect(ref).To(BeIdenticalTo(other))
		Expect(sec).To(BeIdenticalTo(geocoded))
	})

	It("should ignore a geocoding that cannot compute geographic positions", func() {
		geocoded.GeoCoding = &product.DeclaredGeoCoding{CRS: "EPSG:4326"}
		_, _, err := snaphu.ResolveReference([]*product.Product{geocoded, notGeocoded})
		Expect(kindOf(err)).To(Equal(snaphu.NoGeoReferenceFound))
	})

	It("should fail when no product is geocoded", func() {
		_, _, err := snaphu.ResolveReference([]*product.Product{notGeocoded, newUnwrappedProduct("C", 200, 100, "2021-02-01")})
		Expect(err).To(MatchError(snaphu.ErrKind(snaphu.NoGeoReferenceFound)))
	})

	It("should fail when the number of products is not two", func() {
		for _, products := range [][]*product.Product{nil, {geocoded}, {geocoded, notGeocoded, notGeocoded}} {
			_, _, err := snaphu.ResolveReference(products)
			Expect(kindOf(err)).To(Equal(snaphu.InvalidInputCount))
		}
	})
})

var _ = Describe("CheckDimensions", func() {
	It("should report the height before the width", func() {
		ref := newInSARProduct("A", 200, 100, "2021-01-01", "2021-02-01", nil)
		Expect(kindOf(snaphu.CheckDimensions(ref, newUnwrappedProduct("B", 201, 101, "")))).To(Equal(snaphu.HeightMismatch))
		Expect(kindOf(snaphu.CheckDimensions(ref, newUnwrappedProduct("B", 201, 100, "")))).To(Equal(snaphu.WidthMismatch))
		Expect(snaphu.CheckDimensions(ref, newUnwrappedProduct("B", 200, 100, ""))).To(Succeed())
	})
})

var _ = Describe("Tagger", func() {
	table.DescribeTable("IsUnwrappedPhase",
		func(name string, expected bool) {
			Expect(snaphu.IsUnwrappedPhase(name)).To(Equal(expected))
		},
		table.Entry("unw", "unw_phase", true),
		table.Entry("UNW", "Phase_UNW", true),
		table.Entry("band", "band_1", true),
		table.Entry("Band", "SomeBandName", true),
		table.Entry("wrapped phase", "Phase_ifg_01Jan2021", false),
		table.Entry("intensity", "i_HH", false),
		table.Entry("coherence", "coh_VV", false),
	)

	It("should read the dates from the reference metadata", func() {
		ref := newInSARProduct("A", 2, 2, "01-JAN-2021 10:00:00.000000", "01-FEB-2021 10:00:00.000000", nil)
		refDate, secDate, err := snaphu.AcquisitionDates(ref.Metadata, product.SNAPDateLayout)
		Expect(err).NotTo(HaveOccurred())
		Expect(refDate).To(Equal("01Jan2021"))
		Expect(secDate).To(Equal("01Feb2021"))
	})

	It("should tag an unwrapped phase band", func() {
		ref := newInSARProduct("A", 2, 2, "2021-01-01", "2021-02-01", nil)
		target := newUnwrappedProduct("B", 2, 2, "2021-03-01", "Unw_Phase", "i_HH")
		tagged, err := snaphu.TagBand(target, "Unw_Phase", ref.Metadata, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(tagged).To(BeTrue())
		Expect(target.BandNames()).To(Equal([]string{"Unw_Phase_ifg_2021-01-01_2021-02-01", "i_HH"}))
		Expect(target.Band("Unw_Phase_ifg_2021-01-01_2021-02-01").Unit).To(Equal(product.UnitAbsPhase))

		tagged, err = snaphu.TagBand(target, "i_HH", ref.Metadata, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(tagged).To(BeFalse())
		Expect(target.Band("i_HH").Unit).To(BeEmpty())
	})

	It("should fail without secondary metadata", func() {
		ref := newUnwrappedProduct("A", 2, 2, "2021-01-01")
		target := newUnwrappedProduct("B", 2, 2, "2021-03-01", "unw")
		_, err := snaphu.TagBand(target, "unw", ref.Metadata, "")
		Expect(kindOf(err)).To(Equal(snaphu.OperatorFailed))
		Expect(target.BandNames()).To(Equal([]string{"unw"}))
	})

	It("should fail without secondary metadata whatever the band", func() {
		ref := newUnwrappedProduct("A", 2, 2, "2021-01-01")
		target := newUnwrappedProduct("B", 2, 2, "2021-03-01", "i_HH")
		_, err := snaphu.TagBand(target, "i_HH", ref.Metadata, "")
		Expect(kindOf(err)).To(Equal(snaphu.OperatorFailed))
	})
})

var _ = Describe("Import", func() {
	var ctx context.Context
	var a, b *product.Product

	BeforeEach(func() {
		ctx = context.Background()
		a = newInSARProduct("A", 100, 200, "2021-01-01", "2021-02-01", map[string]string{"phase": product.UnitPhase})
		b = newUnwrappedProduct("B", 100, 200, "2021-02-01", "i_HH", "unw_phase")
	})

	It("should merge the wrapped and the unwrapped products", func() {
		target, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(err).NotTo(HaveOccurred())
		Expect(target.Name).To(Equal("A"))
		Expect(target.Type).To(Equal("SNAPHU"))
		Expect(target.Width).To(Equal(100))
		Expect(target.Height).To(Equal(200))
		Expect(target.BandNames()).To(Equal([]string{"phase", "i_HH", "Unw_Phase_ifg_2021-01-01_2021-02-01"}))
		Expect(target.Band("phase").Unit).To(Equal(product.UnitPhase))
		Expect(target.Band("i_HH").Unit).To(BeEmpty())
		Expect(target.Band("Unw_Phase_ifg_2021-01-01_2021-02-01").Unit).To(Equal(product.UnitAbsPhase))
		Expect(product.HasGeoPos(target)).To(BeTrue())
	})

	It("should not depend on the order of the inputs", func() {
		target, err := snaphu.Import(ctx, []*product.Product{b, a})
		Expect(err).NotTo(HaveOccurred())
		Expect(target.Name).To(Equal("A"))
		Expect(target.BandNames()).To(Equal([]string{"phase", "i_HH", "Unw_Phase_ifg_2021-01-01_2021-02-01"}))
	})

	It("should not keep the wrapped bands", func() {
		target, err := snaphu.Import(ctx, []*product.Product{a, b}, snaphu.WithoutWrapped())
		Expect(err).NotTo(HaveOccurred())
		Expect(target.BandNames()).To(Equal([]string{"i_HH", "Unw_Phase_ifg_2021-01-01_2021-02-01"}))
	})

	It("should format the dates with the layout", func() {
		target, err := snaphu.Import(ctx, []*product.Product{a, b}, snaphu.WithDateLayout(product.SNAPDateLayout))
		Expect(err).NotTo(HaveOccurred())
		Expect(target.ContainsBand("Unw_Phase_ifg_01Jan2021_01Feb2021")).To(BeTrue())
	})

	It("should own its bands, metadata and geocoding", func() {
		target, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(err).NotTo(HaveOccurred())

		a.Band("phase").Data().Set(0, 0, 42)
		a.Band("phase").Unit = "changed"
		b.Band("unw_phase").Data().Set(0, 0, 42)
		a.Metadata.Element(product.AbstractMetadataRoot).SetAttribute(product.AttrProduct, "changed")
		a.GeoCoding.(*product.AffineGeoCoding).GeoTransform[0] = 0

		Expect(target.Band("phase").Data().At(0, 0)).To(Equal(1.0))
		Expect(target.Band("phase").Unit).To(Equal(product.UnitPhase))
		Expect(target.Band("Unw_Phase_ifg_2021-01-01_2021-02-01").Data().At(0, 0)).To(Equal(2.0))
		Expect(target.Band("unw_phase")).To(BeNil())
		Expect(b.Band("unw_phase").Unit).To(BeEmpty())
		Expect(product.AbstractedMetadata(target).AttributeString(product.AttrProduct, "")).To(Equal("A"))
		Expect(target.GeoCoding.(*product.AffineGeoCoding).GeoTransform[0]).To(Equal(10.0))
	})

	It("should copy the wrapped bands as real bands", func() {
		a.Band("phase").Virtual = true
		target, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(err).NotTo(HaveOccurred())
		Expect(target.Band("phase").Virtual).To(BeFalse())
		Expect(a.Band("phase").Virtual).To(BeTrue())
	})

	It("should be idempotent", func() {
		t1, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(err).NotTo(HaveOccurred())
		t2, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(err).NotTo(HaveOccurred())
		Expect(t1).NotTo(BeIdenticalTo(t2))
		Expect(t1.BandNames()).To(Equal(t2.BandNames()))
		for _, name := range t1.BandNames() {
			Expect(t1.Band(name).Unit).To(Equal(t2.Band(name).Unit))
			Expect(t1.Band(name)).NotTo(BeIdenticalTo(t2.Band(name)))
		}
	})

	It("should fail on different widths", func() {
		b = newUnwrappedProduct("B", 101, 200, "2021-02-01", "i_HH", "unw_phase")
		target, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(target).To(BeNil())
		Expect(kindOf(err)).To(Equal(snaphu.WidthMismatch))
	})

	It("should fail on different heights before copying any band", func() {
		b = newUnwrappedProduct("B", 100, 201, "2021-02-01", "i_HH", "unw_phase")
		target, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(target).To(BeNil())
		Expect(kindOf(err)).To(Equal(snaphu.HeightMismatch))
		Expect(b.Band("unw_phase").Unit).To(BeEmpty())
	})

	It("should fail when no product is geocoded", func() {
		a.GeoCoding = nil
		target, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(target).To(BeNil())
		Expect(kindOf(err)).To(Equal(snaphu.NoGeoReferenceFound))
	})

	It("should fail when two bands get the same name", func() {
		b = newUnwrappedProduct("B", 100, 200, "2021-02-01", "unw_phase", "band_1")
		target, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(target).To(BeNil())
		Expect(kindOf(err)).To(Equal(snaphu.BandCopyFailed))
	})

	It("should fail when a band is in both products", func() {
		b = newUnwrappedProduct("B", 100, 200, "2021-02-01", "phase")
		target, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(target).To(BeNil())
		Expect(err).To(MatchError(snaphu.ErrKind(snaphu.BandCopyFailed)))
		Expect(errors.Is(err, product.ErrBandExists)).To(BeTrue())
	})

	It("should fail when a band has no raster", func() {
		Expect(b.AddBand(product.NewBand("empty", "", 0, 0))).To(Succeed())
		_, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(kindOf(err)).To(Equal(snaphu.BandCopyFailed))
	})

	It("should fail on a cancelled context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := snaphu.Import(cctx, []*product.Product{a, b})
		Expect(kindOf(err)).To(Equal(snaphu.OperatorFailed))
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})

	It("should fail without secondary metadata even if no band is an unwrapped phase", func() {
		a.Metadata = product.NewMetadataElement(product.MetadataRootName)
		a.Metadata.AddElement(product.NewMetadataElement(product.AbstractMetadataRoot)).
			SetAttribute(product.AttrFirstLineTime, "2021-01-01")
		b = newUnwrappedProduct("B", 100, 200, "2021-02-01", "i_HH")
		target, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(target).To(BeNil())
		Expect(kindOf(err)).To(Equal(snaphu.OperatorFailed))
	})

	It("should fail with an empty secondary metadata group", func() {
		a.Metadata.Element(product.SlaveMetadataRoot).Elements = nil
		b = newUnwrappedProduct("B", 100, 200, "2021-02-01", "i_HH")
		_, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(kindOf(err)).To(Equal(snaphu.OperatorFailed))
	})

	It("should not need the dates when the secondary has no band", func() {
		a.Metadata = product.NewMetadataElement(product.MetadataRootName)
		b = newUnwrappedProduct("B", 100, 200, "2021-02-01")
		target, err := snaphu.Import(ctx, []*product.Product{a, b})
		Expect(err).NotTo(HaveOccurred())
		Expect(target.BandNames()).To(Equal([]string{"phase"}))
	})

	It("should wrap unexpected failures", func() {
		_, err := snaphu.Import(ctx, []*product.Product{a, nil})
		Expect(kindOf(err)).To(Equal(snaphu.OperatorFailed))
	})
})
