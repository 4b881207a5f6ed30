package processor_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/airbusgeo/geocube-insar/common"
	"github.com/airbusgeo/geocube-insar/interface/productio"
	"github.com/airbusgeo/geocube-insar/processor"
	"github.com/airbusgeo/geocube-insar/product"
	"github.com/airbusgeo/geocube-insar/service"
	"github.com/airbusgeo/geocube-insar/snaphu"
	"github.com/go-spatial/geom"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func newInSARProduct(width, height int) *product.Product {
	p := product.New("S1A_IW_SLC__1SDV_20210101T170106_20210101T170133_025491_02D361_7F7C_Orb_Stack_ifg", "InSAR", width, height)
	p.GeoCoding = product.NewAffineGeoCoding("EPSG:4326", [6]float64{10, 0.5, 0, 45, 0, -0.25})
	abs := p.Metadata.AddElement(product.NewMetadataElement(product.AbstractMetadataRoot))
	abs.SetAttribute(product.AttrFirstLineTime, "01-JAN-2021 17:01:06.000000")
	slave := p.Metadata.AddElement(product.NewMetadataElement(product.SlaveMetadataRoot)).
		AddElement(product.NewMetadataElement("S1B_IW_SLC__1SDV_20210201"))
	slave.SetAttribute(product.AttrFirstLineTime, "01-FEB-2021 17:01:06.000000")
	for _, name := range []string{"i_ifg_VV", "q_ifg_VV", "coh_VV"} {
		b := product.NewBand(name, product.UnitReal, width, height)
		b.Data().Set(0, 0, 1)
		Expect(p.AddBand(b)).To(Succeed())
	}
	return p
}

// failingStorage fails to save the given layer
type failingStorage struct {
	service.Storage
	layer service.Layer
}

func (s failingStorage) SaveLayer(ctx context.Context, job common.MergeJob, layer service.Layer, ext service.Extension, localdir string) (string, error) {
	if layer == s.layer {
		return "", service.MakeFatal(fmt.Errorf("save %s: access denied", layer))
	}
	return s.Storage.SaveLayer(ctx, job, layer, ext, localdir)
}

func newUnwrappedProduct(width, height int) *product.Product {
	p := product.New("UnwPhase_ifg_VV", "SNAPHU", width, height)
	b := product.NewBand("UnwPhase_ifg_VV", "", width, height)
	b.Data().Set(0, 0, 3.14)
	Expect(p.AddBand(b)).To(Succeed())
	return p
}

var _ = Describe("ProcessMerge", func() {
	var (
		ctx                           context.Context
		localdir, distdir, resultsdir string
		storage                       service.Storage
		job                           common.MergeJob
	)

	// saveProduct writes the product in localdir and saves it in the storage
	saveProduct := func(p *product.Product, layer string) {
		manifest := filepath.Join(localdir, service.LayerFileName(job, service.Layer(layer), service.ExtensionProduct))
		Expect(productio.Write(manifest, p)).To(Succeed())
		_, err := storage.SaveLayer(ctx, job, service.Layer(layer), service.ExtensionProduct, localdir)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		localdir, err = os.MkdirTemp("", "local")
		Expect(err).NotTo(HaveOccurred())
		distdir, err = os.MkdirTemp("", "dist")
		Expect(err).NotTo(HaveOccurred())
		resultsdir, err = os.MkdirTemp("", "results")
		Expect(err).NotTo(HaveOccurred())
		storage, err = service.NewStorageStrategy(ctx, distdir)
		Expect(err).NotTo(HaveOccurred())
		job = common.MergeJob{ID: 1, AOI: "test", Name: "20210101_20210201"}
	})

	AfterEach(func() {
		os.RemoveAll(localdir)
		os.RemoveAll(distdir)
		os.RemoveAll(resultsdir)
	})

	Context("with a valid pair", func() {
		BeforeEach(func() {
			saveProduct(newInSARProduct(4, 3), common.DefaultReferenceLayer)
			saveProduct(newUnwrappedProduct(4, 3), common.DefaultSecondaryLayer)
		})

		It("should save the merged product", func() {
			Expect(processor.ProcessMerge(ctx, storage, job, localdir)).To(Succeed())

			Expect(storage.ImportLayer(ctx, job, service.LayerMerged, service.ExtensionProduct, resultsdir)).To(Succeed())
			merged, err := productio.Read(filepath.Join(resultsdir, service.LayerFileName(job, service.LayerMerged, service.ExtensionProduct)))
			Expect(err).NotTo(HaveOccurred())
			Expect(merged.Name).To(HavePrefix("S1A_IW_SLC"))
			Expect(merged.Type).To(Equal("SNAPHU"))
			Expect(merged.BandNames()).To(Equal([]string{"i_ifg_VV", "q_ifg_VV", "coh_VV", "Unw_Phase_ifg_2021-01-01_2021-02-01"}))
			unw := merged.Band("Unw_Phase_ifg_2021-01-01_2021-02-01")
			Expect(unw.Unit).To(Equal(product.UnitAbsPhase))
			Expect(unw.Data().At(0, 0)).To(BeNumerically("~", 3.14, 1e-6))
		})

		It("should save the footprint", func() {
			Expect(processor.ProcessMerge(ctx, storage, job, localdir)).To(Succeed())

			Expect(storage.ImportLayer(ctx, job, service.LayerFootprint, service.ExtensionGeoJSON, resultsdir)).To(Succeed())
			b, err := os.ReadFile(filepath.Join(resultsdir, service.LayerFileName(job, service.LayerFootprint, service.ExtensionGeoJSON)))
			Expect(err).NotTo(HaveOccurred())
			g, err := service.UnmarshalGeometry(b)
			Expect(err).NotTo(HaveOccurred())
			Expect(g).To(BeAssignableToTypeOf(geom.Polygon{}))
			Expect(g.(geom.Polygon)[0]).To(ContainElement([2]float64{12, 44.25}))
		})

		It("should save the merged product even if the footprint cannot be saved", func() {
			err := processor.ProcessMerge(ctx, failingStorage{Storage: storage, layer: service.LayerFootprint}, job, localdir)
			Expect(err).To(MatchError(ContainSubstring("save footprint: access denied")))
			Expect(service.Fatal(err)).To(BeTrue())

			Expect(storage.ImportLayer(ctx, job, service.LayerMerged, service.ExtensionProduct, resultsdir)).To(Succeed())
			_, err = productio.Read(filepath.Join(resultsdir, service.LayerFileName(job, service.LayerMerged, service.ExtensionProduct)))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should save the footprint even if the merged product cannot be saved", func() {
			err := processor.ProcessMerge(ctx, failingStorage{Storage: storage, layer: service.LayerMerged}, job, localdir)
			Expect(err).To(MatchError(ContainSubstring("save unw_ifg: access denied")))

			Expect(storage.ImportLayer(ctx, job, service.LayerFootprint, service.ExtensionGeoJSON, resultsdir)).To(Succeed())
			err = storage.ImportLayer(ctx, job, service.LayerMerged, service.ExtensionProduct, resultsdir)
			Expect(errors.As(err, &service.ErrFileNotFound{})).To(BeTrue())
		})

		It("should drop the wrapped bands on demand", func() {
			job.DoNotKeepWrapped = true
			Expect(processor.ProcessMerge(ctx, storage, job, localdir)).To(Succeed())

			Expect(storage.ImportLayer(ctx, job, service.LayerMerged, service.ExtensionProduct, resultsdir)).To(Succeed())
			merged, err := productio.Read(filepath.Join(resultsdir, service.LayerFileName(job, service.LayerMerged, service.ExtensionProduct)))
			Expect(err).NotTo(HaveOccurred())
			Expect(merged.BandNames()).To(Equal([]string{"Unw_Phase_ifg_2021-01-01_2021-02-01"}))
		})
	})

	Context("with products of different sizes", func() {
		BeforeEach(func() {
			saveProduct(newInSARProduct(4, 3), common.DefaultReferenceLayer)
			saveProduct(newUnwrappedProduct(5, 3), common.DefaultSecondaryLayer)
		})

		It("should fail with a fatal error", func() {
			err := processor.ProcessMerge(ctx, storage, job, localdir)
			Expect(err).To(HaveOccurred())
			Expect(service.Fatal(err)).To(BeTrue())
			kind, ok := snaphu.KindOf(err)
			Expect(ok).To(BeTrue())
			Expect(kind).To(Equal(snaphu.WidthMismatch))
		})
	})

	Context("with a missing layer", func() {
		BeforeEach(func() {
			saveProduct(newInSARProduct(4, 3), common.DefaultReferenceLayer)
		})

		It("should fail", func() {
			Expect(processor.ProcessMerge(ctx, storage, job, localdir)).NotTo(Succeed())
		})
	})

	It("should reject an invalid job", func() {
		job.AOI = ""
		err := processor.ProcessMerge(ctx, storage, job, localdir)
		Expect(err).To(HaveOccurred())
		Expect(service.Fatal(err)).To(BeTrue())
	})
})
