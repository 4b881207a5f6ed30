package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/airbusgeo/geocube-insar/common"
	"github.com/airbusgeo/geocube-insar/interface/productio"
	"github.com/airbusgeo/geocube-insar/product"
	"github.com/airbusgeo/geocube-insar/service"
	"github.com/go-spatial/geom/encoding/wkt"
)

func main() {
	path := flag.String("path", "", "product manifest or directory")
	bands := flag.String("bands", "", "comma-separated list of the expected bands")
	stats := flag.Bool("stats", false, "compute the statistics of the bands")
	flag.Parse()

	manifest, err := productio.Find(*path)
	if err != nil {
		log.Fatal(err)
	}
	p, err := productio.Read(manifest)
	if err != nil {
		log.Fatal(err)
	}
	log.Print(describe(p, *stats))

	if err := product.Validate(p); err != nil {
		log.Printf("invalid product: %v", err)
	}
	if err := product.ValidateMetadata(p, product.DefaultValidationOptions()); err != nil {
		log.Printf("invalid metadata: %v", err)
	}
	if expected := service.SplitList(*bands); len(expected) > 0 {
		if err := product.ValidateBands(p, expected); err != nil {
			log.Printf("unexpected bands: %v", err)
		}
	}
}

func describe(p *product.Product, stats bool) string {
	s := p.Summary()
	if info, err := common.Info(p.Name); err == nil {
		s += fmt.Sprintf("- scene: %s (%s %s)\n", info["SCENE"], info["MISSION_ID"], info["DATE"])
	}
	if abs := product.AbstractedMetadata(p); abs != nil {
		if d, err := product.AcquisitionDate(abs, product.DefaultDateLayout); err == nil {
			s += fmt.Sprintf("- acquisition: %s\n", d)
		}
		if slave := p.Metadata.Element(product.SlaveMetadataRoot).ElementAt(0); slave != nil {
			if d, err := product.AcquisitionDate(slave, product.DefaultDateLayout); err == nil {
				s += fmt.Sprintf("- secondary acquisition: %s\n", d)
			}
		}
	}
	if footprint, err := p.Footprint(); err == nil {
		s += fmt.Sprintf("- footprint: %s\n", wkt.MustEncode(footprint))
	} else {
		s += fmt.Sprintf("- footprint: %v\n", err)
	}
	if stats {
		s += "- statistics:\n"
		for _, b := range p.Bands() {
			st, err := b.Stats()
			if err != nil {
				s += fmt.Sprintf("  * %-40s: %v\n", b.Name, err)
				continue
			}
			s += fmt.Sprintf("  * %-40s: [%g, %g] mean=%g (%d values)\n", b.Name, st.Min, st.Max, st.Mean, st.Count)
		}
	}
	return s
}
