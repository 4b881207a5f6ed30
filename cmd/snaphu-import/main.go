package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/airbusgeo/geocube-insar/common"
	"github.com/airbusgeo/geocube-insar/interface/productio"
	"github.com/airbusgeo/geocube-insar/product"
	"github.com/airbusgeo/geocube-insar/service/log"
	"github.com/airbusgeo/geocube-insar/snaphu"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type config struct {
	Reference        string
	Secondary        string
	Output           string
	DoNotKeepWrapped bool
	DateLayout       string
	Validate         bool
}

func newAppConfig() (*config, error) {
	config := config{}
	flag.StringVar(&config.Reference, "reference", "", "InSAR product (manifest or directory containing exactly one manifest)")
	flag.StringVar(&config.Secondary, "secondary", "", "unwrapped phase product exported by SNAPHU (manifest or directory)")
	flag.StringVar(&config.Output, "output", "", "output directory. {KEY} are replaced with the info of the Sentinel-1 scene of the product (e.g. /data/{MISSION_ID}_{DATE})")
	flag.BoolVar(&config.DoNotKeepWrapped, "do-not-keep-wrapped", false, "do not copy the wrapped interferogram in the output product")
	flag.StringVar(&config.DateLayout, "date-layout", product.DefaultDateLayout, "layout of the dates in the name of the unwrapped phase band (golang time layout)")
	flag.BoolVar(&config.Validate, "validate", false, "validate the output product")
	flag.Parse()

	if config.Reference == "" {
		return nil, fmt.Errorf("missing reference config flag")
	}
	if config.Secondary == "" {
		return nil, fmt.Errorf("missing secondary config flag")
	}
	if config.Output == "" {
		return nil, fmt.Errorf("missing output config flag")
	}
	return &config, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := run(ctx); err != nil {
		log.Fatal("error", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	config, err := newAppConfig()
	if err != nil {
		return err
	}

	products := make([]*product.Product, 2)
	wg := errgroup.Group{}
	for i, path := range []string{config.Reference, config.Secondary} {
		i, path := i, path
		wg.Go(func() error {
			manifest, err := productio.Find(path)
			if err != nil {
				return err
			}
			products[i], err = productio.Read(manifest)
			return err
		})
	}
	if err := wg.Wait(); err != nil {
		return err
	}

	target, err := snaphu.Import(ctx, products,
		snaphu.WithDoNotKeepWrapped(config.DoNotKeepWrapped),
		snaphu.WithDateLayout(config.DateLayout))
	if err != nil {
		return err
	}

	if config.Validate {
		if err := product.Validate(target); err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		if err := product.ValidateMetadata(target, product.DefaultValidationOptions()); err != nil {
			log.Logger(ctx).Sugar().Warnf("metadata: %v", err)
		}
	}

	outdir := config.Output
	if info, err := common.Info(target.Name); err == nil {
		outdir = common.FormatBrackets(outdir, info)
	}
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	manifest := filepath.Join(outdir, target.Name+"."+productio.ManifestExtension)
	if err := productio.Write(manifest, target); err != nil {
		return err
	}
	log.Logger(ctx).Info("product written", zap.String("manifest", manifest))
	fmt.Println(target.Summary())
	return nil
}
