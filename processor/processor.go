package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/airbusgeo/geocube-insar/common"
	"github.com/airbusgeo/geocube-insar/interface/productio"
	"github.com/airbusgeo/geocube-insar/product"
	"github.com/airbusgeo/geocube-insar/service"
	"github.com/airbusgeo/geocube-insar/service/log"
	"github.com/airbusgeo/geocube-insar/snaphu"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type output struct {
	layer service.Layer
	ext   service.Extension
}

// ProcessMerge imports the unwrapped phase of the pair into its InSAR product and
// saves the merged product and its footprint.
// Errors of the import itself are fatal: retrying the job will not solve them.
func ProcessMerge(ctx context.Context, storageService service.Storage, job common.MergeJob, workdir string) error {
	job = job.WithDefaults()
	if err := job.Validate(); err != nil {
		return service.MakeFatal(fmt.Errorf("ProcessMerge.%w", err))
	}
	tag := fmt.Sprintf("%s/%s", job.AOI, job.Name)
	ctx = log.With(ctx, "pair", tag)

	// Working dir
	workdir = filepath.Join(workdir, uuid.New().String())
	if err := os.MkdirAll(workdir, 0766); err != nil {
		return service.MakeTemporary(fmt.Errorf("make directory %s: %w", workdir, err))
	}
	defer os.RemoveAll(workdir)

	// Import input layers from storage
	log.Logger(ctx).Info("import layers")
	layers := []service.Layer{service.Layer(job.Reference), service.Layer(job.Secondary)}
	products := make([]*product.Product, len(layers))
	wg, gctx := errgroup.WithContext(ctx)
	for i, layer := range layers {
		i, layer := i, layer
		wg.Go(func() error {
			log.Logger(gctx).Sugar().Debugf("import layer '%s'", layer)
			if err := storageService.ImportLayer(gctx, job, layer, service.ExtensionProduct, workdir); err != nil {
				if errors.As(err, &service.ErrFileNotFound{}) {
					return service.MakeFatal(err)
				}
				return err
			}
			p, err := productio.Read(filepath.Join(workdir, service.LayerFileName(job, layer, service.ExtensionProduct)))
			if err != nil {
				return service.MakeFatal(err)
			}
			products[i] = p
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return fmt.Errorf("ProcessMerge[%s].%w", tag, err)
	}

	// Merge
	log.Logger(ctx).Info("import unwrapped phase")
	target, err := snaphu.Import(ctx, products,
		snaphu.WithDoNotKeepWrapped(job.DoNotKeepWrapped),
		snaphu.WithDateLayout(job.DateLayout))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("ProcessMerge[%s].%w", tag, err)
		}
		return service.MakeFatal(fmt.Errorf("ProcessMerge[%s].%w", tag, err))
	}
	log.Logger(ctx).Sugar().Debugf("merged product: %s", target.Summary())

	// Outputs
	if err := productio.Write(filepath.Join(workdir, service.LayerFileName(job, service.LayerMerged, service.ExtensionProduct)), target); err != nil {
		return fmt.Errorf("ProcessMerge[%s].%w", tag, err)
	}
	outputs := []output{{service.LayerMerged, service.ExtensionProduct}}

	if footprint, err := target.Footprint(); err != nil {
		log.Logger(ctx).Sugar().Warnf("no footprint for %s: %v", target.Name, err)
	} else {
		b, err := service.ToGeoJSON(footprint, map[string]interface{}{"name": target.Name, "pair": job.Name})
		if err != nil {
			return fmt.Errorf("ProcessMerge[%s].%w", tag, err)
		}
		if err := os.WriteFile(filepath.Join(workdir, service.LayerFileName(job, service.LayerFootprint, service.ExtensionGeoJSON)), b, 0644); err != nil {
			return service.MakeTemporary(fmt.Errorf("ProcessMerge[%s].WriteFile: %w", tag, err))
		}
		outputs = append(outputs, output{service.LayerFootprint, service.ExtensionGeoJSON})
	}

	// Export output layers to storage
	// A failing output does not prevent the others from being saved
	var saveErr error
	for _, out := range outputs {
		if err := service.Retriable(ctx, func() error {
			log.Logger(ctx).Sugar().Infof("save layer '%s'", out.layer)
			uri, err := storageService.SaveLayer(ctx, job, out.layer, out.ext, workdir)
			if err != nil {
				return err
			}
			log.Logger(ctx).Sugar().Debugf("layer '%s' saved in %s", out.layer, uri)
			return nil
		}, 5*time.Second, 3); err != nil {
			saveErr = service.MergeErrors(true, saveErr, fmt.Errorf("ProcessMerge[%s].%w (after 3 retries)", tag, err))
		}
	}

	return saveErr
}
