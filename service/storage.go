package service

import (
	"compress/flate"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	gstorage "cloud.google.com/go/storage"
	"github.com/airbusgeo/geocube-insar/common"
	"github.com/airbusgeo/geocube/interface/storage"
	"github.com/airbusgeo/geocube/interface/storage/uri"
	"github.com/mholt/archiver"
)

// Layer of a pair
type Layer string

// List of available layers
const (
	LayerMerged    Layer = "unw_ifg"
	LayerFootprint Layer = "footprint"
)

// Extension of a layer
type Extension string

// Some supported extensions
const (
	NoExtension      Extension = "" // The layer has no extension
	ExtensionZIP     Extension = "zip"
	ExtensionGeoJSON Extension = "geojson"
	// The following extensions are directories, thus, they are stored as a zip file (see service.storeAsZip() function)
	// Using those extensions ensures that the stored file will be unzipped in a directory named <layer>.<Extension>
	ExtensionProduct     Extension = "json" // Product manifest (see interface/productio) with its data directory
	ExtensionProductData Extension = "data"
)

// ErrFileNotFound is an error returned by ImportLayer or DeleteLayer
type ErrFileNotFound struct {
	File string
}

func (e ErrFileNotFound) Error() string {
	return fmt.Sprintf("File not found: %s", e.File)
}

func isErrNotFound(err error) bool {
	var epath *os.PathError
	return errors.Is(err, gstorage.ErrObjectNotExist) ||
		(errors.As(err, &epath) && os.IsNotExist(epath))
}

// LayerFileName returns the name of the file given the job, the layer and the extension
func LayerFileName(job common.MergeJob, layer Layer, ext Extension) string {
	if ext == NoExtension {
		return fmt.Sprintf("%s_%s", job.Name, layer)
	}
	return fmt.Sprintf("%s_%s.%s", job.Name, layer, ext)
}

// Storage is a service to store and retrieve file from storage
type Storage interface {
	// SaveLayer persists the layer into a storage and returns the uri
	SaveLayer(ctx context.Context, job common.MergeJob, layer Layer, ext Extension, localdir string) (string, error)
	// ImportLayer imports the layer from the storage to the given localdir
	// Raise ErrFileNotFound
	ImportLayer(ctx context.Context, job common.MergeJob, layer Layer, ext Extension, localdir string) error
	// DeleteLayer delete the layer from the storage
	// Raise ErrFileNotFound
	DeleteLayer(ctx context.Context, job common.MergeJob, layer Layer, ext Extension) error
}

// StorageStrategy implements Storage using geocube.Strategy
type StorageStrategy struct {
	storage storage.Strategy
	uri     uri.DefaultUri
}

// NewStorageStrategy creates a new StorageStrategy
func NewStorageStrategy(ctx context.Context, storageURI string) (*StorageStrategy, error) {
	uri, err := uri.ParseUri(storageURI)
	if err != nil {
		return nil, fmt.Errorf("NewStorageStrategy.ParseURI: %w", err)
	}

	storageClient, err := uri.NewStorageStrategy(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewStorageStrategy: %w", err)
	}

	return &StorageStrategy{storage: storageClient, uri: uri}, nil
}

// SaveLayer implements Storage
func (ss *StorageStrategy) SaveLayer(ctx context.Context, job common.MergeJob, layer Layer, ext Extension, localdir string) (string, error) {
	src := path.Join(localdir, LayerFileName(job, layer, ext))

	if storedAsZip(ext) {
		folders := []string{src}
		if ext == ExtensionProduct {
			folders = append(folders, WithExt(src, ExtensionProductData))
		}
		// Zip
		dst := WithExt(src, ExtensionZIP)
		zipper := archiver.NewZip()
		zipper.CompressionLevel = flate.BestSpeed
		if err := zipper.Archive(folders, dst); err != nil {
			return "", fmt.Errorf("SaveLayer.Archive: %w", err)
		}
		defer os.Remove(dst)

		// Update source and extension
		src = dst
		ext = ExtensionZIP
	}

	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("SaveLayer.Open: %w", err)
	}
	defer f.Close()

	dst := ss.getPath(job, LayerFileName(job, layer, ext))
	if err := ss.storage.UploadFile(ctx, dst, f); err != nil {
		return "", fmt.Errorf("SaveLayer.UploadFromFile to %s: %w", dst, err)
	}

	return dst, nil
}

// ImportLayer implements Storage
func (ss *StorageStrategy) ImportLayer(ctx context.Context, job common.MergeJob, layer Layer, ext Extension, localdir string) error {
	targetExt := ext
	if storedAsZip(ext) {
		ext = ExtensionZIP
	}

	layerFileName := LayerFileName(job, layer, ext)
	srcFile := ss.getPath(job, layerFileName)
	dstFile := path.Join(localdir, layerFileName)
	if err := ss.storage.DownloadToFile(ctx, srcFile, dstFile); err != nil {
		if isErrNotFound(err) {
			return ErrFileNotFound{srcFile}
		}
		return fmt.Errorf("ImportLayer.DownloadToFile from %s: %w", srcFile, err)
	}

	if ext == ExtensionZIP && targetExt != ExtensionZIP {
		defer os.Remove(dstFile)
		tmpDir, err := os.MkdirTemp(localdir, "sampledir")
		if err != nil {
			return fmt.Errorf("ImportLayer.MkdirTemp: %w", err)
		}
		defer os.RemoveAll(tmpDir)
		zip := archiver.Zip{OverwriteExisting: true, MkdirAll: true}
		if err := zip.Unarchive(dstFile, tmpDir); err != nil {
			return fmt.Errorf("ImportLayer.Unarchive: %w", err)
		}

		// The archive contains the manifest and its data directory
		layerFileName = LayerFileName(job, layer, targetExt)
		moves := []string{layerFileName}
		if targetExt == ExtensionProduct {
			moves = append(moves, WithExt(layerFileName, ExtensionProductData))
		}
		for _, name := range moves {
			if err := os.Rename(path.Join(tmpDir, name), path.Join(localdir, name)); err != nil {
				return fmt.Errorf("ImportLayer.Rename: %w", err)
			}
		}
	}

	return nil
}

// DeleteLayer implements Storage
func (ss *StorageStrategy) DeleteLayer(ctx context.Context, job common.MergeJob, layer Layer, ext Extension) error {
	if storedAsZip(ext) {
		ext = ExtensionZIP
	}

	file := ss.getPath(job, LayerFileName(job, layer, ext))
	if err := ss.storage.Delete(ctx, file); err != nil {
		if isErrNotFound(err) {
			return ErrFileNotFound{file}
		}
		return fmt.Errorf("DeleteLayer.Delete: %w", err)
	}

	return nil
}

// getPath returns the path of the layer of the job in the storage
func (ss *StorageStrategy) getPath(job common.MergeJob, filename string) string {
	uri := ss.uri.String()
	if !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	return uri + path.Join(job.AOI, job.Name, filename)
}

func storedAsZip(ext Extension) bool {
	switch ext {
	case ExtensionProduct, ExtensionProductData:
		return true
	}
	return false
}

func WithExt(filePath string, ext Extension) string {
	filePath = strings.TrimSuffix(filePath, filepath.Ext(filePath))
	if ext != "" {
		return fmt.Sprintf("%s.%s", filePath, string(ext))
	}
	return filePath
}
