package bootstrap

import (
	"context"
	"fmt"

	"github.com/planwerk/cockpit-backend/config"
	"github.com/planwerk/cockpit-backend/internal/blobstore"
	"github.com/planwerk/cockpit-backend/internal/platform/logger"
)

// OpenBlobStore builds the file repository selected by BLOB_DRIVER. The
// returned close func is never nil.
func OpenBlobStore(ctx context.Context, cfg *config.BlobConfig, log *logger.Logger) (blobstore.Store, func(), error) {
	noop := func() {}

	switch cfg.Driver {
	case config.BlobDriverWebDAV:
		log.Info("blob store: webdav", "url", cfg.WebDAVURL, "user", cfg.WebDAVUsername)
		return blobstore.NewWebDAV(cfg.WebDAVURL, cfg.WebDAVUsername, cfg.WebDAVPassword), noop, nil

	case config.BlobDriverGCS:
		s, err := blobstore.NewGCS(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, noop, err
		}
		log.Info("blob store: gcs", "bucket", cfg.GCSBucket)
		return s, func() { _ = s.Close() }, nil

	case config.BlobDriverLocal:
		s, err := blobstore.NewLocal(cfg.LocalRoot)
		if err != nil {
			return nil, noop, err
		}
		log.Info("blob store: local", "root", cfg.LocalRoot)
		return s, noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported BLOB_DRIVER %q", cfg.Driver)
	}
}
