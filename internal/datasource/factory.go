package datasource

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/bbl-multi-builder/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	FileSourceType SourceType = "file"
	HTTPSourceType SourceType = "http"
	S3SourceType   SourceType = "s3"
)

// Factory creates Source implementations based on configuration
type Factory struct {
	logger     logrus.FieldLogger
	httpConfig HTTPClientConfig
}

// NewFactory creates a new data source factory
func NewFactory(logger logrus.FieldLogger) *Factory {
	return &Factory{
		logger:     logger,
		httpConfig: DefaultHTTPClientConfig(),
	}
}

// WithHTTPConfig overrides the HTTP client settings used for http sources
func (f *Factory) WithHTTPConfig(cfg HTTPClientConfig) *Factory {
	f.httpConfig = cfg
	return f
}

// NewSource creates a Source for one configured table
func (f *Factory) NewSource(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	switch SourceType(cfg.Type) {
	case FileSourceType:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file source requires a path")
		}
		return NewFileSource(cfg.Path), nil

	case HTTPSourceType:
		if cfg.URL == "" {
			return nil, fmt.Errorf("http source requires a url")
		}
		httpCfg := f.httpConfig
		if cfg.RateLimit > 0 {
			httpCfg.RateLimit = cfg.RateLimit
		}
		return NewHTTPSource(NewRateLimitedHTTPClient(httpCfg, f.logger), cfg.URL), nil

	case S3SourceType:
		if cfg.Bucket == "" || cfg.Key == "" {
			return nil, fmt.Errorf("s3 source requires bucket and key")
		}
		client, err := NewS3Client(ctx, S3Options{
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return NewS3Source(client, cfg.Bucket, cfg.Key), nil

	default:
		return nil, fmt.Errorf("unknown data source type: %s", cfg.Type)
	}
}
