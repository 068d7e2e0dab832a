package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"github.com/amoeba/libac-go/internal/datreader"
)

// sourceConfig carries the remote-access settings that do not belong
// on the command line. They come only from the --source-config file;
// no flag overrides them. The file beats the cloud SDK's own defaults.
type sourceConfig struct {
	S3 struct {
		Endpoint  string `yaml:"endpoint"` // e.g. an R2 account endpoint
		Region    string `yaml:"region"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
	} `yaml:"s3"`
	Azure struct {
		ServiceURL string `yaml:"service_url"` // may carry a SAS token
	} `yaml:"azure"`
	Cache struct {
		PageSize uint32 `yaml:"page_size"`
		Pages    int    `yaml:"pages"`
	} `yaml:"cache"`
}

func loadSourceConfig(path string) (*sourceConfig, error) {
	var cfg sourceConfig
	cfg.Cache.PageSize = 64 * 1024
	cfg.Cache.Pages = 1024
	if path == "" {
		return &cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	if cfg.Cache.PageSize == 0 {
		cfg.Cache.PageSize = 64 * 1024
	}
	if cfg.Cache.Pages == 0 {
		cfg.Cache.Pages = 1024
	}
	return &cfg, nil
}

type closeFunc func() error

func (f closeFunc) Close() error { return f() }

// openSource resolves --dat-file into a range reader. Local paths are
// read directly; remote schemes get the in-memory page cache so the
// directory walk does not pay one round trip per node.
func openSource(ctx context.Context, src, cfgPath string) (datreader.Reader, io.Closer, error) {
	cfg, err := loadSourceConfig(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	none := closeFunc(func() error { return nil })

	switch {
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		r, err := datreader.OpenHTTP(ctx, src, nil)
		if err != nil {
			return nil, nil, err
		}
		return datreader.NewCached(r, cfg.Cache.PageSize, cfg.Cache.Pages), none, nil

	case strings.HasPrefix(src, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(src, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, nil, fmt.Errorf("bad s3 source %q, want s3://bucket/key", src)
		}
		var opts []func(*config.LoadOptions) error
		if cfg.S3.Region != "" {
			opts = append(opts, config.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.AccessKey != "" {
			opts = append(opts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.S3.AccessKey, cfg.S3.SecretKey, "")))
		}
		awscfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, err
		}
		client := s3.NewFromConfig(awscfg, func(o *s3.Options) {
			if cfg.S3.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
			}
		})
		r := datreader.NewObjectStore(client, bucket, key)
		return datreader.NewCached(r, cfg.Cache.PageSize, cfg.Cache.Pages), none, nil

	case strings.HasPrefix(src, "azblob://"):
		container, blob, ok := strings.Cut(strings.TrimPrefix(src, "azblob://"), "/")
		if !ok || container == "" || blob == "" {
			return nil, nil, fmt.Errorf("bad azblob source %q, want azblob://container/blob", src)
		}
		if cfg.Azure.ServiceURL == "" {
			return nil, nil, fmt.Errorf("azblob source needs azure.service_url in --source-config")
		}
		client, err := azblob.NewClientWithNoCredential(cfg.Azure.ServiceURL, nil)
		if err != nil {
			return nil, nil, err
		}
		r := datreader.NewAzureBlob(client, container, blob)
		return datreader.NewCached(r, cfg.Cache.PageSize, cfg.Cache.Pages), none, nil

	default:
		r, err := datreader.OpenFile(src)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	}
}
