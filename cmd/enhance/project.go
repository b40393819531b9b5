package main

import (
	"context"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	enhance "github.com/vango-dev/enhance"
	"github.com/vango-dev/enhance/internal/config"
	"github.com/vango-dev/enhance/internal/errors"
	"github.com/vango-dev/enhance/internal/loader"
	"github.com/vango-dev/enhance/pkg/component"
)

// loadConfig reads the config file at path, or enhance.json in the
// working directory when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load(".")
}

// sources returns the component sources configured for the project: the
// components directory when it exists, then the S3 bucket when one is
// set.
func sources(ctx context.Context, cfg *config.Config) ([]loader.Source, error) {
	var srcs []loader.Source

	dir := cfg.ComponentsPath()
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		srcs = append(srcs, loader.DirSource{Dir: dir})
	}

	if s3cfg := cfg.Sources.S3; s3cfg.Bucket != "" {
		var opts []func(*awsconfig.LoadOptions) error
		if s3cfg.Region != "" {
			opts = append(opts, awsconfig.WithRegion(s3cfg.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, errors.New("E200").
				WithDetail("AWS configuration could not be loaded for s3://" + s3cfg.Bucket).
				Wrap(err)
		}
		srcs = append(srcs, loader.S3Source{
			Client: s3.NewFromConfig(awsCfg),
			Bucket: s3cfg.Bucket,
			Prefix: s3cfg.Prefix,
		})
	}

	return srcs, nil
}

// buildRegistry compiles every component of the project.
func buildRegistry(ctx context.Context, cfg *config.Config) (*component.Registry, error) {
	srcs, err := sources(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, srcs...)
}

// newRenderer creates a renderer honoring the render settings of cfg.
func newRenderer(reg *component.Registry, cfg *config.Config) *enhance.Renderer {
	return enhance.New(reg,
		enhance.WithMaxDepth(cfg.Render.MaxDepth),
		enhance.WithStatePropagation(cfg.Render.PropagateState),
	)
}
