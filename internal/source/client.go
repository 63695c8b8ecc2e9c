package source

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// loadAWSConfig reads credentials the usual way (env, ~/.aws, instance role)
func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	return config.LoadDefaultConfig(ctx, loadOpts...)
}
