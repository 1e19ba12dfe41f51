package publish

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"google.golang.org/api/option"
)

type options struct {
	awscfg      *aws.Config
	awsRegion   string
	awsRoleArn  string
	awsEndpoint string
	gcs         []option.ClientOption
}

type Option func(o *options)

// WithAWSConfig replaces the configuration loaded from the environment.
func WithAWSConfig(cfg aws.Config) Option {
	return func(o *options) {
		o.awscfg = &cfg
	}
}

func WithAWSRegion(region string) Option {
	return func(o *options) {
		o.awsRegion = region
	}
}

// WithAWSRoleArn makes S3 calls with the credentials of the assumed role.
func WithAWSRoleArn(role string) Option {
	return func(o *options) {
		o.awsRoleArn = role
	}
}

// WithAWSEndpoint targets an S3 compatible storage instead of AWS.
func WithAWSEndpoint(endpoint string) Option {
	return func(o *options) {
		o.awsEndpoint = endpoint
	}
}

func WithGCSOptions(opts ...option.ClientOption) Option {
	return func(o *options) {
		o.gcs = append(o.gcs, opts...)
	}
}

func newOptions(opts []Option) *options {
	o := &options{awsRegion: "us-east-1"}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}
