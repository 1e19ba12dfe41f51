package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// S3 uploads to an S3 bucket or any S3 compatible storage.
type S3 struct {
	client *s3.Client
	dest   Destination
}

func NewS3(ctx context.Context, dest Destination, opts ...Option) (*S3, error) {
	o := newOptions(opts)

	var awscfg aws.Config
	if o.awscfg != nil {
		awscfg = *o.awscfg
	} else {
		loaded, err := config.LoadDefaultConfig(ctx, config.WithRegion(o.awsRegion))
		if err != nil {
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		awscfg = loaded
	}

	if o.awsRoleArn != "" {
		awscfg.Credentials = aws.NewCredentialsCache(
			stscreds.NewAssumeRoleProvider(sts.NewFromConfig(
				awscfg,
				func(so *sts.Options) { so.Region = o.awsRegion },
			), o.awsRoleArn),
		)
		slog.Info("assuming aws role for uploads", "role", o.awsRoleArn)
	}

	client := s3.NewFromConfig(awscfg, func(so *s3.Options) {
		so.Region = o.awsRegion
		if o.awsEndpoint != "" {
			so.BaseEndpoint = aws.String(o.awsEndpoint)
			so.UsePathStyle = true
		}
	})

	return &S3{client: client, dest: dest}, nil
}

// Upload puts r under the destination prefix. Bodies should be seekable for
// the checksum to be computed over plain HTTP endpoints.
func (u *S3) Upload(ctx context.Context, name string, r io.Reader) error {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.dest.Bucket),
		Key:         aws.String(u.dest.Key(name)),
		Body:        r,
		ContentType: aws.String(contentType(name)),
	})

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("s3 rejected %s (%s): %w", u.dest.Key(name), apiErr.ErrorCode(), err)
	}
	return err
}

func (u *S3) String() string {
	return u.dest.String()
}
