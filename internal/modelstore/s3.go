package modelstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client the backend uses.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Backend stores objects under bucket/prefix.
type S3Backend struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Backend builds a client from the default AWS credential chain.
func NewS3Backend(ctx context.Context, bucket, prefix, region string) (*S3Backend, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3BackendWithClient(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// NewS3BackendWithClient uses an existing client.
func NewS3BackendWithClient(client S3API, bucket, prefix string) *S3Backend {
	return &S3Backend{client: client, bucket: bucket, prefix: prefix}
}

func (b *S3Backend) key(name string) string {
	return path.Join(b.prefix, name)
}

// notFound matches both GetObject (NoSuchKey) and HeadObject (NotFound) errors.
func notFound(err error) bool {
	var nsk *s3types.NoSuchKey
	var nf *s3types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}

// Put uploads data.
func (b *S3Backend) Put(ctx context.Context, name string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", b.Location(name), err)
	}
	return nil
}

// Get downloads data.
func (b *S3Backend) Get(ctx context.Context, name string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(name)),
	})
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, b.Location(name))
		}
		return nil, fmt.Errorf("get %s: %w", b.Location(name), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.Location(name), err)
	}
	return data, nil
}

// Stat issues a HEAD request.
func (b *S3Backend) Stat(ctx context.Context, name string) (ObjectInfo, error) {
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(name)),
	})
	if err != nil {
		if notFound(err) {
			return ObjectInfo{}, fmt.Errorf("%w: %s", ErrObjectNotFound, b.Location(name))
		}
		return ObjectInfo{}, fmt.Errorf("head %s: %w", b.Location(name), err)
	}
	return ObjectInfo{Size: aws.ToInt64(out.ContentLength), ModTime: aws.ToTime(out.LastModified)}, nil
}

// Delete removes the object.
func (b *S3Backend) Delete(ctx context.Context, name string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(name)),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", b.Location(name), err)
	}
	return nil
}

// Location returns "s3://bucket/prefix/name".
func (b *S3Backend) Location(name string) string {
	return "s3://" + b.bucket + "/" + b.key(name)
}
