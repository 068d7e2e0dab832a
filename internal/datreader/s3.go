package datreader

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ObjectStore serves ranges from an S3-compatible bucket with scoped
// GetObject calls. Cloudflare R2 and MinIO endpoints work through the
// same client.
type ObjectStore struct {
	client *s3.Client
	bucket string
	key    string
}

func NewObjectStore(client *s3.Client, bucket, key string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket, key: key}
}

func (r *ObjectStore) ReadRange(ctx context.Context, offset uint32, length int) ([]byte, error) {
	end := int64(offset) + int64(length) - 1
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, end)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, r.bucket, r.key)
		}
		var api smithy.APIError
		if errors.As(err, &api) {
			switch api.ErrorCode() {
			case "NoSuchKey", "NoSuchBucket", "NotFound":
				return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, r.bucket, r.key)
			case "InvalidRange":
				return nil, fmt.Errorf("%w: bytes %d-%d of s3://%s/%s", ErrRangeUnavailable, offset, end, r.bucket, r.key)
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer out.Body.Close()

	buf := make([]byte, length)
	if _, err := io.ReadFull(out.Body, buf); err != nil {
		return nil, fmt.Errorf("%w: bytes %d-%d of s3://%s/%s: %v", ErrShortRead, offset, end, r.bucket, r.key, err)
	}
	return buf, nil
}
