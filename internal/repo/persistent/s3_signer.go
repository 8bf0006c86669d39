package persistent

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pixvault/image-search/pkg/s3client"
)

type UploadSignerRepo struct {
	*s3client.S3Client
	bucket string
}

func NewUploadSignerRepo(s3c *s3client.S3Client, bucket string) *UploadSignerRepo {
	return &UploadSignerRepo{s3c, bucket}
}

// SignedPutURL returns a presigned PUT URL scoped to key. The credential is
// bound to the declared content type and expires after ttl.
func (r *UploadSignerRepo) SignedPutURL(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	req, err := r.Presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("UploadSignerRepo - SignedPutURL - r.Presign.PresignPutObject: %w", err)
	}

	return req.URL, nil
}
