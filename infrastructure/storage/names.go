// Package storage resolves employee names for enrollment images stored in S3.
package storage

import (
	"context"
	"fmt"
	"strings"

	"attendance-backend/application/ports"
	"attendance-backend/domain/employee"
	pkgerrors "attendance-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Object metadata keys read by MetadataResolver. S3 lower-cases user
// metadata names, so x-amz-meta-First-Name arrives as first-name.
const (
	MetaFirstName = "first-name"
	MetaLastName  = "last-name"
)

// S3API is the subset of the S3 client used here
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

var _ S3API = (*s3.Client)(nil)

// FilenameResolver names an employee after the object key, e.g.
// "John_Smith.jpg" becomes John / Smith.
type FilenameResolver struct{}

var _ ports.NameResolver = FilenameResolver{}

func (FilenameResolver) Resolve(_ context.Context, img ports.ImageRef) (string, string, error) {
	return fromKey(img.Key)
}

// MetadataResolver reads the name from the object's user metadata and falls
// back to the key when the upload carried none.
type MetadataResolver struct {
	client S3API
	logger *zap.Logger
}

// NewMetadataResolver creates a metadata-backed resolver
func NewMetadataResolver(client S3API, logger *zap.Logger) *MetadataResolver {
	return &MetadataResolver{client: client, logger: logger}
}

var _ ports.NameResolver = (*MetadataResolver)(nil)

func (r *MetadataResolver) Resolve(ctx context.Context, img ports.ImageRef) (string, string, error) {
	out, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(img.Bucket),
		Key:    aws.String(img.Key),
	})
	if err != nil {
		return "", "", pkgerrors.NewExternalError("s3", err)
	}

	first := strings.TrimSpace(out.Metadata[MetaFirstName])
	last := strings.TrimSpace(out.Metadata[MetaLastName])
	if first != "" {
		return first, last, nil
	}

	r.logger.Debug("No name metadata on object, using key",
		zap.String("bucket", img.Bucket),
		zap.String("key", img.Key),
	)
	return fromKey(img.Key)
}

func fromKey(key string) (string, string, error) {
	first, last := employee.NameFromKey(key)
	if strings.TrimSpace(first) == "" {
		return "", "", pkgerrors.NewValidationError(fmt.Sprintf("cannot derive a name from key %q", key))
	}
	return first, last, nil
}
