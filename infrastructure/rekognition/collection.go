// Package rekognition implements the face collection port on Amazon
// Rekognition.
package rekognition

import (
	"context"
	"errors"
	"sort"

	"attendance-backend/application/ports"
	"attendance-backend/domain/employee"
	pkgerrors "attendance-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// RekognitionAPI is the subset of the Rekognition client the collection uses
type RekognitionAPI interface {
	DescribeCollection(ctx context.Context, params *rekognition.DescribeCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.DescribeCollectionOutput, error)
	CreateCollection(ctx context.Context, params *rekognition.CreateCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.CreateCollectionOutput, error)
	SearchFacesByImage(ctx context.Context, params *rekognition.SearchFacesByImageInput, optFns ...func(*rekognition.Options)) (*rekognition.SearchFacesByImageOutput, error)
	IndexFaces(ctx context.Context, params *rekognition.IndexFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.IndexFacesOutput, error)
}

var _ RekognitionAPI = (*rekognition.Client)(nil)

// Collection is a Rekognition face collection
type Collection struct {
	client       RekognitionAPI
	collectionID string
	logger       *zap.Logger
}

// NewCollection creates a collection adapter for collectionID
func NewCollection(client RekognitionAPI, collectionID string, logger *zap.Logger) *Collection {
	return &Collection{
		client:       client,
		collectionID: collectionID,
		logger:       logger,
	}
}

var _ ports.FaceCollection = (*Collection)(nil)

// EnsureCollection creates the collection if it does not exist
func (c *Collection) EnsureCollection(ctx context.Context) error {
	_, err := c.client.DescribeCollection(ctx, &rekognition.DescribeCollectionInput{
		CollectionId: aws.String(c.collectionID),
	})
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return pkgerrors.NewExternalError("rekognition", err)
	}

	c.logger.Info("Creating face collection", zap.String("collectionId", c.collectionID))

	_, err = c.client.CreateCollection(ctx, &rekognition.CreateCollectionInput{
		CollectionId: aws.String(c.collectionID),
	})
	if err != nil {
		var exists *types.ResourceAlreadyExistsException
		if errors.As(err, &exists) {
			return nil
		}
		return pkgerrors.NewExternalError("rekognition", err)
	}
	return nil
}

// SearchByImage searches the collection with the largest face in img
func (c *Collection) SearchByImage(ctx context.Context, img ports.ImageRef, maxFaces int, threshold float64) ([]ports.FaceMatch, error) {
	out, err := c.client.SearchFacesByImage(ctx, &rekognition.SearchFacesByImageInput{
		CollectionId:       aws.String(c.collectionID),
		Image:              s3Image(img),
		MaxFaces:           aws.Int32(int32(maxFaces)),
		FaceMatchThreshold: aws.Float32(float32(threshold)),
	})
	if err != nil {
		return nil, c.translate(err, img)
	}

	matches := make([]ports.FaceMatch, 0, len(out.FaceMatches))
	for _, m := range out.FaceMatches {
		if m.Face == nil || m.Face.FaceId == nil {
			continue
		}
		matches = append(matches, ports.FaceMatch{
			FaceID:     aws.ToString(m.Face.FaceId),
			Similarity: float64(aws.ToFloat32(m.Similarity)),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches, nil
}

// IndexFace indexes at most one face from img, tagged with a sanitized form
// of the object key
func (c *Collection) IndexFace(ctx context.Context, img ports.ImageRef) (string, error) {
	out, err := c.client.IndexFaces(ctx, &rekognition.IndexFacesInput{
		CollectionId:        aws.String(c.collectionID),
		Image:               s3Image(img),
		ExternalImageId:     aws.String(employee.ExternalImageID(img.Key)),
		MaxFaces:            aws.Int32(1),
		QualityFilter:       types.QualityFilterAuto,
		DetectionAttributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return "", c.translate(err, img)
	}

	if len(out.FaceRecords) == 0 || out.FaceRecords[0].Face == nil {
		if len(out.UnindexedFaces) > 0 {
			c.logger.Info("Face rejected by quality filter",
				zap.String("key", img.Key),
				zap.Int("unindexed", len(out.UnindexedFaces)),
			)
		}
		return "", ports.ErrNoFaceDetected
	}
	return aws.ToString(out.FaceRecords[0].Face.FaceId), nil
}

// translate maps "no usable face in the image" to ErrNoFaceDetected
func (c *Collection) translate(err error, img ports.ImageRef) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "InvalidParameterException", "InvalidImageFormatException":
			c.logger.Debug("Rekognition rejected image",
				zap.String("bucket", img.Bucket),
				zap.String("key", img.Key),
				zap.String("code", apiErr.ErrorCode()),
				zap.String("reason", apiErr.ErrorMessage()),
			)
			return ports.ErrNoFaceDetected
		}
	}
	return pkgerrors.NewExternalError("rekognition", err)
}

func s3Image(img ports.ImageRef) *types.Image {
	return &types.Image{
		S3Object: &types.S3Object{
			Bucket: aws.String(img.Bucket),
			Name:   aws.String(img.Key),
		},
	}
}
