// Package s3 mirrors the patient registry to one object in an S3-compatible
// bucket (AWS S3 or MinIO).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"patientflow/pkg/patient"
)

// DefaultKey is the object key used when none is configured.
const DefaultKey = "hospital_data.txt"

// API is the subset of the S3 client used by Mirror.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds construction parameters.
type Config struct {
	Region    string
	Bucket    string
	Key       string
	Endpoint  string // optional, e.g. MinIO
	PathStyle bool
}

// Mirror stores the line-encoded registry document as one object.
type Mirror struct {
	client API
	bucket string
	key    string
}

// New builds a Mirror from the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*Mirror, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Bucket, cfg.Key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client API, bucket, key string) *Mirror {
	if key == "" {
		key = DefaultKey
	}
	return &Mirror{client: client, bucket: bucket, key: key}
}

// Load downloads and decodes the object. A missing object yields an empty
// snapshot.
func (m *Mirror) Load(ctx context.Context) (patient.Snapshot, error) {
	out, err := m.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &m.bucket, Key: &m.key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return patient.Snapshot{NextID: patient.DefaultNextID}, nil
		}
		return patient.Snapshot{}, fmt.Errorf("get s3://%s/%s: %w", m.bucket, m.key, err)
	}
	defer out.Body.Close()
	return patient.DecodeSnapshot(out.Body)
}

// Save uploads the whole document, replacing the previous object.
func (m *Mirror) Save(ctx context.Context, s patient.Snapshot) error {
	var buf bytes.Buffer
	if err := patient.EncodeSnapshot(&buf, s); err != nil {
		return err
	}
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &m.bucket,
		Key:         &m.key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", m.bucket, m.key, err)
	}
	return nil
}

var _ patient.Mirror = (*Mirror)(nil)
