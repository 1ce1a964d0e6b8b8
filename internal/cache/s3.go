// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/staranto/mealctlgo/internal/aws"
)

// S3API is the slice of the S3 client the medium needs. Satisfied by
// *s3.Client and by test fakes.
type S3API interface {
	GetObject(ctx context.Context, in *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
}

// S3Medium stores the snapshot as a single S3 object. "File system or
// equivalent" -- the same single-writer assumption applies: one process
// owns the object at a time. An S3 put replaces the object atomically, so
// no temp-and-rename dance is needed here.
type S3Medium struct {
	client S3API
	bucket string
	key    string
}

// NewS3Medium resolves AWS config from the environment and returns a
// medium over s3://bucket/key.
func NewS3Medium(ctx context.Context, bucket, key string, opts ...aws.Option) (*S3Medium, error) {
	cfg, err := aws.LoadConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: loading AWS config: %v", ErrStorageUnavailable, err)
	}
	return &S3Medium{
		client: aws.NewS3(cfg),
		bucket: bucket,
		key:    key,
	}, nil
}

// NewS3MediumWithClient is the seam tests use.
func NewS3MediumWithClient(client S3API, bucket, key string) *S3Medium {
	return &S3Medium{client: client, bucket: bucket, key: key}
}

func (m *S3Medium) Ensure(ctx context.Context) error {
	out, err := m.client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(m.bucket),
		Key:    awsv2.String(m.key),
	})
	if err == nil {
		_ = out.Body.Close()
		return nil
	}
	if !isNoSuchKey(err) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := m.Save(ctx, []byte(emptyDocument)); err != nil {
		return fmt.Errorf("%w: seeding cache object: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (m *S3Medium) Load(ctx context.Context) ([]byte, error) {
	out, err := m.client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(m.bucket),
		Key:    awsv2.String(m.key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache object: %w", err)
	}
	defer out.Body.Close()

	doc, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache object body: %w", err)
	}
	return doc, nil
}

func (m *S3Medium) Save(ctx context.Context, doc []byte) error {
	_, err := m.client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:      awsv2.String(m.bucket),
		Key:         awsv2.String(m.key),
		Body:        bytes.NewReader(doc),
		ContentType: awsv2.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to write cache object: %w", err)
	}
	return nil
}

func (m *S3Medium) Location() string {
	return fmt.Sprintf("s3://%s/%s", m.bucket, m.key)
}

func isNoSuchKey(err error) bool {
	var noKey *types.NoSuchKey
	return errors.As(err, &noKey)
}
