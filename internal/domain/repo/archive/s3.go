package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/identity-platform/profile-saga/internal/domain/entity"
)

var ErrInvalidStreamName = errors.New("invalid stream name")

// S3Writer stores a soft deleted stream as one ndjson object, one event per line.
type S3Writer struct {
	s3client *s3.Client

	bucket string
	prefix string
}

func NewS3Writer(s3client *s3.Client, bucket string, prefix string) S3Writer {
	return S3Writer{
		s3client: s3client,
		bucket:   bucket,
		prefix:   prefix,
	}
}

func (s S3Writer) WriteArchivedStream(ctx context.Context, stream entity.ArchivedStream) error {
	key, err := s.computeObjectKey(s.prefix, stream)
	if err != nil {
		return fmt.Errorf("failed to compute object key: %w", err)
	}

	body := bytes.Buffer{}
	encoder := json.NewEncoder(&body)

	for _, event := range stream.Events {
		err := encoder.Encode(event)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
		}
	}

	params := &s3.PutObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
		Body:   bytes.NewReader(body.Bytes()),
	}

	_, err = s.s3client.PutObject(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to write in s3: %w", err)
	}

	return nil
}

// Stream names end up in the object key: only [a-z0-9_-] is accepted, starting with [a-z0-9].
func (s S3Writer) computeObjectKey(prefix string, stream entity.ArchivedStream) (string, error) {
	if !validStreamName(stream.Stream) {
		return "", fmt.Errorf("%w: %q", ErrInvalidStreamName, stream.Stream)
	}

	day := stream.ArchivedAt.UTC().Format("2006-01-02")

	return fmt.Sprintf("%s/%s/%s.ndjson", prefix, day, stream.Stream), nil
}

func validStreamName(name string) bool {
	if name == "" {
		return false
	}

	for i, r := range name {
		lowerAlnum := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z')

		if i == 0 && !lowerAlnum {
			return false
		}

		if !lowerAlnum && r != '_' && r != '-' {
			return false
		}
	}

	return true
}
