package processingerror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jonboulle/clockwork"

	"github.com/identity-platform/profile-saga/internal/version"
	"github.com/identity-platform/profile-saga/pkg/pipeline"
)

const (
	keyTemplate = "<prefix>/<role>/<year>/<month>/<day>/<topic>/<partition>-<offset>.json"
)

var (
	ErrNilMessage = errors.New("nil message")
)

// S3Writer is the dead letter queue: every bus record that failed processing is written as one object.
type S3Writer struct {
	s3client *s3.Client
	clock    clockwork.Clock

	bucket string
	prefix string
	role   string

	hostname string
}

func NewS3Writer(s3client *s3.Client, clock clockwork.Clock, bucket string, prefix string, role string, hostname string) S3Writer {
	return S3Writer{
		s3client: s3client,
		clock:    clock,
		bucket:   bucket,
		prefix:   prefix,
		role:     role,
		hostname: hostname,
	}
}

func (r S3Writer) WriteProcessingError(ctx context.Context, pErr pipeline.ErrProcessingError) error {
	// Create ProcessingError
	obj, err := r.createProcessingError(pErr)
	if err != nil {
		return fmt.Errorf("failed to create local model: %w", err)
	}

	// Marshal ProcessingError
	b, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to marshal local model: %w", err)
	}

	// Compute object key
	key, err := r.computeObjectKey(pErr)
	if err != nil {
		return fmt.Errorf("failed to compute object key: %w", err)
	}

	// Write file
	params := &s3.PutObjectInput{
		Bucket: &r.bucket,
		Key:    &key,
		Body:   bytes.NewReader(b),
	}

	_, err = r.s3client.PutObject(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to write in s3: %w", err)
	}

	return nil
}

func (r S3Writer) createProcessingError(pErr pipeline.ErrProcessingError) (ProcessingError, error) {
	if pErr.Message == nil {
		return ProcessingError{}, ErrNilMessage
	}

	ret := ProcessingError{
		ProcessingContext: ProcessingContext{
			Component: Component{
				Branch:   version.Branch,
				Revision: version.Revision,
			},
			Role: r.role,
			Time: r.clock.Now(),
			Host: r.hostname,
		},
		Sources: Sources{
			Main: Source{
				Topic:     pErr.Message.Topic,
				Partition: pErr.Message.Partition,
				Offset:    pErr.Message.Offset,
				Key:       string(pErr.Message.Key),
				Payload:   pErr.Message.Value,
			},
			Additional: make([]KeyValue, 0, len(pErr.AdditionalInputs)),
		},
		Reason: Reason{
			Category: pErr.Category,
			Error:    pErr.Error(),
		},
	}

	for _, kv := range pErr.AdditionalInputs {
		ret.Sources.Additional = append(ret.Sources.Additional, KeyValue{
			Source: kv.Source,
			Key:    kv.Key,
			Value:  kv.Value,
		})
	}

	return ret, nil
}

func (r S3Writer) computeObjectKey(pErr pipeline.ErrProcessingError) (string, error) {
	if pErr.Message == nil {
		return "", ErrNilMessage
	}

	ts := pErr.Message.Timestamp
	if ts.IsZero() {
		ts = r.clock.Now()
	}

	template := strings.NewReplacer(
		"<prefix>", r.prefix,
		"<role>", r.role,
		"<year>", fmt.Sprintf("%04d", ts.Year()),
		"<month>", fmt.Sprintf("%02d", ts.Month()),
		"<day>", fmt.Sprintf("%02d", ts.Day()),
		"<topic>", pErr.Message.Topic,
		"<partition>", fmt.Sprintf("%d", pErr.Message.Partition),
		"<offset>", fmt.Sprintf("%d", pErr.Message.Offset),
	)

	return template.Replace(keyTemplate), nil
}
