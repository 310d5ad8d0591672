package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"mintrader/pkg/errors"
	"mintrader/pkg/logger"
)

const (
	reportPrefix  = "reports"
	summaryPrefix = "portfolio/summaries"
	latestKey     = "portfolio/summaries/latest.md"
)

// Store persists text artifacts (analysis reports and iteration summaries)
// in an S3 bucket. Artifacts are markdown; keys follow the layout
// reports/{ticker}/{date}/{section}.md and portfolio/summaries/{iteration}.md.
type Store struct {
	client *s3.Client
	bucket string
	log    *logger.Logger
}

// NewStore creates an S3-backed artifact store
func NewStore(ctx context.Context, bucket, region string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	return &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		log:    logger.Get().With("component", "s3_store", "bucket", bucket),
	}, nil
}

// PutReportSection uploads one markdown section of a ticker analysis
func (s *Store) PutReportSection(ctx context.Context, ticker, date, section, content string) error {
	key := fmt.Sprintf("%s/%s/%s/%s.md", reportPrefix, ticker, date, section)
	return s.put(ctx, key, content)
}

// PutSummary stores an iteration summary and updates the latest pointer
func (s *Store) PutSummary(ctx context.Context, iterationID, summary string) error {
	key := fmt.Sprintf("%s/%s.md", summaryPrefix, iterationID)
	if err := s.put(ctx, key, summary); err != nil {
		return err
	}
	return s.put(ctx, latestKey, summary)
}

// GetLastSummary returns the most recent iteration summary, or "" when no
// summary has been stored yet.
func (s *Store) GetLastSummary(ctx context.Context) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(latestKey),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", errors.Wrap(err, "get last summary")
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", errors.Wrap(err, "read last summary")
	}
	return string(data), nil
}

func (s *Store) put(ctx context.Context, key, content string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/markdown"),
	})
	if err != nil {
		return errors.Wrapf(err, "put s3 object %s", key)
	}
	s.log.Debugw("Uploaded artifact", "key", key, "bytes", len(content))
	return nil
}
