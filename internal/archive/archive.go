// Package archive stores accepted term sheets in S3-compatible object
// storage (Cloudflare R2 or plain S3) for the audit trail. Keys are content
// addressed, so re-uploading an already archived document is a no-op
// overwrite with identical bytes.
package archive

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/openderiv/rfqdesk/internal/codec"
	"github.com/openderiv/rfqdesk/internal/rfq"
)

// Config holds the object-storage connection settings. Endpoint is the
// R2/S3-compatible URL; empty AccountID means plain AWS S3.
type Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
}

// Store uploads term-sheet documents.
type Store struct {
	uploader *manager.Uploader
	bucket   string
	codec    *codec.Codec
	log      zerolog.Logger
}

// New builds the uploader. R2 uses the account-scoped endpoint with the
// "auto" region; anything else goes through normal AWS resolution.
func New(ctx context.Context, cfg Config, c *codec.Codec, log zerolog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AccountID != "" {
			o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
		}
	})

	return &Store{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		codec:    c,
		log:      log.With().Str("component", "archive").Logger(),
	}, nil
}

// ArchiveTermSheet uploads the accepted term sheet as tagged JSON under
// termsheets/<rfqID>/<documentHash>.json.
func (s *Store) ArchiveTermSheet(ctx context.Context, sheet rfq.TermSheet) error {
	body, err := s.codec.Encode(sheet)
	if err != nil {
		return fmt.Errorf("archive: encode term sheet: %w", err)
	}
	key := fmt.Sprintf("termsheets/%s/%s.json", sheet.RFQID, sheet.DocumentHash)

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive: upload %s: %w", key, err)
	}

	s.log.Info().
		Str("rfq_id", sheet.RFQID.String()).
		Str("key", key).
		Msg("term sheet archived")
	return nil
}
