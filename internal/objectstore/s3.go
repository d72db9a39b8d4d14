// Package objectstore выдаёт подписанные ссылки на объекты S3-совместимого хранилища.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/magabrotheeeer/license-manager/internal/config"
	"github.com/magabrotheeeer/license-manager/internal/settings"
)

// CredentialsSource отдаёт актуальные ключи доступа к хранилищу.
type CredentialsSource interface {
	StorageCredentials(ctx context.Context) (settings.StorageCredentials, error)
}

// S3Signer подписывает GET-запросы к объектам. Ключи читаются из источника
// при каждом вызове, поэтому смена ключей администратором не требует рестарта.
type S3Signer struct {
	source       CredentialsSource
	region       string
	endpoint     string
	usePathStyle bool
}

// NewS3Signer создаёт S3Signer по настройкам объектного хранилища.
func NewS3Signer(source CredentialsSource, cfg config.ObjectStorage) *S3Signer {
	return &S3Signer{
		source:       source,
		region:       cfg.Region,
		endpoint:     cfg.Endpoint,
		usePathStyle: cfg.UsePathStyle,
	}
}

// SignedURL возвращает ссылку на объект bucket/object, действующую ttl.
// Подпись вычисляется локально, запросов к хранилищу не делается.
func (s *S3Signer) SignedURL(ctx context.Context, bucket, object string, ttl time.Duration) (string, error) {
	const op = "objectstore.SignedURL"
	if bucket == "" || object == "" {
		return "", fmt.Errorf("%s: %w", op, errors.New("bucket and object name are required"))
	}

	creds, err := s.source.StorageCredentials(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	client := s3.New(s3.Options{
		Region:       s.region,
		Credentials:  credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, ""),
		UsePathStyle: s.usePathStyle,
	}, func(o *s3.Options) {
		if s.endpoint != "" {
			o.BaseEndpoint = aws.String(s.endpoint)
		}
	})

	req, err := s3.NewPresignClient(client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return req.URL, nil
}
