package objectstore

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/license-manager/internal/config"
	"github.com/magabrotheeeer/license-manager/internal/settings"
)

type staticSource struct {
	creds settings.StorageCredentials
	err   error
}

func (s staticSource) StorageCredentials(_ context.Context) (settings.StorageCredentials, error) {
	return s.creds, s.err
}

func TestS3Signer_SignedURL(t *testing.T) {
	signer := NewS3Signer(staticSource{creds: settings.StorageCredentials{
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "wJalrXUtnFEMI/K7MDENG/bPxRfiCYEXAMPLEKEY",
	}}, config.ObjectStorage{
		Region:       "eu-central-1",
		Endpoint:     "http://minio.local:9000",
		UsePathStyle: true,
	})

	raw, err := signer.SignedURL(context.Background(), "releases", "my-plugin-1.2.0.zip", 10*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "minio.local:9000", u.Host)
	assert.Equal(t, "/releases/my-plugin-1.2.0.zip", u.Path)

	q := u.Query()
	assert.Equal(t, "600", q.Get("X-Amz-Expires"))
	assert.Equal(t, "AWS4-HMAC-SHA256", q.Get("X-Amz-Algorithm"))
	assert.Contains(t, q.Get("X-Amz-Credential"), "AKIDEXAMPLE/")
	assert.Contains(t, q.Get("X-Amz-Credential"), "/eu-central-1/s3/")
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
}

func TestS3Signer_VirtualHostedStyle(t *testing.T) {
	signer := NewS3Signer(staticSource{creds: settings.StorageCredentials{
		AccessKey: "AKIDEXAMPLE",
		SecretKey: "secret",
	}}, config.ObjectStorage{Region: "us-east-1"})

	raw, err := signer.SignedURL(context.Background(), "releases", "theme.zip", time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u.Host, "releases.s3."), "bucket should be in host, got %s", u.Host)
	assert.True(t, strings.HasSuffix(u.Host, ".amazonaws.com"), "got %s", u.Host)
	assert.Equal(t, "/theme.zip", u.Path)
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
}

func TestS3Signer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  staticSource
		bucket  string
		object  string
		wantErr error
	}{
		{
			name:    "ключи не заданы",
			source:  staticSource{err: settings.ErrCredentialsMissing},
			bucket:  "releases",
			object:  "a.zip",
			wantErr: settings.ErrCredentialsMissing,
		},
		{
			name:   "redis недоступен",
			source: staticSource{err: errors.New("dial tcp: connection refused")},
			bucket: "releases",
			object: "a.zip",
		},
		{
			name:   "пустое имя объекта",
			source: staticSource{creds: settings.StorageCredentials{AccessKey: "a", SecretKey: "b"}},
			bucket: "releases",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := NewS3Signer(tt.source, config.ObjectStorage{Region: "us-east-1"})
			got, err := signer.SignedURL(context.Background(), tt.bucket, tt.object, time.Minute)
			require.Error(t, err)
			assert.Empty(t, got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
