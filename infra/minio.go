package infra

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"filevault/config"
)

// MinioClient is the object store gateway. One long-lived client per
// process; the admin handle is only consulted for health reporting.
type MinioClient struct {
	Admin    *madmin.AdminClient
	Client   *minio.Client
	Bucket   string
	Endpoint string
}

// UploadGrant describes a presigned POST a browser can use to push bytes
// directly to the object store.
type UploadGrant struct {
	URL       string            `json:"url"`
	Fields    map[string]string `json:"fields"`
	ExpiresIn int               `json:"expiresIn"`
}

func InitMinioClient(cfg *config.EnvConfig) *MinioClient {
	endpoint := cfg.Minio.Endpoint
	if endpoint == "" {
		panic("MinIO endpoint is not configured")
	}

	rootUser := cfg.Minio.RootUser
	if rootUser == "" {
		panic("MinIO root user is not configured")
	}

	rootPassword := cfg.Minio.RootPassword
	if rootPassword == "" {
		panic("MinIO root password is not configured")
	}

	if cfg.Upload.Bucket == "" {
		panic("FILE_BUCKET_NAME is not configured")
	}

	madminClient, err := madmin.New(endpoint, rootUser, rootPassword, cfg.Minio.UseSSL)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO admin client: %v", err))
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(rootUser, rootPassword, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize MinIO client: %v", err))
	}

	return &MinioClient{
		Admin:    madminClient,
		Client:   minioClient,
		Bucket:   cfg.Upload.Bucket,
		Endpoint: endpoint,
	}
}

// EnsureBucket creates the file bucket if it does not exist yet.
func (m *MinioClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.Client.BucketExists(ctx, m.Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %q: %w", m.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.Client.MakeBucket(ctx, m.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", m.Bucket, err)
	}
	return nil
}

func (m *MinioClient) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := m.Client.PutObject(ctx, m.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to store object %q: %w", key, err)
	}
	return nil
}

// PresignDownload issues a time-limited GET URL for an object.
func (m *MinioClient) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	signed, err := m.Client.PresignedGetObject(ctx, m.Bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign download for %q: %w", key, err)
	}
	return signed.String(), nil
}

// PresignUpload issues a presigned POST policy bound to a single key, so a
// browser can submit the bytes directly to storage.
func (m *MinioClient) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*UploadGrant, error) {
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(m.Bucket); err != nil {
		return nil, fmt.Errorf("failed to build upload policy for %q: %w", key, err)
	}
	if err := policy.SetKey(key); err != nil {
		return nil, fmt.Errorf("failed to build upload policy for %q: %w", key, err)
	}
	if err := policy.SetExpires(time.Now().UTC().Add(ttl)); err != nil {
		return nil, fmt.Errorf("failed to build upload policy for %q: %w", key, err)
	}
	if contentType != "" {
		if err := policy.SetContentType(contentType); err != nil {
			return nil, fmt.Errorf("failed to build upload policy for %q: %w", key, err)
		}
	}

	target, fields, err := m.Client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload for %q: %w", key, err)
	}

	return &UploadGrant{
		URL:       target.String(),
		Fields:    fields,
		ExpiresIn: int(ttl / time.Second),
	}, nil
}

func (m *MinioClient) RemoveObject(ctx context.Context, key string) error {
	if err := m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %q: %w", key, err)
	}
	return nil
}

// HealthCheck asks the MinIO admin API for server info.
func (m *MinioClient) HealthCheck(ctx context.Context) error {
	if _, err := m.Admin.ServerInfo(ctx); err != nil {
		return fmt.Errorf("minio health check failed: %w", err)
	}
	return nil
}
