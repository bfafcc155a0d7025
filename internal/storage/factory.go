package storage

import (
	"strings"

	"github.com/timmy/picprompt/internal/config"
)

// NewFromConfig creates an ObjectStorage from the application storage section.
func NewFromConfig(cfg config.StorageConfig) (ObjectStorage, error) {
	return NewStorage(&S3Config{
		Type:      StorageType(cfg.Type),
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		PublicURL: cfg.PublicURL,
	})
}

// NewStorage creates an ObjectStorage instance based on the configuration.
// Parameters:
//   - cfg: storage configuration including endpoint, credentials, and bucket.
// Returns:
//   - ObjectStorage: MinIO client for type "minio", S3 client otherwise.
//   - error: non-nil if the storage client cannot be created.
func NewStorage(cfg *S3Config) (ObjectStorage, error) {
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}

	if cfg.Type == StorageTypeMinIO {
		return NewMinIOStorage(&MinIOConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
			PublicURL: cfg.PublicURL,
		})
	}
	return NewS3Storage(cfg)
}

// detectStorageType guesses the storage flavour from the endpoint host
func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}

// objectURL joins a key onto the public prefix when one is configured,
// falling back to a path-style bucket URL on the endpoint.
func objectURL(publicURL, baseURL, bucket, key string) string {
	key = strings.TrimPrefix(key, "/")
	if publicURL != "" {
		return publicURL + "/" + key
	}
	return baseURL + "/" + bucket + "/" + key
}
