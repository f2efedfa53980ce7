package services

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"examination_app_go/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ArtifactStore keeps exported documents
type ArtifactStore interface {
	Put(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StoredArtifact, error)
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error) // Returns reader, content-type, error
	List(ctx context.Context, prefix string) ([]StoredArtifact, error)
	GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
	GetPublicURL(key string) string
	Name() string
}

// StoredArtifact describes one stored document
type StoredArtifact struct {
	Key          string
	FileName     string
	FileSize     int64
	MimeType     string
	URL          string // Public or local URL, empty when only signed access works
	LastModified time.Time
}

// NewArtifactStore picks R2 when fully configured and reachable, else local disk
func NewArtifactStore(cfg *config.Config) ArtifactStore {
	if !cfg.R2Configured() {
		log.Printf("Export storage ready (Local filesystem - path: %s)", cfg.UploadDir)
		return NewLocalArtifactStore(cfg.UploadDir)
	}

	r2, err := NewR2ArtifactStore(cfg)
	if err != nil {
		log.Printf("[WARNING] Failed to initialize R2 storage: %v. Falling back to local storage.", err)
		return NewLocalArtifactStore(cfg.UploadDir)
	}

	// Test R2 connection (HeadBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r2.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &cfg.R2BucketName}); err != nil {
		log.Printf("[WARNING] R2 bucket connection test failed: %v. Falling back to local storage.", err)
		return NewLocalArtifactStore(cfg.UploadDir)
	}

	log.Printf("Export storage ready (Cloudflare R2 - bucket: %s)", cfg.R2BucketName)
	return r2
}

// R2ArtifactStore stores documents in a Cloudflare R2 bucket
type R2ArtifactStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

// NewR2ArtifactStore creates an S3 client pointed at the account's R2 endpoint
func NewR2ArtifactStore(cfg *config.Config) (*R2ArtifactStore, error) {
	// R2 endpoint format: https://<account_id>.r2.cloudflarestorage.com
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)

	creds := credentials.NewStaticCredentialsProvider(
		cfg.R2AccessKeyID,
		cfg.R2SecretAccessKey,
		"",
	)

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion("auto"), // R2 uses "auto" region
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2ArtifactStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.R2BucketName,
		publicURL: cfg.R2PublicURL,
	}, nil
}

func (r *R2ArtifactStore) Name() string { return "r2:" + r.bucket }

// Put uploads content from a reader
func (r *R2ArtifactStore) Put(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StoredArtifact, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}

	if _, err := r.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload to R2: %w", err)
	}

	return &StoredArtifact{
		Key:          key,
		FileName:     filepath.Base(key),
		FileSize:     size,
		MimeType:     contentType,
		URL:          r.GetPublicURL(key),
		LastModified: time.Now().UTC(),
	}, nil
}

func (r *R2ArtifactStore) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

func (r *R2ArtifactStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from R2: %w", err)
	}

	contentType := "application/octet-stream"
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	return result.Body, contentType, nil
}

// List pages through every object under prefix
func (r *R2ArtifactStore) List(ctx context.Context, prefix string) ([]StoredArtifact, error) {
	var out []StoredArtifact
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list R2 objects: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			item := StoredArtifact{
				Key:      key,
				FileName: filepath.Base(key),
				FileSize: aws.ToInt64(obj.Size),
				URL:      r.GetPublicURL(key),
			}
			if obj.LastModified != nil {
				item.LastModified = *obj.LastModified
			}
			out = append(out, item)
		}
	}
	return out, nil
}

// GetSignedURL generates a presigned URL for temporary access
func (r *R2ArtifactStore) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	presignedReq, err := r.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", fmt.Errorf("failed to generate signed URL: %w", err)
	}
	return presignedReq.URL, nil
}

// GetPublicURL returns the public URL when one is configured
func (r *R2ArtifactStore) GetPublicURL(key string) string {
	if r.publicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(r.publicURL, "/"), key)
	}
	// If no public URL, return empty - caller should use GetSignedURL
	return ""
}

// LocalArtifactStore stores documents under a directory served as static files
type LocalArtifactStore struct {
	baseDir string
}

func NewLocalArtifactStore(baseDir string) *LocalArtifactStore {
	return &LocalArtifactStore{baseDir: baseDir}
}

func (l *LocalArtifactStore) Name() string { return "local:" + l.baseDir }

// Put saves content from a reader
func (l *LocalArtifactStore) Put(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StoredArtifact, error) {
	fullPath := filepath.Join(l.baseDir, key)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &StoredArtifact{
		Key:          key,
		FileName:     filepath.Base(key),
		FileSize:     written,
		MimeType:     contentType,
		URL:          l.GetPublicURL(key),
		LastModified: time.Now().UTC(),
	}, nil
}

func (l *LocalArtifactStore) Delete(ctx context.Context, key string) error {
	fullPath := filepath.Join(l.baseDir, key)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (l *LocalArtifactStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	file, err := os.Open(filepath.Join(l.baseDir, key))
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return file, contentTypeForKey(key), nil
}

// List walks the directory for files under prefix; a missing directory is empty
func (l *LocalArtifactStore) List(ctx context.Context, prefix string) ([]StoredArtifact, error) {
	var out []StoredArtifact
	err := filepath.WalkDir(l.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.baseDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		out = append(out, StoredArtifact{
			Key:          key,
			FileName:     d.Name(),
			FileSize:     info.Size(),
			MimeType:     contentTypeForKey(key),
			URL:          l.GetPublicURL(key),
			LastModified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return out, nil
}

// GetSignedURL for local storage just returns the file path (no signing needed)
func (l *LocalArtifactStore) GetSignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return l.GetPublicURL(key), nil
}

func (l *LocalArtifactStore) GetPublicURL(key string) string {
	return "/" + filepath.ToSlash(filepath.Join(l.baseDir, key))
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".pdf":
		return "application/pdf"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".html":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// ExportKeyPrefix is the common prefix of every export artifact
const ExportKeyPrefix = "exports/"

// GenerateExportKey creates "exports/<paper id>/<base name>_<uuid><ext>"
func GenerateExportKey(paperID, baseName, ext string) string {
	return fmt.Sprintf("%s%s/%s_%s%s", ExportKeyPrefix, paperID, baseName, uuid.New().String(), ext)
}
