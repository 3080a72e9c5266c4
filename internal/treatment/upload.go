package treatment

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"mime"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/shaiso/Myx/internal/timewindow"
)

// Переменные окружения с ключами доступа по умолчанию.
const (
	EnvS3AccessKey = "MYX_S3_ACCESS_KEY"
	EnvS3SecretKey = "MYX_S3_SECRET_KEY"
)

// undatedManifest — манифест файлов без даты в имени.
const undatedManifest = "manifest.json"

// ObjectStore — операции S3-хранилища, нужные upload.
// *minio.Client удовлетворяет интерфейсу.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, object, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// StoreConfig — параметры подключения к хранилищу.
type StoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// StoreFactory создаёт ObjectStore по конфигурации.
type StoreFactory func(cfg StoreConfig) (ObjectStore, error)

// NewMinIOStore создаёт клиент minio.
func NewMinIOStore(cfg StoreConfig) (ObjectStore, error) {
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
}

// Uploader — встроенный treatment upload.
//
// Выгружает каждый файл входного дерева в bucket под ключом <prefix>/<rel>
// и пишет в выходную директорию по одному manifest__<YYYY-MM-DD>.json на дату.
// Манифесты несут дату в имени, поэтому --last и replace с окном работают
// для этапа выгрузки так же, как для остальных.
type Uploader struct {
	newStore StoreFactory
}

// NewUploader создаёт Uploader. nil factory — NewMinIOStore.
func NewUploader(factory StoreFactory) *Uploader {
	if factory == nil {
		factory = NewMinIOStore
	}
	return &Uploader{newStore: factory}
}

// ManifestEntry — запись манифеста выгрузки.
type ManifestEntry struct {
	Object string `json:"object"`
	Source string `json:"source"`
	Size   int64  `json:"size"`
	ETag   string `json:"etag,omitempty"`
}

// Manifest — содержимое manifest__<date>.json.
type Manifest struct {
	Bucket     string          `json:"bucket"`
	Date       string          `json:"date,omitempty"`
	UploadedAt string          `json:"uploaded_at"`
	Objects    []ManifestEntry `json:"objects"`
}

// Run выполняет выгрузку.
func (u *Uploader) Run(ctx context.Context, inputDir, outputDir string, params map[string]any) error {
	cfg := StoreConfig{
		Endpoint:  stringParam(params, "endpoint", ""),
		AccessKey: stringParam(params, "access_key", ""),
		SecretKey: stringParam(params, "secret_key", ""),
		Region:    stringParam(params, "region", ""),
		UseSSL:    boolParam(params, "use_ssl", true),
	}
	bucket := stringParam(params, "bucket", "")
	prefix := stringParam(params, "prefix", "")

	if cfg.Endpoint == "" || bucket == "" {
		return fmt.Errorf("%w: endpoint and bucket are required", ErrInvalidParams)
	}
	if cfg.AccessKey == "" {
		cfg.AccessKey = os.Getenv(EnvS3AccessKey)
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = os.Getenv(EnvS3SecretKey)
	}

	store, err := u.newStore(cfg)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Endpoint, err)
	}
	if err := ensureBucket(ctx, store, bucket, cfg.Region); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", bucket, err)
	}

	manifests := make(map[string]*Manifest)
	now := time.Now().UTC().Format(time.RFC3339)

	err = filepath.WalkDir(inputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(inputDir, p)
		if err != nil {
			return err
		}
		object := path.Join(prefix, filepath.ToSlash(rel))

		info, err := store.FPutObject(ctx, bucket, object, p, minio.PutObjectOptions{
			ContentType: contentType(p),
		})
		if err != nil {
			return fmt.Errorf("upload %s: %w", rel, err)
		}

		key := ""
		if day, ok := timewindow.ExtractDate(d.Name()); ok {
			key = day.Format(time.DateOnly)
		}
		m, ok := manifests[key]
		if !ok {
			m = &Manifest{Bucket: bucket, Date: key, UploadedAt: now}
			manifests[key] = m
		}
		m.Objects = append(m.Objects, ManifestEntry{Object: object, Source: rel, Size: info.Size, ETag: info.ETag})
		return nil
	})
	if err != nil {
		return err
	}

	return writeManifests(outputDir, manifests)
}

func writeManifests(outputDir string, manifests map[string]*Manifest) error {
	keys := make([]string, 0, len(manifests))
	for k := range manifests {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := undatedManifest
		if k != "" {
			name = "manifest__" + k + ".json"
		}
		data, err := json.MarshalIndent(manifests[k], "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outputDir, name), append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}
	return nil
}

func ensureBucket(ctx context.Context, store ObjectStore, bucket, region string) error {
	exists, err := store.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return store.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region})
}

func contentType(p string) string {
	switch filepath.Ext(p) {
	case ".csv":
		return "text/csv"
	case ".parquet":
		return "application/vnd.apache.parquet"
	}
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
