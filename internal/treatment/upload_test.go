package treatment

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	cfg     StoreConfig
	buckets map[string]bool
	objects map[string]string // object → source path
}

func (f *fakeStore) BucketExists(_ context.Context, bucket string) (bool, error) {
	return f.buckets[bucket], nil
}

func (f *fakeStore) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.buckets[bucket] = true
	return nil
}

func (f *fakeStore) FPutObject(_ context.Context, _, object, filePath string, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[object] = filePath
	return minio.UploadInfo{Key: object, Size: info.Size(), ETag: "etag"}, nil
}

func TestUploader_Run(t *testing.T) {
	t.Setenv(EnvS3AccessKey, "env-access")
	t.Setenv(EnvS3SecretKey, "env-secret")

	store := &fakeStore{buckets: map[string]bool{}, objects: map[string]string{}}
	u := NewUploader(func(cfg StoreConfig) (ObjectStore, error) {
		store.cfg = cfg
		return store, nil
	})

	in := t.TempDir()
	out := t.TempDir()
	writeFile(t, filepath.Join(in, "agg__2026-01-25.csv"), "a,b\n")
	writeFile(t, filepath.Join(in, "part", "agg__2026-01-26.csv"), "a,b\n")
	writeFile(t, filepath.Join(in, "README"), "x")

	err := u.Run(context.Background(), in, out, map[string]any{
		"endpoint": "s3.local:9000",
		"bucket":   "myx",
		"prefix":   "meteo",
		"use_ssl":  false,
	})
	require.NoError(t, err)

	assert.Equal(t, "env-access", store.cfg.AccessKey)
	assert.Equal(t, "env-secret", store.cfg.SecretKey)
	assert.False(t, store.cfg.UseSSL)
	assert.True(t, store.buckets["myx"])

	var objects []string
	for k := range store.objects {
		objects = append(objects, k)
	}
	sort.Strings(objects)
	assert.Equal(t, []string{"meteo/README", "meteo/agg__2026-01-25.csv", "meteo/part/agg__2026-01-26.csv"}, objects)

	data, err := os.ReadFile(filepath.Join(out, "manifest__2026-01-26.json"))
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "2026-01-26", m.Date)
	require.Len(t, m.Objects, 1)
	assert.Equal(t, "meteo/part/agg__2026-01-26.csv", m.Objects[0].Object)

	assert.FileExists(t, filepath.Join(out, "manifest__2026-01-25.json"))
	assert.FileExists(t, filepath.Join(out, undatedManifest))
}

func TestUploader_RequiresEndpointAndBucket(t *testing.T) {
	u := NewUploader(func(StoreConfig) (ObjectStore, error) {
		t.Fatal("store must not be created")
		return nil, nil
	})

	err := u.Run(context.Background(), t.TempDir(), t.TempDir(), map[string]any{"endpoint": "", "bucket": "b"})
	assert.ErrorIs(t, err, ErrInvalidParams)
}
