package main

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"casevault/internal/blobstore"
	"casevault/internal/config"
	"casevault/internal/shortid"
)

func newBlobStore(cfg *config.Config) (*blobstore.MinioStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
		Region: cfg.Storage.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object store: %w", err)
	}

	return blobstore.NewMinioStore(client, cfg.Storage.Bucket)
}

func newShortIDCodec(cfg *config.Config) (*shortid.Codec, error) {
	minLength := cfg.ShortID.MinLength
	if minLength <= 0 || minLength > 255 {
		minLength = shortid.DefaultMinLength
	}
	return shortid.New(cfg.ShortID.Alphabet, uint8(minLength))
}
