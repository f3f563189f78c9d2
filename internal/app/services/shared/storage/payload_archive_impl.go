package storage

import (
	"bytes"
	"context"
	"fmt"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/pkg/exceptions"
	"time"

	"github.com/minio/minio-go/v7"
)

type minioPayloadArchive struct {
	MinioClient *minio.Client
	BucketName  string
}

func NewMinioPayloadArchive(minioClient *minio.Client, bucketName string) contracts.PayloadArchive {
	return &minioPayloadArchive{
		MinioClient: minioClient,
		BucketName:  bucketName,
	}
}

func (m *minioPayloadArchive) ArchivePayload(ctx context.Context, externalRef string, contentType string, payload []byte) error {
	// Date prefix keeps raw payloads browsable per ingestion day.
	objectName := fmt.Sprintf("inbound/%s/%s", time.Now().UTC().Format("2006-01-02"), externalRef)
	_, err := m.MinioClient.PutObject(
		ctx,
		m.BucketName,
		objectName,
		bytes.NewReader(payload),
		int64(len(payload)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return exceptions.ErrMinioCreateObject(err, m.BucketName)
	}

	return nil
}
