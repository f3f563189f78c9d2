package storage

import (
	"fmt"
	"labtrace-service/internal/app/config"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinio builds the object storage client used to archive raw lab payloads.
func NewMinio(driverConfig *config.DriverConfig) *minio.Client {
	endpoint := fmt.Sprintf("%s:%s", driverConfig.Minio.Host, driverConfig.Minio.Port)
	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(driverConfig.Minio.Username, driverConfig.Minio.Password, ""),
	})
	if err != nil {
		log.Fatalf("Failed to initialize minio client: %s", err.Error())
	}

	log.Println("Successfully connected to minio")
	return client
}
