package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"collecthub-backend/internal/config"
)

var MinioClient *minio.Client

var publicEndpoint string

const bucketName = "collecthub-bucket"

// InitMinio initializes the MinIO client and creates the public bucket if
// it does not exist yet.
func InitMinio(cfg *config.Config) {
	publicEndpoint = cfg.MinioPublicEndpoint

	var err error
	MinioClient, err = minio.New(
		cfg.MinioInternalEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
			Secure: false,
		})
	if err != nil {
		log.Fatalf("MinIO initialization error: %v", err)
	}

	exists, err := MinioClient.BucketExists(context.Background(), bucketName)
	if err != nil {
		log.Fatalf("Bucket check error: %v", err)
	}

	if !exists {
		err = MinioClient.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{})
		if err != nil {
			log.Fatalf("Error creating bucket: %v", err)
		}

		policy := `{
		"Version": "2012-10-17",
		"Statement": [
			{
				"Effect": "Allow",
				"Principal": "*",
				"Action": "s3:GetObject",
				"Resource": "arn:aws:s3:::` + bucketName + `/*"
			}
		]
	}`

		err = MinioClient.SetBucketPolicy(context.Background(), bucketName, policy)
		if err != nil {
			log.Fatalln(err)
		}
		fmt.Printf("Bucket %s is set to public\n", bucketName)
	}
}

// UploadFile stores the object and returns its public URL.
func UploadFile(ctx context.Context, filename string, src io.Reader, fileSize int64, mimeType string) (string, error) {
	_, err := MinioClient.PutObject(
		ctx,
		bucketName,
		filename,
		src,
		fileSize,
		minio.PutObjectOptions{ContentType: mimeType},
	)
	if err != nil {
		return "", err
	}
	return GetUrl(filename), nil
}

// DeleteFile removes the object from storage.
func DeleteFile(ctx context.Context, filename string) error {
	_, err := MinioClient.StatObject(ctx, bucketName, filename, minio.StatObjectOptions{})
	if err != nil {
		var minioErr minio.ErrorResponse
		if errors.As(err, &minioErr) && minioErr.Code == "NoSuchKey" {
			return errors.New("file not found")
		}
		return err
	}
	return MinioClient.RemoveObject(ctx, bucketName, filename, minio.RemoveObjectOptions{})
}

func GetUrl(filename string) string {
	return publicEndpoint + "/" + bucketName + "/" + filename
}
