package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vrsio/video-backend/internal/config"
	"github.com/vrsio/video-backend/internal/videos"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type awsRepository struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewAwsRepository(awsClient *s3.Client, cfg *config.Config) videos.AWSRepository {
	return &awsRepository{
		client:    awsClient,
		bucket:    cfg.S3.Bucket,
		publicURL: strings.TrimRight(cfg.S3.PublicURL, "/"),
	}
}

func (a *awsRepository) UploadDirectory(ctx context.Context, localDir, remotePrefix string) (string, error) {
	err := filepath.Walk(localDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(localDir, path)
		if err != nil {
			return err
		}
		key := remotePrefix + "/" + filepath.ToSlash(rel)
		return a.putFile(ctx, path, key)
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload directory %s: %w", localDir, err)
	}
	return a.publicURL + "/" + remotePrefix, nil
}

func (a *awsRepository) UploadFile(ctx context.Context, localPath, key string) (string, error) {
	if err := a.putFile(ctx, localPath, key); err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", localPath, err)
	}
	return a.publicURL + "/" + key, nil
}

func (a *awsRepository) putFile(ctx context.Context, localPath, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	contentType := contentTypeByExt(filepath.Ext(localPath))
	_, err = a.client.PutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket:      &a.bucket,
			Key:         &key,
			Body:        file,
			ContentType: &contentType,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

func contentTypeByExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".ts":
		return "video/mp2t"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
