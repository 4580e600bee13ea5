package videos

import "context"

// AWSRepository publishes transcoded artifacts to object storage.
type AWSRepository interface {
	// UploadDirectory walks localDir and uploads every file under
	// remotePrefix, returning the public URL of the prefix.
	UploadDirectory(ctx context.Context, localDir, remotePrefix string) (string, error)

	// UploadFile uploads a single object and returns its public URL.
	UploadFile(ctx context.Context, localPath, key string) (string, error)
}
