// Package storage mirrors local artifact directories to an object-storage
// bucket by shelling out to the aws s3 sync client. Re-uploading identical
// content is a safe no-op at the storage layer; objects are addressed by
// path, so a re-run simply overwrites.
package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/cloudchase/model-pipeline/tools"
)

const defaultTool = "aws"

// UploadError reports a failed artifact upload.
type UploadError struct {
	LocalPath    string
	RemotePrefix string
	Cause        error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %s to %s failed: %v", e.LocalPath, e.RemotePrefix, e.Cause)
}

func (e *UploadError) Unwrap() error { return e.Cause }

// Uploader pushes artifact directories to a bucket.
type Uploader struct {
	runner tools.Runner
	logger *log.Logger
	tool   string
}

// NewUploader creates an Uploader backed by the given command runner.
func NewUploader(runner tools.Runner, logger *log.Logger) *Uploader {
	return &Uploader{runner: runner, logger: logger, tool: defaultTool}
}

// RemoteURI builds the bucket prefix for one artifact:
// <bucket>/<sanitized-model>/<framework>/<precision>.
func RemoteURI(bucket, sanitizedModel, framework, precision string) string {
	return strings.TrimRight(bucket, "/") + "/" + sanitizedModel + "/" + framework + "/" + precision
}

// Upload recursively mirrors localPath to remoteURI and returns the remote
// location. Any transport failure is wrapped in an UploadError.
func (u *Uploader) Upload(ctx context.Context, localPath, remoteURI string) (string, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return "", &UploadError{LocalPath: localPath, RemotePrefix: remoteURI, Cause: err}
	}
	if !info.IsDir() {
		return "", &UploadError{
			LocalPath:    localPath,
			RemotePrefix: remoteURI,
			Cause:        fmt.Errorf("not a directory"),
		}
	}

	u.logger.Info("uploading artifact", "local", localPath, "remote", remoteURI)
	res, err := u.runner.Run(ctx, u.tool, "s3", "sync", localPath, remoteURI)
	if err != nil {
		return "", &UploadError{LocalPath: localPath, RemotePrefix: remoteURI, Cause: err}
	}
	if res.ExitCode != 0 {
		return "", &UploadError{
			LocalPath:    localPath,
			RemotePrefix: remoteURI,
			Cause:        fmt.Errorf("exit code %d: %s", res.ExitCode, res.StderrExcerpt()),
		}
	}
	return remoteURI, nil
}
