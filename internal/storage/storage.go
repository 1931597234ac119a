package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// StorageClient is the interface for file storage operations
// Both GCS and Local storage implementations must implement this interface
type StorageClient interface {
	UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error)
	DeleteFile(ctx context.Context, objectName string) error
	ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error)
	GetSignedURL(objectName string, expiry time.Duration) (string, error)
	Close() error
}

// UploadResult contains the result of an upload operation
type UploadResult struct {
	ObjectName string `json:"object_name"`
	PublicURL  string `json:"public_url"`
	Size       int64  `json:"size"`
}

// ExportObjectName places a generated PDF under the submission it belongs to.
func ExportObjectName(submissionID, filename string) string {
	timestamp := time.Now().Unix()
	return fmt.Sprintf("exports/%s/%d_%s", submissionID, timestamp, safeName(filename))
}

// UploadObjectName places a client upload under its submission and
// required-document id.
func UploadObjectName(submissionID, documentID, filename string) string {
	timestamp := time.Now().Unix()
	if documentID == "" {
		documentID = "other"
	}
	return fmt.Sprintf("uploads/%s/%s/%d_%s", submissionID, safeName(documentID), timestamp, safeName(filename))
}

// safeName drops any directory part and characters that would escape the
// object prefix.
func safeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r < 0x20:
			return -1
		case r == ' ':
			return '_'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
