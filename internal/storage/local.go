package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidObjectName is returned for object names that resolve outside
// the storage root.
var ErrInvalidObjectName = errors.New("invalid object name")

// LocalStorageClient keeps objects below a directory on disk. Files are
// streamed through the API, the signed URL only serves as a short-lived
// download reference.
type LocalStorageClient struct {
	basePath  string
	baseURL   string
	secretKey string
}

func NewLocalStorageClient(basePath, baseURL, secretKey string) (*LocalStorageClient, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	if secretKey == "" {
		secretKey = "default-local-storage-key"
	}
	if baseURL == "" {
		baseURL = "internal://storage"
	}

	return &LocalStorageClient{
		basePath:  abs,
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
	}, nil
}

func (l *LocalStorageClient) resolve(objectName string) (string, error) {
	if objectName == "" {
		return "", ErrInvalidObjectName
	}
	full := filepath.Join(l.basePath, filepath.FromSlash(objectName))
	rel, err := filepath.Rel(l.basePath, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidObjectName, objectName)
	}
	return full, nil
}

func (l *LocalStorageClient) UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error) {
	fullPath, err := l.resolve(objectName)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", objectName, err)
	}

	// Write to a temp file first so readers never see a partial object.
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create file for %s: %w", objectName, err)
	}
	size, err := io.Copy(tmp, reader)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to write %s: %w", objectName, err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to store %s: %w", objectName, err)
	}

	return &UploadResult{
		ObjectName: objectName,
		PublicURL:  l.baseURL + "/" + objectName,
		Size:       size,
	}, nil
}

func (l *LocalStorageClient) DeleteFile(ctx context.Context, objectName string) error {
	fullPath, err := l.resolve(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", objectName, err)
	}
	l.cleanEmptyDirs(filepath.Dir(fullPath))
	return nil
}

// cleanEmptyDirs removes empty parent directories up to basePath
func (l *LocalStorageClient) cleanEmptyDirs(dir string) {
	for dir != l.basePath && strings.HasPrefix(dir, l.basePath) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}

func (l *LocalStorageClient) ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error) {
	fullPath, err := l.resolve(objectName)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", objectName, err)
	}
	return file, nil
}

func (l *LocalStorageClient) GetSignedURL(objectName string, expiry time.Duration) (string, error) {
	if _, err := l.resolve(objectName); err != nil {
		return "", err
	}
	expiresAt := time.Now().Add(expiry).Unix()
	query := url.Values{}
	query.Set("expires", strconv.FormatInt(expiresAt, 10))
	query.Set("signature", l.sign(objectName, expiresAt))
	return l.baseURL + "/" + objectName + "?" + query.Encode(), nil
}

func (l *LocalStorageClient) sign(objectName string, expiresAt int64) string {
	h := hmac.New(sha256.New, []byte(l.secretKey))
	fmt.Fprintf(h, "%s:%d", objectName, expiresAt)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignedURL reports whether signature matches objectName and the
// link has not expired yet.
func (l *LocalStorageClient) VerifySignedURL(objectName string, expiresAt int64, signature string) bool {
	if time.Now().Unix() > expiresAt {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(l.sign(objectName, expiresAt)))
}

func (l *LocalStorageClient) Close() error {
	return nil
}

var _ StorageClient = (*LocalStorageClient)(nil)
