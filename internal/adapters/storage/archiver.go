package storage

import (
	"bytes"
	"context"
	"fmt"

	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/logger"

	"github.com/google/uuid"
)

// ExportArchiver keeps lead exports in a bucket under exports/<userID>/ and
// hands back a presigned link.
type ExportArchiver struct {
	store  ObjectStore
	bucket string
	log    *logger.Logger
}

func NewExportArchiver(store ObjectStore, bucket string, log *logger.Logger) *ExportArchiver {
	return &ExportArchiver{store: store, bucket: bucket, log: log}
}

// StoreExport uploads data and returns its download location. Count is left
// for the caller to fill in.
func (a *ExportArchiver) StoreExport(ctx context.Context, userID uuid.UUID, filename, contentType string, data []byte) (transport.ExportArchiveResponse, error) {
	if err := a.store.ValidateContentType(contentType); err != nil {
		return transport.ExportArchiveResponse{}, apperr.BadRequest(err.Error())
	}
	if err := a.store.ValidateFileSize(int64(len(data))); err != nil {
		return transport.ExportArchiveResponse{}, apperr.BadRequest(err.Error())
	}

	folder := fmt.Sprintf("exports/%s", userID)
	key, err := a.store.UploadFile(ctx, a.bucket, folder, filename, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		a.log.ExternalCallFailed("minio", "upload_export", err)
		return transport.ExportArchiveResponse{}, apperr.Upstream("failed to archive export", err)
	}

	link, err := a.store.GenerateDownloadURL(ctx, a.bucket, key)
	if err != nil {
		a.log.ExternalCallFailed("minio", "presign_export", err)
		if delErr := a.store.DeleteObject(ctx, a.bucket, key); delErr != nil {
			a.log.ExternalCallFailed("minio", "delete_export", delErr)
		}
		return transport.ExportArchiveResponse{}, apperr.Upstream("failed to sign export link", err)
	}

	return transport.ExportArchiveResponse{
		ObjectKey:   key,
		DownloadURL: link.URL,
		ExpiresAt:   link.ExpiresAt,
	}, nil
}
