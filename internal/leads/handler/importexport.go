package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"leadscope_backend/internal/leads/fileio"
	"leadscope_backend/internal/leads/management"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const importSourceFile = "file"

// ExportArchiver stores an export file and returns where to download it.
type ExportArchiver interface {
	StoreExport(ctx context.Context, userID uuid.UUID, filename, contentType string, data []byte) (transport.ExportArchiveResponse, error)
}

// ImportExportHandler serves file import and export of leads.
type ImportExportHandler struct {
	mgmt     *management.Service
	val      *validator.Validator
	archiver ExportArchiver
	maxBytes int64
	now      func() time.Time
}

// NewImportExportHandler creates the handler. archiver may be nil when object
// storage is not configured; archive exports then answer 503.
func NewImportExportHandler(mgmt *management.Service, val *validator.Validator, archiver ExportArchiver, maxUploadBytes int64) *ImportExportHandler {
	return &ImportExportHandler{mgmt: mgmt, val: val, archiver: archiver, maxBytes: maxUploadBytes, now: time.Now}
}

// RegisterRoutes mounts import and export on the leads group.
func (h *ImportExportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/import", h.Import)
	rg.GET("/export", h.Export)
}

func (h *ImportExportHandler) Import(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpkit.Error(c, http.StatusRequestEntityTooLarge, "file too large", nil)
			return
		}
		httpkit.Error(c, http.StatusBadRequest, "no file uploaded", nil)
		return
	}

	format, err := fileio.FormatFromFilename(fileHeader.Filename)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read uploaded file", nil)
		return
	}
	defer file.Close()

	rows, err := fileio.Parse(format, file)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "error processing file", err.Error())
		return
	}

	result, err := h.mgmt.Import(c.Request.Context(), identity.UserID(), rows, importSourceFile)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *ImportExportHandler) Export(c *gin.Context) {
	req, ok := bindListRequest(c, h.val)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	format := fileio.Format(c.DefaultQuery("format", string(fileio.FormatCSV)))
	if format != fileio.FormatCSV && format != fileio.FormatJSON {
		httpkit.Error(c, http.StatusBadRequest, "format must be csv or json", nil)
		return
	}

	leads, err := h.mgmt.ListForExport(c.Request.Context(), identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv"
	if format == fileio.FormatJSON {
		contentType = "application/json"
		err = fileio.WriteJSON(&buf, leads)
	} else {
		err = fileio.WriteCSV(&buf, leads)
	}
	if httpkit.HandleError(c, err) {
		return
	}

	filename := fileio.ExportFilename(format, h.now())
	if c.Query("archive") != "1" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		c.Data(http.StatusOK, contentType, buf.Bytes())
		return
	}

	if h.archiver == nil {
		httpkit.HandleError(c, apperr.Unavailable("export archives are not configured"))
		return
	}
	archive, err := h.archiver.StoreExport(c.Request.Context(), identity.UserID(), filename, contentType, buf.Bytes())
	if httpkit.HandleError(c, err) {
		return
	}
	archive.Count = len(leads)
	httpkit.OK(c, archive)
}
