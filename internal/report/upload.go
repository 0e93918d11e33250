package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/admin-dashboard/internal"
	"github.com/frahmantamala/admin-dashboard/internal/access"
	"github.com/frahmantamala/admin-dashboard/internal/activity"
	reportDatamodel "github.com/frahmantamala/admin-dashboard/internal/core/datamodel/report"
	"github.com/frahmantamala/admin-dashboard/internal/filestore"
)

const DefaultMaxUploadBytes int64 = 10 << 20

const sniffLen = 512

var (
	ErrNoFile          = internal.NewValidationError("No file uploaded", internal.ErrCodeInvalidRequest)
	ErrInvalidFileType = internal.NewValidationError("Invalid file type. Only PDF, DOCX, XLSX, CSV, and PPTX files are allowed.", internal.ErrCodeInvalidFileType)
)

var contentTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypeCSV:  "text/csv",
	FileTypePPTX: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// Browsers disagree on what to call a CSV file.
var csvAliases = []string{"text/csv", "application/csv", "application/vnd.ms-excel", "text/plain"}

// sniffedTypes is what http.DetectContentType reports for each type. The
// OOXML formats are zip containers.
var sniffedTypes = map[FileType]string{
	FileTypePDF:  "application/pdf",
	FileTypeDOCX: "application/zip",
	FileTypeXLSX: "application/zip",
	FileTypeCSV:  "text/plain",
	FileTypePPTX: "application/zip",
}

type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Name        string
	FolderID    *int64
}

type Download struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

func (s *Service) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

func NewFileTooLargeError(maxBytes int64) *internal.AppError {
	return internal.NewValidationError(
		fmt.Sprintf("File too large. Maximum size is %dMB.", maxBytes>>20),
		internal.ErrCodeFileTooLarge)
}

// Upload stores the file and creates a report pointing at it.
func (s *Service) Upload(ctx context.Context, actor *internal.User, organizationID int64, in UploadInput) (*Report, error) {
	if actor == nil {
		return nil, internal.ErrUnauthenticated
	}
	if in.Body == nil || in.Filename == "" {
		return nil, ErrNoFile
	}
	if in.Size > s.maxUploadBytes {
		return nil, NewFileTooLargeError(s.maxUploadBytes)
	}

	fileType, err := detectFileType(in.Filename, in.ContentType)
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, internal.NewInternalError("failed to read upload", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, ErrNoFile
	}
	if !sniffMatches(fileType, head) {
		s.logger.Warn("upload content does not match extension", "filename", in.Filename, "detected", http.DetectContentType(head))
		return nil, ErrInvalidFileType
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(in.Filename), filepath.Ext(in.Filename))
	}
	dto := CreateReportDTO{Name: name, FileType: string(fileType), FolderID: in.FolderID}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := access.EnsureOrganization(ctx, s.repo, actor, organizationID); err != nil {
		return nil, err
	}
	if err := s.checkFolder(ctx, organizationID, dto.FolderID); err != nil {
		return nil, err
	}

	key := filestore.NewKey(organizationID, string(fileType))
	body := io.MultiReader(bytes.NewReader(head), in.Body)
	counter := &countingReader{r: io.LimitReader(body, s.maxUploadBytes+1)}
	if err := s.store.Put(ctx, key, counter, in.Size, contentTypes[fileType]); err != nil {
		s.logger.Error("failed to store upload", "error", err, "key", key)
		return nil, internal.NewInternalError("failed to store file", err)
	}
	if counter.n > s.maxUploadBytes {
		s.discard(ctx, key)
		return nil, NewFileTooLargeError(s.maxUploadBytes)
	}

	size := counter.n
	row := &reportDatamodel.Report{
		Name:           dto.Name,
		FileType:       dto.FileType,
		FileSize:       &size,
		FilePath:       &key,
		FolderID:       dto.FolderID,
		OrganizationID: organizationID,
		CreatedBy:      actor.ID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.discard(ctx, key)
		s.logger.Error("failed to create uploaded report", "error", err, "key", key)
		return nil, internal.NewInternalError("failed to create report", err)
	}

	s.logger.Info("file uploaded", "report_id", row.ID, "bytes", size, "file_type", row.FileType)
	s.record(ctx, actor, row, activity.ActionReportUploaded, map[string]interface{}{
		"name":     row.Name,
		"fileType": row.FileType,
		"fileSize": size,
	})
	return FromDataModel(row), nil
}

// Download opens the stored file. The caller must close Body.
func (s *Service) Download(ctx context.Context, actor *internal.User, id int64) (*Download, error) {
	row, err := s.authorize(ctx, actor, id, access.LevelViewer)
	if err != nil {
		return nil, err
	}
	if row.FilePath == nil || *row.FilePath == "" {
		return nil, internal.ErrFileNotFound
	}

	body, err := s.store.Open(ctx, *row.FilePath)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			s.logger.Warn("report file missing from store", "report_id", id, "key", *row.FilePath)
			return nil, internal.ErrFileNotFound
		}
		return nil, internal.NewInternalError("failed to open file", err)
	}

	d := &Download{
		Filename:    row.Name + "." + row.FileType,
		ContentType: contentTypes[FileType(row.FileType)],
		Body:        body,
	}
	if row.FileSize != nil {
		d.Size = *row.FileSize
	}
	return d, nil
}

func (s *Service) discard(ctx context.Context, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("failed to remove orphaned upload", "error", err, "key", key)
	}
}

// detectFileType checks the extension and, when the client sent one, the
// declared media type.
func detectFileType(filename, declared string) (FileType, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	fileType := FileType(ext)
	if _, ok := contentTypes[fileType]; !ok {
		return "", ErrInvalidFileType
	}

	if declared == "" {
		return fileType, nil
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return "", ErrInvalidFileType
	}
	if mediaType == "application/octet-stream" {
		return fileType, nil
	}
	if fileType == FileTypeCSV {
		for _, alias := range csvAliases {
			if mediaType == alias {
				return fileType, nil
			}
		}
		return "", ErrInvalidFileType
	}
	if mediaType != contentTypes[fileType] {
		return "", ErrInvalidFileType
	}
	return fileType, nil
}

func sniffMatches(fileType FileType, head []byte) bool {
	detected, _, err := mime.ParseMediaType(http.DetectContentType(head))
	if err != nil {
		return false
	}
	return detected == sniffedTypes[fileType]
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
