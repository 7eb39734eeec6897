package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	apperrors "quick-quote/errors"
	"quick-quote/logger"
)

const (
	mimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
	// maxWorkbookBytes caps a downloaded configuration workbook
	maxWorkbookBytes = 10 << 20
)

// DriveFile is a configuration workbook found in Drive
type DriveFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// DriveService fetches configuration workbooks from Google Drive
type DriveService struct {
	client *drive.Service
}

var _ DriveServiceInterface = (*DriveService)(nil)

// NewDriveService creates a new DriveService instance
// credentialsPath should be the path to the Service Account JSON file
func NewDriveService(ctx context.Context, credentialsPath string) (*DriveService, error) {
	return NewDriveServiceWithOptions(ctx, option.WithCredentialsFile(credentialsPath))
}

// NewDriveServiceWithOptions creates a DriveService from raw client options
func NewDriveServiceWithOptions(ctx context.Context, opts ...option.ClientOption) (*DriveService, error) {
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveService{client: driveService}, nil
}

// ListWorkbooks lists the spreadsheets in a Drive folder
func (ds *DriveService) ListWorkbooks(ctx context.Context, folderID string) ([]DriveFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var files []DriveFile
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)").
			Context(ctx)

		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, apperrors.Wrap(fmt.Errorf("failed to list files: %w", err), apperrors.UnavailableError, "Google Drive request failed")
		}

		for _, f := range r.Files {
			if !isWorkbookMime(f.MimeType) {
				continue
			}
			files = append(files, DriveFile{ID: f.Id, Name: f.Name, MimeType: f.MimeType})
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}

	logger.GetLogger().Infow("📂 ListWorkbooks: folder scanned", "folder_id", folderID, "workbooks", len(files))
	return files, nil
}

// DownloadFile returns the xlsx bytes of a Drive file. Native Google Sheets
// are exported as xlsx.
func (ds *DriveService) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	meta, err := ds.client.Files.Get(fileID).Fields("id, name, mimeType").Context(ctx).Do()
	if err != nil {
		return nil, apperrors.Wrap(fmt.Errorf("failed to get file %s: %w", fileID, err), apperrors.UnavailableError, "Google Drive request failed")
	}
	if !isWorkbookMime(meta.MimeType) {
		return nil, apperrors.ConfigParse(nil, fmt.Sprintf("file %s is not a spreadsheet (%s)", fileID, meta.MimeType))
	}

	var body io.ReadCloser
	if meta.MimeType == mimeGoogleSheet {
		resp, err := ds.client.Files.Export(fileID, mimeXLSX).Context(ctx).Download()
		if err != nil {
			return nil, apperrors.Wrap(fmt.Errorf("failed to export file %s: %w", fileID, err), apperrors.UnavailableError, "Google Drive request failed")
		}
		body = resp.Body
	} else {
		resp, err := ds.client.Files.Get(fileID).Context(ctx).Download()
		if err != nil {
			return nil, apperrors.Wrap(fmt.Errorf("failed to download file %s: %w", fileID, err), apperrors.UnavailableError, "Google Drive request failed")
		}
		body = resp.Body
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxWorkbookBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(fmt.Errorf("failed to read file %s: %w", fileID, err), apperrors.UnavailableError, "Google Drive request failed")
	}
	if len(data) > maxWorkbookBytes {
		return nil, apperrors.ConfigParse(nil, fmt.Sprintf("file %s exceeds %d bytes", fileID, maxWorkbookBytes))
	}

	logger.GetLogger().Infow("✅ DownloadFile: workbook fetched", "file_id", fileID, "name", meta.Name, "bytes", len(data))
	return data, nil
}

func isWorkbookMime(mime string) bool {
	switch strings.ToLower(mime) {
	case mimeXLSX, mimeGoogleSheet:
		return true
	}
	return false
}
