package service

import "context"

// DriveServiceInterface defines the contract for Google Drive operations
type DriveServiceInterface interface {
	ListWorkbooks(ctx context.Context, folderID string) ([]DriveFile, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}
