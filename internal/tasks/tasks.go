package tasks

import (
	"context"

	"github.com/desertthunder/ems/internal/services"
)

// Uploader copies a finished export to a remote target and returns its remote path.
//
// Implemented by sftpclient.Uploader.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
	Addr() string
}

// EmployeeEngine runs bulk operations against an employee [services.Service].
type EmployeeEngine struct {
	svc      services.Service
	uploader Uploader
}

// NewEmployeeEngine creates an engine. uploader may be nil when exports stay local.
func NewEmployeeEngine(svc services.Service, uploader Uploader) *EmployeeEngine {
	return &EmployeeEngine{svc: svc, uploader: uploader}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *EmployeeEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}
