package controller

import (
	"context"
	"time"

	"filevault/config"
	"filevault/infra"
	"filevault/repository"
)

// ObjectStore is the slice of the object store gateway the handlers need.
// *infra.MinioClient satisfies it.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (*infra.UploadGrant, error)
}

// EventPublisher emits lifecycle events for the background workers.
// *produce.FileService satisfies it.
type EventPublisher interface {
	PublishFilePurge(ctx context.Context, fileID, objectKey, uploadedBy string) error
}

type Controller struct {
	Config     *config.Config
	Infra      *infra.Infra
	Repository *repository.Repository
	Objects    ObjectStore
	Events     EventPublisher
}

func NewController(config *config.Config, infra *infra.Infra, repo *repository.Repository) *Controller {
	if repo == nil {
		panic("Failed to initialize Repository")
	}
	ctrl := &Controller{
		Config:     config,
		Infra:      infra,
		Repository: repo,
		Objects:    infra.Minio,
	}
	if infra.Produce != nil {
		ctrl.Events = infra.Produce.FileService
	}
	return ctrl
}
