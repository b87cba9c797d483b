package controller

import (
	"time"

	"github.com/gin-gonic/gin"

	"filevault/entity"
	"filevault/http/controller/dto"
	"filevault/utils"
)

const listingCacheTTL = 30 * time.Second

func listingCacheKey(uploadedBy string) string {
	return "filevault:listing:" + uploadedBy
}

// ListFiles returns every record owned by uploadedBy, newest first. Results
// are cached per owner for a short window; a stale read is fine, the design
// promises no read-after-write guarantee.
func (ctrl *Controller) ListFiles(c *gin.Context) {
	ctx := c.Request.Context()

	uploadedBy, err := dto.RequiredQueryParam("uploadedBy", c.Query("uploadedBy"))
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[List] Rejected request: %v", err)
		utils.JSON400(c, err.Error())
		return
	}

	if cache := ctrl.Infra.Redis; cache != nil {
		var cached []entity.FileRecord
		if err := cache.Get(ctx, listingCacheKey(uploadedBy), &cached); err == nil {
			utils.JSON200(c, gin.H{"items": cached})
			return
		}
	}

	records, err := ctrl.Repository.FileRepo.FindByUploader(uploadedBy)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[List] Query failed for %s: %v", uploadedBy, err)
		utils.JSON500(c, "Failed to list files")
		return
	}
	if records == nil {
		records = []entity.FileRecord{}
	}

	if cache := ctrl.Infra.Redis; cache != nil {
		if err := cache.Set(ctx, listingCacheKey(uploadedBy), records, listingCacheTTL); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[List] Failed to cache listing for %s: %v", uploadedBy, err)
		}
	}

	if t := ctrl.Infra.Telemetry; t != nil {
		t.Listings.Add(ctx, 1)
	}

	utils.JSON200(c, gin.H{"items": records})
}

// DeleteFile removes the metadata record matching (fileId, uploadedBy).
// Deleting an id that does not exist, or one owned by someone else, still
// answers 200: the caller's view ends up the same either way. The object
// itself is purged asynchronously by the background worker.
func (ctrl *Controller) DeleteFile(c *gin.Context) {
	ctx := c.Request.Context()

	fileID, err := dto.RequiredQueryParam("fileId", c.Query("fileId"))
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Delete] Rejected request: %v", err)
		utils.JSON400(c, err.Error())
		return
	}
	uploadedBy, err := dto.RequiredQueryParam("uploadedBy", c.Query("uploadedBy"))
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Delete] Rejected request: %v", err)
		utils.JSON400(c, err.Error())
		return
	}

	deleted, err := ctrl.Repository.FileRepo.DeleteByIDAndUploader(fileID, uploadedBy)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Delete] Failed to delete %q for %s: %v", fileID, uploadedBy, err)
		utils.JSON500(c, "Failed to delete file")
		return
	}

	if len(deleted) > 0 {
		ctrl.invalidateListing(c, uploadedBy)
		if ctrl.Events != nil {
			for _, record := range deleted {
				if err := ctrl.Events.PublishFilePurge(ctx, record.FileID, record.ObjectKey, record.UploadedBy); err != nil {
					ctrl.Infra.Logger.WarningWithContextf(ctx, "[Delete] Failed to publish purge for %q: %v", record.FileID, err)
				}
			}
		}
		ctrl.Infra.Logger.InfoWithContextf(ctx, "[Delete] Deleted %q for %s", fileID, uploadedBy)
	}

	if t := ctrl.Infra.Telemetry; t != nil {
		t.Deletions.Add(ctx, 1)
	}

	utils.JSON200(c, gin.H{"message": "File deleted successfully"})
}

func (ctrl *Controller) invalidateListing(c *gin.Context, uploadedBy string) {
	if cache := ctrl.Infra.Redis; cache != nil {
		if err := cache.Delete(c.Request.Context(), listingCacheKey(uploadedBy)); err != nil {
			ctrl.Infra.Logger.WarningWithContextf(c.Request.Context(), "[Cache] Failed to invalidate listing for %s: %v", uploadedBy, err)
		}
	}
}
