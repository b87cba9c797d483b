package controller

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/datatypes"

	"filevault/entity"
	"filevault/http/controller/dto"
	"filevault/utils"
)

// UploadFile is the write endpoint. The request either carries the file
// bytes inline (base64 in the JSON body) or, with ?multipart=true, asks for
// a presigned POST the browser submits the bytes through directly.
func (ctrl *Controller) UploadFile(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Upload] Failed to read request body: %v", err)
		utils.JSON400(c, "Unable to read request body")
		return
	}

	base64Encoded := c.GetHeader("Content-Transfer-Encoding") == "base64"
	multipart := c.Query("multipart") == "true"

	req, err := dto.ParseUploadRequest(body, base64Encoded, multipart, ctrl.Config.EnvConfig.Upload.DefaultURLExpiration)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Upload] Rejected request: %v", err)
		utils.JSON400(c, err.Error())
		return
	}

	fileID := uuid.NewString()
	objectKey := entity.ObjectKeyFor(fileID, req.FileName)

	if req.Multipart {
		ctrl.handleMultipartUpload(c, req, fileID, objectKey)
		return
	}
	ctrl.handleInlineUpload(c, req, fileID, objectKey)
}

// handleInlineUpload stores the bytes first, then issues the download grant
// and only then writes metadata. A storage or grant failure leaves no
// metadata behind; a metadata failure leaves an unreferenced object, which
// the bucket lifecycle reclaims.
func (ctrl *Controller) handleInlineUpload(c *gin.Context, req *dto.UploadRequest, fileID, objectKey string) {
	ctx := c.Request.Context()

	data, err := base64.StdEncoding.DecodeString(req.FileContent)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Upload] Undecodable fileContent for %q: %v", objectKey, err)
		utils.JSON400(c, "fileContent must be valid base64")
		return
	}

	if err := ctrl.Objects.PutObject(ctx, objectKey, data, req.ContentType); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to store object %q: %v", objectKey, err)
		utils.JSON500(c, "Failed to store file")
		return
	}

	uploadedDate := time.Now().UTC()
	ttl := time.Duration(req.ExpirationSeconds) * time.Second
	expiresAt := uploadedDate.Add(ttl)

	downloadURL, err := ctrl.Objects.PresignDownload(ctx, objectKey, ttl)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to presign download for %q: %v", objectKey, err)
		utils.JSON500(c, "Failed to generate download URL")
		return
	}

	record := entity.FileRecord{
		FileID:             fileID,
		FileName:           req.FileName,
		UploadedBy:         req.UploadedBy,
		UploadedDate:       uploadedDate,
		ObjectKey:          objectKey,
		DownloadURL:        downloadURL,
		URLExpiration:      expiresAt,
		URLExpirationEpoch: expiresAt.Unix(),
		UploadMode:         entity.UploadModeInline,
	}

	if err := ctrl.Repository.FileRepo.Create(&record); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to store metadata for %q: %v", fileID, err)
		utils.JSON500(c, "Failed to store metadata")
		return
	}

	ctrl.invalidateListing(c, req.UploadedBy)
	ctrl.countUpload(c, entity.UploadModeInline)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Upload] Stored %q (%d bytes) for %s", objectKey, len(data), req.UploadedBy)
	utils.JSON201(c, gin.H{
		"fileId":        record.FileID,
		"objectKey":     record.ObjectKey,
		"downloadUrl":   record.DownloadURL,
		"urlExpiration": record.URLExpiration,
	})
}

// handleMultipartUpload writes metadata before any bytes move: the record
// may briefly (or forever, if the browser bails) reference an object that
// does not exist. The owner listing is the only consumer, so a missing
// object just means a dead download link.
func (ctrl *Controller) handleMultipartUpload(c *gin.Context, req *dto.UploadRequest, fileID, objectKey string) {
	ctx := c.Request.Context()

	grantSeconds := req.ExpirationSeconds
	if max := ctrl.Config.EnvConfig.Upload.MaxGrantExpiration; grantSeconds > max {
		grantSeconds = max
	}

	grant, err := ctrl.Objects.PresignUpload(ctx, objectKey, req.ContentType, time.Duration(grantSeconds)*time.Second)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to presign upload for %q: %v", objectKey, err)
		utils.JSON500(c, "Failed to generate upload URL")
		return
	}

	uploadedDate := time.Now().UTC()
	ttl := time.Duration(req.ExpirationSeconds) * time.Second
	expiresAt := uploadedDate.Add(ttl)

	downloadURL, err := ctrl.Objects.PresignDownload(ctx, objectKey, ttl)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to presign download for %q: %v", objectKey, err)
		utils.JSON500(c, "Failed to generate download URL")
		return
	}

	fields, err := json.Marshal(grant.Fields)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to encode grant fields for %q: %v", objectKey, err)
		utils.JSON500(c, "Failed to generate upload URL")
		return
	}

	record := entity.FileRecord{
		FileID:             fileID,
		FileName:           req.FileName,
		UploadedBy:         req.UploadedBy,
		UploadedDate:       uploadedDate,
		ObjectKey:          objectKey,
		DownloadURL:        downloadURL,
		URLExpiration:      expiresAt,
		URLExpirationEpoch: expiresAt.Unix(),
		UploadMode:         entity.UploadModeMultipart,
		UploadFields:       datatypes.JSON(fields),
	}

	if err := ctrl.Repository.FileRepo.Create(&record); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Upload] Failed to store metadata for %q: %v", fileID, err)
		utils.JSON500(c, "Failed to store metadata")
		return
	}

	ctrl.invalidateListing(c, req.UploadedBy)
	ctrl.countUpload(c, entity.UploadModeMultipart)

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Upload] Issued upload grant for %q (ttl %ds) to %s", objectKey, grantSeconds, req.UploadedBy)
	utils.JSON201(c, gin.H{
		"fileId":        record.FileID,
		"objectKey":     record.ObjectKey,
		"downloadUrl":   record.DownloadURL,
		"urlExpiration": record.URLExpiration,
		"upload":        grant,
	})
}

func (ctrl *Controller) countUpload(c *gin.Context, mode string) {
	if t := ctrl.Infra.Telemetry; t != nil {
		t.Uploads.Add(c.Request.Context(), 1, metric.WithAttributes(attribute.String("mode", mode)))
	}
}
