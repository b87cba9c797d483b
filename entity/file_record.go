package entity

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	UploadModeInline    = "inline"
	UploadModeMultipart = "multipart"
)

// FileRecord is the metadata row written once per upload. Records are
// immutable after insert; they go away when the owner deletes them or when
// the expiry sweep reclaims them.
type FileRecord struct {
	FileID             string         `json:"fileId" gorm:"type:uuid;primaryKey"`
	FileName           string         `json:"fileName" gorm:"type:varchar(512);not null"`
	UploadedBy         string         `json:"uploadedBy" gorm:"type:varchar(320);not null;index"`
	UploadedDate       time.Time      `json:"uploadedDate" gorm:"not null"`
	ObjectKey          string         `json:"objectKey" gorm:"type:varchar(1024);not null"`
	DownloadURL        string         `json:"downloadUrl" gorm:"type:text;not null"`
	URLExpiration      time.Time      `json:"urlExpiration" gorm:"not null"`
	URLExpirationEpoch int64          `json:"urlExpirationEpoch" gorm:"not null;index"`
	UploadMode         string         `json:"uploadMode" gorm:"type:varchar(16);not null"`
	UploadFields       datatypes.JSON `json:"uploadFields,omitempty" gorm:"type:jsonb"`
}

func (FileRecord) TableName() string {
	return "file_records"
}

// ObjectKeyFor derives the storage path for a file. The key is computed
// exactly once at upload time and stored on the record.
func ObjectKeyFor(fileID, fileName string) string {
	return fmt.Sprintf("uploads/%s/%s", fileID, fileName)
}
