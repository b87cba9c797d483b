package repository

import (
	"time"

	"gorm.io/gorm"

	"filevault/entity"
)

type FileRecordRepository struct {
	db *gorm.DB
}

func NewFileRecordRepository(db *gorm.DB) *FileRecordRepository {
	return &FileRecordRepository{db: db}
}

func (r *FileRecordRepository) Create(record *entity.FileRecord) error {
	return r.db.Create(record).Error
}

func (r *FileRecordRepository) FindByID(fileID string) (*entity.FileRecord, error) {
	var record entity.FileRecord
	err := r.db.Where("file_id = ?", fileID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByUploader returns all records owned by uploadedBy, newest first.
func (r *FileRecordRepository) FindByUploader(uploadedBy string) ([]entity.FileRecord, error) {
	var records []entity.FileRecord
	err := r.db.Where("uploaded_by = ?", uploadedBy).
		Order("uploaded_date DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteByIDAndUploader removes the record only when the (fileId, uploadedBy)
// pairing matches, and reports what was deleted so callers can clean up
// storage. Deleting a record that does not exist is not an error.
func (r *FileRecordRepository) DeleteByIDAndUploader(fileID, uploadedBy string) ([]entity.FileRecord, error) {
	var records []entity.FileRecord
	err := r.db.Where("file_id = ? AND uploaded_by = ?", fileID, uploadedBy).Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	err = r.db.Delete(&entity.FileRecord{}, "file_id = ? AND uploaded_by = ?", fileID, uploadedBy).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}

// DeleteExpired reclaims records whose download URL expiry has elapsed and
// returns them so the caller can purge the backing objects.
func (r *FileRecordRepository) DeleteExpired(now time.Time) ([]entity.FileRecord, error) {
	var records []entity.FileRecord
	err := r.db.Where("url_expiration_epoch <= ?", now.Unix()).Find(&records).Error
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	err = r.db.Delete(&entity.FileRecord{}, "url_expiration_epoch <= ?", now.Unix()).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
