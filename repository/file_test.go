package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"filevault/entity"
)

func newTestRepo(t *testing.T) *FileRecordRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "opening sqlite")
	require.NoError(t, db.AutoMigrate(&entity.FileRecord{}), "migrating file_records")

	return NewFileRecordRepository(db)
}

func newRecord(fileID, owner string, uploadedAt time.Time, expiresAt time.Time) *entity.FileRecord {
	return &entity.FileRecord{
		FileID:             fileID,
		FileName:           "a.txt",
		UploadedBy:         owner,
		UploadedDate:       uploadedAt,
		ObjectKey:          entity.ObjectKeyFor(fileID, "a.txt"),
		DownloadURL:        "https://example.test/" + fileID,
		URLExpiration:      expiresAt,
		URLExpirationEpoch: expiresAt.Unix(),
		UploadMode:         entity.UploadModeInline,
	}
}

func TestFindByUploaderNewestFirst(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	now := time.Now().UTC()
	expiry := now.Add(time.Hour)

	require.NoError(t, repo.Create(newRecord("id-old", "u@x.com", now.Add(-2*time.Hour), expiry)))
	require.NoError(t, repo.Create(newRecord("id-new", "u@x.com", now, expiry)))
	require.NoError(t, repo.Create(newRecord("id-mid", "u@x.com", now.Add(-time.Hour), expiry)))
	require.NoError(t, repo.Create(newRecord("id-other", "v@x.com", now, expiry)))

	records, err := repo.FindByUploader("u@x.com")
	require.NoError(t, err)
	require.Len(t, records, 2+1)

	assert.Equal(t, "id-new", records[0].FileID)
	assert.Equal(t, "id-mid", records[1].FileID)
	assert.Equal(t, "id-old", records[2].FileID)
}

func TestFindByUploaderEmpty(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	records, err := repo.FindByUploader("nobody@x.com")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteByIDAndUploader(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	now := time.Now().UTC()
	require.NoError(t, repo.Create(newRecord("id-1", "u@x.com", now, now.Add(time.Hour))))

	// Wrong owner deletes nothing.
	deleted, err := repo.DeleteByIDAndUploader("id-1", "mallory@x.com")
	require.NoError(t, err)
	assert.Empty(t, deleted)

	records, err := repo.FindByUploader("u@x.com")
	require.NoError(t, err)
	require.Len(t, records, 1)

	// Matching pairing deletes and reports the record.
	deleted, err = repo.DeleteByIDAndUploader("id-1", "u@x.com")
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, "uploads/id-1/a.txt", deleted[0].ObjectKey)

	records, err = repo.FindByUploader("u@x.com")
	require.NoError(t, err)
	assert.Empty(t, records)

	// Deleting again is not an error.
	deleted, err = repo.DeleteByIDAndUploader("id-1", "u@x.com")
	require.NoError(t, err)
	assert.Empty(t, deleted)
}

func TestDeleteExpired(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	now := time.Now().UTC()

	require.NoError(t, repo.Create(newRecord("id-expired", "u@x.com", now.Add(-2*time.Hour), now.Add(-time.Hour))))
	require.NoError(t, repo.Create(newRecord("id-live", "u@x.com", now, now.Add(time.Hour))))

	reclaimed, err := repo.DeleteExpired(now)
	require.NoError(t, err)
	require.Len(t, reclaimed, 1)
	assert.Equal(t, "id-expired", reclaimed[0].FileID)

	records, err := repo.FindByUploader("u@x.com")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "id-live", records[0].FileID)

	// Nothing left to reclaim.
	reclaimed, err = repo.DeleteExpired(now)
	require.NoError(t, err)
	assert.Empty(t, reclaimed)
}
