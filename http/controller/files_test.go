package controller_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/entity"
)

func seedRecord(t *testing.T, env *testEnv, fileID, fileName, uploadedBy string, uploadedDate time.Time) entity.FileRecord {
	t.Helper()
	record := entity.FileRecord{
		FileID:             fileID,
		FileName:           fileName,
		UploadedBy:         uploadedBy,
		UploadedDate:       uploadedDate,
		ObjectKey:          entity.ObjectKeyFor(fileID, fileName),
		DownloadURL:        "https://storage.test/" + entity.ObjectKeyFor(fileID, fileName) + "?sig=abc",
		URLExpiration:      uploadedDate.Add(time.Hour),
		URLExpirationEpoch: uploadedDate.Add(time.Hour).Unix(),
		UploadMode:         entity.UploadModeInline,
	}
	require.NoError(t, env.repo.FileRepo.Create(&record))
	return record
}

func TestListAfterUploadRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/upload", uploadBody(60))
	require.Equal(t, http.StatusCreated, w.Code)
	uploaded := decodeBody(t, w)

	w = env.do(http.MethodGet, "/api/v1/upload?uploadedBy=u@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	items, ok := decodeBody(t, w)["items"].([]interface{})
	require.True(t, ok, "response should carry an items array")
	require.Len(t, items, 1)

	item := items[0].(map[string]interface{})
	assert.Equal(t, uploaded["fileId"], item["fileId"])
	assert.Equal(t, "a.txt", item["fileName"])
	assert.Equal(t, uploaded["objectKey"], item["objectKey"])
	assert.Equal(t, uploaded["downloadUrl"], item["downloadUrl"])

	expiresAt, err := time.Parse(time.RFC3339Nano, item["urlExpiration"].(string))
	require.NoError(t, err)
	assert.Equal(t, float64(expiresAt.Unix()), item["urlExpirationEpoch"])
}

func TestListNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	base := time.Now().UTC().Add(-time.Hour)
	seedRecord(t, env, "id-old", "old.txt", "u@x.com", base)
	seedRecord(t, env, "id-new", "new.txt", "u@x.com", base.Add(10*time.Minute))
	seedRecord(t, env, "id-other", "other.txt", "someone@else.com", base.Add(20*time.Minute))

	w := env.do(http.MethodGet, "/api/v1/upload?uploadedBy=u@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	items := decodeBody(t, w)["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "id-new", items[0].(map[string]interface{})["fileId"])
	assert.Equal(t, "id-old", items[1].(map[string]interface{})["fileId"])
}

func TestListUnknownOwnerIsEmpty(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/upload?uploadedBy=nobody@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	items, ok := decodeBody(t, w)["items"].([]interface{})
	require.True(t, ok, "items should be present even when empty")
	assert.Empty(t, items)
}

func TestListMissingOwner(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/upload", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required field: uploadedBy", decodeBody(t, w)["message"])
}

func TestDeleteRemovesRecordAndPublishesPurge(t *testing.T) {
	env := newTestEnv(t)
	record := seedRecord(t, env, "id-1", "a.txt", "u@x.com", time.Now().UTC())

	w := env.do(http.MethodDelete, "/api/v1/upload?fileId=id-1&uploadedBy=u@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "File deleted successfully", decodeBody(t, w)["message"])

	records, err := env.repo.FileRepo.FindByUploader("u@x.com")
	require.NoError(t, err)
	assert.Empty(t, records)

	require.Len(t, env.events.purged, 1)
	assert.Equal(t, record.ObjectKey, env.events.purged[0])
}

func TestDeleteUnknownFileIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodDelete, "/api/v1/upload?fileId=no-such-id&uploadedBy=u@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "File deleted successfully", decodeBody(t, w)["message"])
	assert.Empty(t, env.events.purged, "nothing deleted, nothing purged")
}

func TestDeleteOwnerMismatchLeavesRecord(t *testing.T) {
	env := newTestEnv(t)
	seedRecord(t, env, "id-1", "a.txt", "u@x.com", time.Now().UTC())

	w := env.do(http.MethodDelete, "/api/v1/upload?fileId=id-1&uploadedBy=intruder@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	records, err := env.repo.FileRepo.FindByUploader("u@x.com")
	require.NoError(t, err)
	assert.Len(t, records, 1, "record owned by someone else must survive")
	assert.Empty(t, env.events.purged)
}

func TestDeleteRepeatedIsStable(t *testing.T) {
	env := newTestEnv(t)
	seedRecord(t, env, "id-1", "a.txt", "u@x.com", time.Now().UTC())

	for i := 0; i < 2; i++ {
		w := env.do(http.MethodDelete, "/api/v1/upload?fileId=id-1&uploadedBy=u@x.com", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Len(t, env.events.purged, 1, "only the first delete found a record")
}

func TestDeleteMissingParams(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		target  string
		message string
	}{
		{"missing fileId", "/api/v1/upload?uploadedBy=u@x.com", "Missing required field: fileId"},
		{"missing uploadedBy", "/api/v1/upload?fileId=id-1", "Missing required field: uploadedBy"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(http.MethodDelete, tc.target, nil)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, decodeBody(t, w)["message"])
		})
	}
}
