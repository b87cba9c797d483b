package dto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefaultExpiration = 3600

func validBody() string {
	return `{"fileName":"a.txt","uploadedBy":"u@x.com","fileContent":"SGVsbG8="}`
}

func TestParseUploadRequestValid(t *testing.T) {
	t.Parallel()

	req, err := ParseUploadRequest([]byte(`{
		"fileName": "  a.txt ",
		"uploadedBy": " u@x.com ",
		"fileContent": "SGVs bG8=",
		"contentType": " text/plain ",
		"expirationSeconds": 60
	}`), false, false, testDefaultExpiration)
	require.NoError(t, err)

	assert.Equal(t, "a.txt", req.FileName, "fileName should be trimmed")
	assert.Equal(t, "u@x.com", req.UploadedBy, "uploadedBy should be trimmed")
	assert.Equal(t, "SGVsbG8=", req.FileContent, "whitespace should be stripped from fileContent")
	assert.Equal(t, "text/plain", req.ContentType)
	assert.Equal(t, 60, req.ExpirationSeconds)
	assert.False(t, req.Multipart)
}

func TestParseUploadRequestTransportEncoding(t *testing.T) {
	t.Parallel()

	wrapped := base64.StdEncoding.EncodeToString([]byte(validBody()))

	req, err := ParseUploadRequest([]byte(wrapped), true, false, testDefaultExpiration)
	require.NoError(t, err)
	assert.Equal(t, "a.txt", req.FileName)

	_, err = ParseUploadRequest([]byte("%%%not-base64%%%"), true, false, testDefaultExpiration)
	require.EqualError(t, err, "Unable to decode base64-encoded body")
}

func TestParseUploadRequestMalformedBody(t *testing.T) {
	t.Parallel()

	_, err := ParseUploadRequest(nil, false, false, testDefaultExpiration)
	require.EqualError(t, err, "Missing request body")

	_, err = ParseUploadRequest([]byte("{not json"), false, false, testDefaultExpiration)
	require.EqualError(t, err, "Request body must be valid JSON")
}

func TestParseUploadRequestRequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "fileName absent",
			body:    `{"uploadedBy":"u@x.com","fileContent":"SGVsbG8="}`,
			wantErr: "Missing required field: fileName",
		},
		{
			name:    "fileName not a string",
			body:    `{"fileName":42,"uploadedBy":"u@x.com","fileContent":"SGVsbG8="}`,
			wantErr: "Missing required field: fileName",
		},
		{
			name:    "fileName blank",
			body:    `{"fileName":"   ","uploadedBy":"u@x.com","fileContent":"SGVsbG8="}`,
			wantErr: "fileName cannot be empty",
		},
		{
			name:    "uploadedBy absent",
			body:    `{"fileName":"a.txt","fileContent":"SGVsbG8="}`,
			wantErr: "Missing required field: uploadedBy",
		},
		{
			name:    "uploadedBy null",
			body:    `{"fileName":"a.txt","uploadedBy":null,"fileContent":"SGVsbG8="}`,
			wantErr: "Missing required field: uploadedBy",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseUploadRequest([]byte(tc.body), false, false, testDefaultExpiration)
			require.EqualError(t, err, tc.wantErr)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestParseUploadRequestFileContent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "absent", content: ``, wantErr: "fileContent must be a non-empty base64 string"},
		{name: "empty", content: `"fileContent":"",`, wantErr: "fileContent must be a non-empty base64 string"},
		{name: "not a string", content: `"fileContent":123,`, wantErr: "fileContent must be a non-empty base64 string"},
		{name: "bad alphabet", content: `"fileContent":"SGV%bG8=",`, wantErr: "fileContent must be valid base64"},
		{name: "bad padding", content: `"fileContent":"SGVsbG8===",`, wantErr: "fileContent must be valid base64"},
		{name: "odd length", content: `"fileContent":"SGVsbG8",`, wantErr: "fileContent must be valid base64"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			body := `{` + tc.content + `"fileName":"a.txt","uploadedBy":"u@x.com"}`
			_, err := ParseUploadRequest([]byte(body), false, false, testDefaultExpiration)
			require.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestParseUploadRequestMultipartSkipsFileContent(t *testing.T) {
	t.Parallel()

	req, err := ParseUploadRequest([]byte(`{"fileName":"a.txt","uploadedBy":"u@x.com"}`), false, true, testDefaultExpiration)
	require.NoError(t, err)
	assert.True(t, req.Multipart)
	assert.Empty(t, req.FileContent)
}

func TestParseUploadRequestExpiration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		field   string
		want    int
		wantErr string
	}{
		{name: "absent falls back to default", field: ``, want: testDefaultExpiration},
		{name: "integer", field: `"expirationSeconds":60,`, want: 60},
		{name: "numeric string coerces", field: `"expirationSeconds":"120",`, want: 120},
		{name: "fractional", field: `"expirationSeconds":60.5,`, wantErr: "expirationSeconds must be an integer"},
		{name: "non-numeric string", field: `"expirationSeconds":"abc",`, wantErr: "expirationSeconds must be an integer"},
		{name: "boolean", field: `"expirationSeconds":true,`, wantErr: "expirationSeconds must be an integer"},
		{name: "zero", field: `"expirationSeconds":0,`, wantErr: "expirationSeconds must be a positive integer"},
		{name: "negative", field: `"expirationSeconds":-5,`, wantErr: "expirationSeconds must be a positive integer"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			body := `{` + tc.field + `"fileName":"a.txt","uploadedBy":"u@x.com","fileContent":"SGVsbG8="}`
			req, err := ParseUploadRequest([]byte(body), false, false, testDefaultExpiration)
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, req.ExpirationSeconds)
		})
	}
}

func TestParseUploadRequestContentTypeDefault(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"fileName":"a.txt","uploadedBy":"u@x.com","fileContent":"SGVsbG8="}`,
		`{"fileName":"a.txt","uploadedBy":"u@x.com","fileContent":"SGVsbG8=","contentType":"  "}`,
	} {
		req, err := ParseUploadRequest([]byte(body), false, false, testDefaultExpiration)
		require.NoError(t, err)
		assert.Equal(t, "application/octet-stream", req.ContentType)
	}
}

func TestRequiredQueryParam(t *testing.T) {
	t.Parallel()

	got, err := RequiredQueryParam("uploadedBy", " u@x.com ")
	require.NoError(t, err)
	assert.Equal(t, "u@x.com", got)

	_, err = RequiredQueryParam("uploadedBy", "")
	require.EqualError(t, err, "Missing required field: uploadedBy")

	_, err = RequiredQueryParam("fileId", "   ")
	require.EqualError(t, err, "fileId cannot be empty")
}
