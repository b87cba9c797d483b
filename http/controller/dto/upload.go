package dto

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ValidationError carries a message safe to echo back to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(message string) *ValidationError {
	return &ValidationError{Message: message}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	base64Re     = regexp.MustCompile(`^([A-Za-z0-9+/]{4})*([A-Za-z0-9+/]{2}==|[A-Za-z0-9+/]{3}=)?$`)
)

// UploadRequest is the validated, normalized write command.
type UploadRequest struct {
	FileName          string
	UploadedBy        string
	FileContent       string // sanitized base64, inline uploads only
	ContentType       string
	ExpirationSeconds int
	Multipart         bool
}

// ParseUploadRequest turns a raw request body into an UploadRequest. The
// body may arrive base64-wrapped by the transport; base64Encoded signals
// that. defaultExpiration fills in an absent expirationSeconds.
func ParseUploadRequest(body []byte, base64Encoded, multipart bool, defaultExpiration int) (*UploadRequest, error) {
	if len(body) == 0 {
		return nil, invalid("Missing request body")
	}

	if base64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(body)))
		if err != nil {
			return nil, invalid("Unable to decode base64-encoded body")
		}
		body = decoded
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, invalid("Request body must be valid JSON")
	}

	fileName, err := requireString(payload, "fileName")
	if err != nil {
		return nil, err
	}
	uploadedBy, err := requireString(payload, "uploadedBy")
	if err != nil {
		return nil, err
	}

	req := &UploadRequest{
		FileName:    fileName,
		UploadedBy:  uploadedBy,
		ContentType: normalizeContentType(payload["contentType"]),
		Multipart:   multipart,
	}

	if !multipart {
		content, err := normalizeBase64(payload["fileContent"])
		if err != nil {
			return nil, err
		}
		req.FileContent = content
	}

	seconds, err := parseExpiration(payload["expirationSeconds"], defaultExpiration)
	if err != nil {
		return nil, err
	}
	req.ExpirationSeconds = seconds

	return req, nil
}

// RequiredQueryParam validates a query-string field the same way body
// fields are: present and non-empty after trimming.
func RequiredQueryParam(name, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if value == "" {
		return "", invalid("Missing required field: " + name)
	}
	if trimmed == "" {
		return "", invalid(name + " cannot be empty")
	}
	return trimmed, nil
}

func requireString(payload map[string]interface{}, field string) (string, error) {
	raw, ok := payload[field]
	if !ok {
		return "", invalid("Missing required field: " + field)
	}
	value, ok := raw.(string)
	if !ok {
		return "", invalid("Missing required field: " + field)
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", invalid(field + " cannot be empty")
	}
	return trimmed, nil
}

// normalizeBase64 strips whitespace and checks the canonical base64
// alphabet: groups of four, optional "="/"==" padding.
func normalizeBase64(raw interface{}) (string, error) {
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", invalid("fileContent must be a non-empty base64 string")
	}

	sanitized := whitespaceRe.ReplaceAllString(value, "")
	if sanitized == "" || !base64Re.MatchString(sanitized) {
		return "", invalid("fileContent must be valid base64")
	}

	return sanitized, nil
}

func parseExpiration(raw interface{}, defaultExpiration int) (int, error) {
	if raw == nil {
		return defaultExpiration, nil
	}

	var parsed float64
	switch v := raw.(type) {
	case float64:
		parsed = v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, invalid("expirationSeconds must be an integer")
		}
		parsed = f
	default:
		return 0, invalid("expirationSeconds must be an integer")
	}

	if math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed != math.Trunc(parsed) {
		return 0, invalid("expirationSeconds must be an integer")
	}
	if parsed <= 0 {
		return 0, invalid("expirationSeconds must be a positive integer")
	}

	return int(parsed), nil
}

func normalizeContentType(raw interface{}) string {
	if value, ok := raw.(string); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return "application/octet-stream"
}
