package ingest

import (
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/trackstore/trackstore/internal/errors"
)

const (
	// maxIDListLength is the maximum length of a comma-separated ID list.
	maxIDListLength = 200

	// mpegMIMEType is the only payload type accepted for upload.
	mpegMIMEType = "audio/mpeg"
)

// validateAudioPayload checks that the payload is non-empty MP3 data by
// sniffing its leading bytes. Declared content types are not trusted.
func validateAudioPayload(data []byte) error {
	if len(data) == 0 {
		return apperrors.InvalidInput("payload is empty")
	}
	if !mimetype.Detect(data).Is(mpegMIMEType) {
		return apperrors.InvalidInput("payload is not %s data", mpegMIMEType)
	}
	return nil
}

// parseID parses a decimal resource or song ID. IDs are positive integers;
// anything else is invalid input.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput("invalid ID %q: must be a positive integer", raw).
			WithDetail("id", "must be a positive integer")
	}
	return id, nil
}

// parseIDList parses a comma-separated list of IDs. The whole list is
// rejected when it exceeds the length limit or when any element fails to
// parse; no partial interpretation happens.
func parseIDList(csv string) ([]int64, error) {
	if len(csv) >= maxIDListLength {
		return nil, apperrors.InvalidInput(
			"ID list is %d characters long: must be shorter than %d", len(csv), maxIDListLength).
			WithDetail("id", "list too long")
	}
	if csv == "" {
		return nil, apperrors.InvalidInput("ID list is empty")
	}

	parts := strings.Split(csv, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := parseID(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
