// Package imageenc converts between raw image bytes and the base64 data-URI
// form the wire contract uses ("data:image/jpeg;base64,...").
package imageenc

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// EncodeDataURI wraps encoded image bytes in a data URI with the given MIME
// type.
func EncodeDataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI extracts the image bytes from a data URI. A bare base64
// string without the "data:" header is accepted too, since some clients send
// the payload unprefixed.
func DecodeDataURI(uri string) ([]byte, error) {
	if uri == "" {
		return nil, errors.New("empty image payload")
	}
	payload := uri
	if strings.HasPrefix(uri, "data:") {
		_, rest, found := strings.Cut(uri, ",")
		if !found {
			return nil, errors.New("malformed data URI: missing comma separator")
		}
		payload = rest
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty image payload")
	}
	return data, nil
}
