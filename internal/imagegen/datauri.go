package imagegen

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DataURI encodes data as a base64 data URI using its sniffed content type.
func DataURI(data []byte) string {
	return "data:" + mimetype.Detect(data).String() + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI decodes the payload of a data URI: the text after the first
// comma. A string without a comma is treated as bare base64.
func ParseDataURI(s string) ([]byte, error) {
	payload := s
	if _, after, ok := strings.Cut(s, ","); ok {
		payload = after
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Unpadded payloads are common in hand-edited state.
		var rawErr error
		if data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
		}
	}
	return data, nil
}
