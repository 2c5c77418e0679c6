package imageenc

import (
	"bytes"
	"strings"
	"testing"
)

func TestDataURIRoundTrip(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	uri := EncodeDataURI("image/jpeg", payload)

	if !strings.HasPrefix(uri, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected prefix: %s", uri)
	}

	decoded, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Fatalf("round trip mismatch: %v != %v", decoded, payload)
	}
}

func TestDecodeBareBase64(t *testing.T) {
	decoded, err := DecodeDataURI("aGVsbG8=")
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(decoded) != "hello" {
		t.Fatalf("unexpected payload: %q", decoded)
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	for _, uri := range []string{"", "data:image/jpeg;base64", "data:image/png;base64,!!!"} {
		if _, err := DecodeDataURI(uri); err == nil {
			t.Errorf("expected error for %q", uri)
		}
	}
}
