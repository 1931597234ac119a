package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

var dataURIPrefix = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)

// DecodeImage validates a base64 image (bare or as a data URI) and returns
// it as a normalized data URI.
func DecodeImage(encoded string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return "", errors.New("empty image")
	}
	payload := dataURIPrefix.ReplaceAllString(encoded, "")

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return "", fmt.Errorf("invalid base64 image: %w", err)
		}
	}
	return imageDataURI(raw)
}

func imageDataURI(raw []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("unsupported image: %w", err)
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

// decodeSignature turns a stored signature into layout input. Decoding
// failures are kept as an invalid signature rather than an error.
func decodeSignature(applicant int, encoded string, signedAt time.Time) SignatureInput {
	sig := SignatureInput{Applicant: applicant, SignedAt: signedAt}
	if strings.TrimSpace(encoded) == "" {
		return sig
	}
	uri, err := DecodeImage(encoded)
	if err != nil {
		sig.Invalid = true
		return sig
	}
	sig.Image = uri
	return sig
}

// LoadLogo reads an image file as a data URI.
func LoadLogo(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read logo: %w", err)
	}
	if ct := http.DetectContentType(raw); !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("logo is not an image (%s)", ct)
	}
	return imageDataURI(raw)
}
