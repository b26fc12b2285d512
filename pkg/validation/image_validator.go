package validation

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	apperrors "go-xai-analyzer/internal/errors"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxImageSize is the largest decoded image payload accepted
const DefaultMaxImageSize = 5 * 1024 * 1024

// ImageValidator handles image reference validation logic. References are either
// base64 data URLs or http(s) URLs; URLs are checked but never fetched.
type ImageValidator struct {
	allowedSchemes []string
	allowedHosts   []string
	maxSize        int64
}

// NewImageValidator creates a new image validator with default settings
func NewImageValidator() *ImageValidator {
	return &ImageValidator{
		allowedSchemes: []string{"http", "https"},
		allowedHosts:   []string{}, // empty means all hosts allowed
		maxSize:        DefaultMaxImageSize,
	}
}

// NewImageValidatorWithOptions creates an image validator with custom options
func NewImageValidatorWithOptions(schemes []string, hosts []string, maxSize int64) *ImageValidator {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &ImageValidator{
		allowedSchemes: schemes,
		allowedHosts:   hosts,
		maxSize:        maxSize,
	}
}

// ValidateImageReference validates a data URL or remote image URL
func (v *ImageValidator) ValidateImageReference(ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return apperrors.NewValidationError("Image reference cannot be empty", nil)
	}

	if strings.HasPrefix(strings.ToLower(ref), "data:") {
		_, err := v.DecodeDataURL(ref)
		return err
	}
	return v.validateURL(ref)
}

// DecodeDataURL decodes a base64 data URL and checks that the payload is an
// image no larger than the configured limit.
func (v *ImageValidator) DecodeDataURL(ref string) ([]byte, error) {
	header, payload, ok := strings.Cut(ref, ",")
	if !ok {
		return nil, apperrors.NewValidationError("Malformed data URL", nil)
	}

	meta := strings.TrimPrefix(strings.ToLower(header), "data:")
	params := strings.Split(meta, ";")
	if params[len(params)-1] != "base64" {
		return nil, apperrors.NewValidationError("Data URL must be base64 encoded", nil)
	}
	declared := params[0]
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return nil, apperrors.NewValidationError("Please select a valid image file", nil).
			WithDetails(fmt.Sprintf("declared media type %q", declared))
	}

	// Reject before decoding when the encoded length already exceeds the limit
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > v.maxSize+2 {
		return nil, v.tooLarge()
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid base64 image payload", err)
	}
	if int64(len(data)) > v.maxSize {
		return nil, v.tooLarge()
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return nil, apperrors.NewValidationError("Please select a valid image file", nil).
			WithDetails(fmt.Sprintf("detected media type %q", detected.String()))
	}
	return data, nil
}

func (v *ImageValidator) tooLarge() error {
	return apperrors.NewValidationError(
		fmt.Sprintf("Image size must be less than %dMB", v.maxSize/(1024*1024)), nil)
}

func (v *ImageValidator) validateURL(imageURL string) error {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Host == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if !v.isHostAllowed(parsedURL.Host) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	return nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *ImageValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *ImageValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
