package media

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes are inspected when the declared
// content type cannot be trusted.
const sniffLen = 3072

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/gif":       {},
	"video/mp4":       {},
	"video/quicktime": {},
}

// AllowedMimeTypes lists the accepted upload types in display order.
var AllowedMimeTypes = []string{"image/jpeg", "image/png", "image/gif", "video/mp4", "video/quicktime"}

func isAllowedMime(mimeType string) bool {
	_, ok := allowedMimeTypes[mimeType]
	return ok
}

// resolveMimeType picks the effective MIME type for an upload. The declared
// part type wins unless it is empty or generic, in which case head is sniffed.
func resolveMimeType(declared string, head []byte) string {
	if clean := normalizeMime(declared); clean != "" && clean != "application/octet-stream" {
		return clean
	}
	if len(head) == 0 {
		return ""
	}
	return normalizeMime(mimetype.Detect(head).String())
}

func normalizeMime(value string) string {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}
