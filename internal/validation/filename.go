package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

const maxFilenameLength = 255

// Characters that have no business in an uploaded document name. NUL and the
// rest of the control range are handled separately.
const disallowedFilenameChars = `<>:"|?*`

// checkFilename validates the untrusted declared filename. It is content
// independent and runs before any byte of the payload is inspected.
func checkFilename(name string) *rejection {
	if name == "" {
		return reject(ReasonFilenameInvalid, "filename cannot be empty")
	}
	if len(name) > maxFilenameLength {
		return reject(ReasonFilenameInvalid, fmt.Sprintf("filename too long (max %d characters)", maxFilenameLength))
	}
	if strings.ToLower(filepath.Ext(name)) != ".pdf" {
		return reject(ReasonFilenameInvalid, "only PDF files are allowed")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return reject(ReasonFilenameInvalid, "path traversal detected in filename")
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return reject(ReasonFilenameInvalid, "filename contains control characters")
		}
	}
	if strings.ContainsAny(name, disallowedFilenameChars) {
		return reject(ReasonFilenameInvalid, "filename contains invalid characters")
	}
	return nil
}
