package validation

import "github.com/gabriel-vasile/mimetype"

// MIME types legitimate PDF producers are known to report. Anything outside
// this list is only a warning signal, never a rejection on its own: the
// signature check has already established the payload as a PDF.
var allowedMimeTypes = []string{
	"application/pdf",
	"application/x-pdf",
	"application/x-bzpdf",
	"application/x-gzpdf",
	"application/acrobat",
	"applications/vnd.pdf",
	"text/pdf",
	"text/x-pdf",
}

// sniffMime classifies the content bytes and reports whether the detected
// type is in the accepted PDF family.
func sniffMime(data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	for _, allowed := range allowedMimeTypes {
		if detected.Is(allowed) {
			return detected.String(), true
		}
	}
	return detected.String(), false
}
