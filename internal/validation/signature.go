package validation

import "bytes"

// Recognized PDF magic prefixes. The byte stream must start with one of these
// regardless of what the filename or any declared content type claims.
var pdfMagicPrefixes = [][]byte{
	[]byte("%PDF-1."),
	[]byte("%PDF-2."),
}

func checkSignature(data []byte) *rejection {
	for _, prefix := range pdfMagicPrefixes {
		if bytes.HasPrefix(data, prefix) {
			return nil
		}
	}
	return reject(ReasonSignatureMismatch, "invalid PDF file signature; file is not a PDF")
}
