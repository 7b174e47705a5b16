// Package validationtest builds well-formed minimal PDF payloads in memory so
// tests do not depend on binary testdata. Offsets in the cross-reference table
// are computed while the file is assembled, which keeps generated documents
// parseable regardless of how many pages or extra bytes a test asks for.
package validationtest

import (
	"bytes"
	"fmt"
	"strings"
)

// Options controls the generated document.
type Options struct {
	// Pages is the page count; 0 means 1.
	Pages int

	// Extra is appended inside the body as a comment line, after the last
	// object and before the cross-reference table. Tests use it to plant
	// byte patterns or to pad the payload to a target size.
	Extra []byte

	// ObjectCount overrides the trailer /Size entry when non-zero. Tests use
	// it to simulate object-table bombs without emitting real objects.
	ObjectCount int64

	// Encrypted adds a Standard security handler /Encrypt dictionary whose
	// /U entry matches no password, so every open attempt is rejected as an
	// invalid password. That is exactly the shape needed to exercise the
	// password-required and password-incorrect classification paths.
	Encrypted bool
}

// Build assembles a PDF according to opts.
func Build(opts Options) []byte {
	pages := opts.Pages
	if pages <= 0 {
		pages = 1
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, 0, pages+3)
	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		num := len(offsets)
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, pages)
	for i := 0; i < pages; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	writeObj(fmt.Sprintf("<< /Type /Pages /Count %d /Kids [%s] >>", pages, strings.Join(kids, " ")))

	for i := 0; i < pages; i++ {
		writeObj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	encryptRef := ""
	if opts.Encrypted {
		// /O and /U must be 32-byte strings; hex strings keep the fixture
		// printable. The values are arbitrary, so no password can match.
		filler := strings.Repeat("41", 32)
		writeObj("<< /Filter /Standard /V 2 /R 3 /Length 128" +
			" /O <" + filler + "> /U <" + filler + "> /P -44 >>")
		encryptRef = fmt.Sprintf(" /Encrypt %d 0 R /ID [<00112233445566778899aabbccddeeff> <00112233445566778899aabbccddeeff>]", len(offsets))
	}

	if len(opts.Extra) > 0 {
		buf.WriteString("% ")
		buf.Write(opts.Extra)
		buf.WriteString("\n")
	}

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	size := int64(len(offsets) + 1)
	if opts.ObjectCount > 0 {
		size = opts.ObjectCount
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\n", size, encryptRef)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xrefPos)

	return buf.Bytes()
}

// Minimal returns a clean single-page document.
func Minimal() []byte {
	return Build(Options{})
}

// WithPattern returns a single-page document carrying the given byte pattern
// in its body.
func WithPattern(pattern string) []byte {
	return Build(Options{Extra: []byte(pattern)})
}

// Broken returns a payload that carries the PDF signature but no parseable
// cross-reference table.
func Broken() []byte {
	return []byte("%PDF-1.4\nthis is not a well formed document\n%%EOF")
}
