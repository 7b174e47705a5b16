package validation

import "bytes"

type pattern struct {
	name string
	b    []byte // lowercase form, matched against lowercased content
}

// Constructs whose presence makes a PDF unconditionally unacceptable: they can
// reach outside the document (launch programs, run script, exfiltrate data).
var hardBlockPatterns = []pattern{
	{"/Launch", []byte("/launch")},
	{"<script", []byte("<script")},
	{"javascript:", []byte("javascript:")},
	{"/SubmitForm", []byte("/submitform")},
	{"/ImportData", []byte("/importdata")},
}

// Constructs that appear in plenty of legitimate PDFs (interactive forms,
// bookmarks, attachments). Recorded for audit, never blocking.
var watchlistPatterns = []pattern{
	{"/JavaScript", []byte("/javascript")},
	{"/JS", []byte("/js")},
	{"/OpenAction", []byte("/openaction")},
	{"/AA", []byte("/aa")},
	{"/EmbeddedFile", []byte("/embeddedfile")},
	{"/XFA", []byte("/xfa")},
	{"/URI", []byte("/uri")},
}

// scanPatterns searches the raw byte buffer case-insensitively. It returns the
// soft-watchlist markers that were found, and a rejection if any hard-block
// pattern is present.
func scanPatterns(data []byte) ([]string, *rejection) {
	lowered := bytes.ToLower(data)

	for _, p := range hardBlockPatterns {
		if bytes.Contains(lowered, p.b) {
			rej := reject(ReasonMaliciousContent, "potentially dangerous content detected: "+p.name)
			rej.Pattern = p.name
			return nil, rej
		}
	}

	var suspicious []string
	for _, p := range watchlistPatterns {
		if bytes.Contains(lowered, p.b) {
			suspicious = append(suspicious, p.name)
		}
	}
	return suspicious, nil
}
