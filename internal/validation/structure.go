package validation

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/telemetry"
)

// structureInfo is what a successful structural parse yields.
type structureInfo struct {
	Pages      int
	Encrypted  bool
	Suspicious []string
}

// checkStructure parses the PDF object graph within a wall-clock budget.
// Adversarial documents are an explicit threat here, so an exceeded budget is
// classified as a structural rejection (resource abuse), never a hang or crash.
func checkStructure(data []byte, password string, maxPages int, maxObjects int64, budget time.Duration) (structureInfo, *rejection) {
	type result struct {
		info structureInfo
		rej  *rejection
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{rej: reject(ReasonStructureInvalid, fmt.Sprintf("invalid PDF structure: %v", r))}
			}
		}()
		info, rej := parseStructure(data, password, maxPages, maxObjects)
		done <- result{info: info, rej: rej}
	}()

	select {
	case res := <-done:
		return res.info, res.rej
	case <-time.After(budget):
		// The parse goroutine is abandoned, not interrupted; validation has no
		// mid-flight cancellation contract.
		telemetry.Error("validation.structure.budget_exceeded", map[string]any{
			"budget_ms": budget.Milliseconds(),
			"size":      len(data),
		})
		return structureInfo{}, reject(ReasonStructureInvalid, "structural parse budget exceeded")
	}
}

func parseStructure(data []byte, password string, maxPages int, maxObjects int64) (structureInfo, *rejection) {
	var info structureInfo

	asked := false
	pw := func() string {
		if asked {
			return ""
		}
		asked = true
		return password
	}

	reader, err := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), pw)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			if password == "" {
				return info, reject(ReasonPasswordRequired, "password is required for this encrypted PDF")
			}
			return info, reject(ReasonPasswordIncorrect, "invalid password for encrypted PDF")
		}
		return info, reject(ReasonStructureInvalid, "invalid PDF structure: "+err.Error())
	}

	// asked means the reader needed a password; an /Encrypt entry means the
	// document is encrypted even when the empty user password opens it.
	info.Encrypted = asked || !reader.Trailer().Key("Encrypt").IsNull()

	info.Pages = reader.NumPage()
	if info.Pages > maxPages {
		return info, reject(ReasonPageLimitExceeded,
			fmt.Sprintf("PDF has too many pages (%d); maximum allowed: %d", info.Pages, maxPages))
	}

	// Trailer /Size is the object count; a crafted table can explode parser
	// memory. An unreadable trailer is a logged caveat, not a rejection.
	if size := reader.Trailer().Key("Size").Int64(); size > 0 {
		if size > maxObjects {
			return info, reject(ReasonObjectLimitExceeded,
				fmt.Sprintf("PDF has too many objects (%d); maximum allowed: %d", size, maxObjects))
		}
	} else {
		telemetry.Info("validation.structure.object_count_unreadable", map[string]any{
			"pages": info.Pages,
		})
	}

	return info, nil
}
