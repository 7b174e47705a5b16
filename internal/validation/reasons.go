package validation

// Reason is the closed set of rejection reasons a Verdict can carry. Callers
// can switch over these exhaustively; no other values are ever produced.
type Reason string

const (
	ReasonFilenameInvalid     Reason = "filename_invalid"
	ReasonSizeExceeded        Reason = "size_exceeded"
	ReasonEmpty               Reason = "empty_file"
	ReasonSignatureMismatch   Reason = "signature_mismatch"
	ReasonStructureInvalid    Reason = "structure_invalid"
	ReasonPasswordRequired    Reason = "password_required"
	ReasonPasswordIncorrect   Reason = "password_incorrect"
	ReasonPageLimitExceeded   Reason = "page_limit_exceeded"
	ReasonObjectLimitExceeded Reason = "object_limit_exceeded"
	ReasonMaliciousContent    Reason = "malicious_content"
	ReasonInternal            Reason = "internal_error"
)

// rejection is the internal short-circuit signal for one failed check.
type rejection struct {
	Reason  Reason
	Detail  string
	Pattern string
}

func (r *rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return string(r.Reason) + ": " + r.Detail
}

func reject(reason Reason, detail string) *rejection {
	return &rejection{Reason: reason, Detail: detail}
}
