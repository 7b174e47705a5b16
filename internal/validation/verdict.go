package validation

// Verdict is the single, immutable outcome of one validation call. It is
// produced exactly once per upload attempt and consumed once by the caller to
// decide persistence.
type Verdict struct {
	Accepted          bool
	ContentHash       string
	PasswordProtected bool
	MimeType          string

	// Rejection fields; zero-valued when Accepted is true.
	Reason  Reason
	Detail  string
	Pattern string

	// Suspicious lists soft-watchlist markers found in the content. They are
	// recorded for audit and never cause rejection.
	Suspicious []string
}

func rejected(rej *rejection) Verdict {
	return Verdict{
		Reason:  rej.Reason,
		Detail:  rej.Detail,
		Pattern: rej.Pattern,
	}
}
