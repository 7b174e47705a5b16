// Package validation is the admission-control gate for uploaded PDFs. It
// decides, for one in-memory byte buffer at a time, whether the payload is
// structurally a PDF, free of known exploit-carrying constructs, within
// resource limits, and whether it is password protected, before anything is
// persisted or handed downstream.
package validation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ADRE9/financial-document-analyzer-fullstack/internal/shared/telemetry"
)

const (
	defaultMaxSizeBytes = 100 << 20
	defaultMaxPages     = 1000
	defaultMaxObjects   = 10000
	defaultParseBudget  = 30 * time.Second
)

// Options configures a Validator. The check order itself is fixed and not
// configurable; only the MIME/scan strictness and the limits are knobs.
type Options struct {
	// MaxSizeBytes bounds the accepted payload size. Default 100 MB.
	MaxSizeBytes int64

	// Strict enables the secondary MIME sniff. A mismatch is logged as a
	// warning, not rejected: legitimate PDF producers vary MIME reporting and
	// the signature check already gates non-PDFs.
	Strict bool

	// SkipChecks is a development-only escape hatch that bypasses everything
	// except the size bounds and hashing. It is loudly logged on every call.
	SkipChecks bool

	MaxPages    int
	MaxObjects  int64
	ParseBudget time.Duration
}

// Validator runs the ordered validation pipeline. All state is local to one
// Validate call; a single Validator is safe for concurrent use.
type Validator struct {
	opts Options
}

// New constructs a Validator, filling unset options with defaults.
func New(opts Options) *Validator {
	if opts.MaxSizeBytes <= 0 {
		opts.MaxSizeBytes = defaultMaxSizeBytes
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.MaxObjects <= 0 {
		opts.MaxObjects = defaultMaxObjects
	}
	if opts.ParseBudget <= 0 {
		opts.ParseBudget = defaultParseBudget
	}
	return &Validator{opts: opts}
}

// Validate runs every check in fixed order against the buffer and produces an
// atomic accept/reject verdict. It never partially validates: the first failed
// check short-circuits with its reason. No error or panic escapes
// unclassified; validator malfunction surfaces as ReasonInternal so callers
// can tell "bad file" from "broken validator".
func (v *Validator) Validate(ctx context.Context, data []byte, filename, password string) (verdict Verdict) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("validation.panic", map[string]any{
				"filename": filename,
				"panic":    fmt.Sprint(r),
			})
			verdict = rejected(reject(ReasonInternal, "validation failed due to internal error"))
		}
	}()

	if err := ctx.Err(); err != nil {
		return rejected(reject(ReasonInternal, "validation failed due to internal error: "+err.Error()))
	}

	if v.opts.SkipChecks {
		telemetry.Error("validation.skipped", map[string]any{
			"filename": filename,
			"size":     len(data),
			"warning":  "SKIP_FILE_VALIDATION is enabled; content checks bypassed",
		})
		if rej := v.checkSize(data); rej != nil {
			return rejected(rej)
		}
		return Verdict{Accepted: true, ContentHash: hashContent(data)}
	}

	// Checks 1-3 are pure and content independent; they must run before any
	// byte reaches the structural parser.
	if rej := checkFilename(filename); rej != nil {
		return rejected(rej)
	}
	if rej := v.checkSize(data); rej != nil {
		return rejected(rej)
	}
	if rej := checkSignature(data); rej != nil {
		return rejected(rej)
	}

	mimeType, mimeOK := sniffMime(data)
	if v.opts.Strict && !mimeOK {
		telemetry.Warn("validation.mime.mismatch", map[string]any{
			"filename": filename,
			"detected": mimeType,
		})
	}

	info, rej := checkStructure(data, password, v.opts.MaxPages, v.opts.MaxObjects, v.opts.ParseBudget)
	if rej != nil {
		return rejected(rej)
	}

	suspicious, rej := scanPatterns(data)
	if rej != nil {
		return rejected(rej)
	}
	if len(suspicious) > 0 {
		telemetry.Warn("validation.patterns.suspicious", map[string]any{
			"filename": filename,
			"patterns": suspicious,
		})
	}

	return Verdict{
		Accepted:          true,
		ContentHash:       hashContent(data),
		PasswordProtected: info.Encrypted,
		MimeType:          mimeType,
		Suspicious:        suspicious,
	}
}

func (v *Validator) checkSize(data []byte) *rejection {
	if len(data) == 0 {
		return reject(ReasonEmpty, "file is empty")
	}
	if int64(len(data)) > v.opts.MaxSizeBytes {
		return reject(ReasonSizeExceeded,
			fmt.Sprintf("file size exceeds %.1fMB limit", float64(v.opts.MaxSizeBytes)/(1<<20)))
	}
	return nil
}

// hashContent computes the deduplication digest. It is deterministic and
// content-only: two byte-identical uploads hash the same regardless of name.
func hashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
