package auditlog

import (
	"context"
	"strings"
	"time"
)

// Record writes a best-effort audit entry for a finished command. Errors
// opening the repository or saving the entry are discarded: auditing must
// never change a command's outcome.
func Record(ctx context.Context, open func() (Repository, error), command string, args []string, err error, start time.Time) {
	repo, openErr := open()
	if openErr != nil {
		return
	}
	defer repo.Close()

	_ = repo.Save(NewEntry(ctx, command, args, err, start))
}

// NewEntry builds the entry Record would save.
func NewEntry(ctx context.Context, command string, args []string, err error, start time.Time) *AuditEntry {
	meta := MetadataFromContext(ctx)
	entry := &AuditEntry{
		Timestamp:  start,
		Command:    command,
		Args:       strings.Join(SanitizeArgs(args), " "),
		Backend:    meta.Backend,
		Subject:    meta.Subject,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Outcome = OutcomeError
		entry.Detail = err.Error()
	} else {
		entry.Outcome = OutcomeSuccess
	}
	return entry
}

// OpenDefault opens the repository at the default path. It matches the
// open parameter of Record.
func OpenDefault() (Repository, error) {
	return Open()
}
