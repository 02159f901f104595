// Package errors provides error handling conventions for the mcpfed CLI.
//
// It re-exports the github.com/cockroachdb/errors API used across the module
// and defines the error taxonomy of install and uninstall operations:
//
//   - [ErrNotFound]: expected absence, treated as empty state
//   - [ErrCorrupt]: unparseable persisted bytes, fatal before any write
//   - [ErrIO]: filesystem failure other than absence
//   - [ErrWriteFailed]: a write did not complete; the manifest is not updated
//
// Failures are marked with a kind using [Mark] so the original cause and
// path survive while [Is] still classifies them:
//
//	if errors.Is(err, errors.ErrCorrupt) {
//	    var ce *errors.CorruptError
//	    if errors.As(err, &ce) {
//	        fmt.Println("offending file:", ce.Path)
//	    }
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully, including no-op runs
//   - ExitUser (1): Corrupt input or invalid configuration
//   - ExitSystem (2): I/O or write failures
//
// [Classify] maps an operation error to an [ExitError] carrying one of these
// codes and a suggestion for the user.
package errors
