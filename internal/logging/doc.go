// Package logging provides structured logging for the mcpfed CLI using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels, and helpers for testing. All loggers are based on the standard
// library's [log/slog] package.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("starting", "version", "1.0.0")
//
// # Verbosity
//
// [LevelFromVerbosity] maps the CLI's -v count onto levels: none logs
// warnings, -v adds Info, -vv Debug, and -vvv [LevelTrace].
//
// # Context
//
// Long-running operations take their logger from the context:
//
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Debug("reading config", "path", path)
//
// # Redaction
//
// Every logger from [New] masks attribute values whose key looks like a
// secret or whose value starts with a known token prefix; see [RedactAttr].
// Catalog placeholders such as YOUR_BRAVE_API_KEY are shown as-is. [MaskEnv]
// applies the same rules to launch spec environment maps.
//
// # Log File
//
// Setting [Config.File] adds a JSON copy of every record at Debug or above,
// independent of the terminal level.
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
//
// # Quiet Mode
//
// Use [NewDiscard] when log output should be suppressed entirely:
//
//	logger := logging.NewDiscard()
package logging
