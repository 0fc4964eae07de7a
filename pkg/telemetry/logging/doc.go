// Package logging builds the process slog.Logger and carries decision
// fields through context.Context.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Redact: true,
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
// The engine stores the decision ID, task type and strategy name in the
// context it hands to strategies. Any *Context log call made through a
// logger from this package picks them up:
//
//	func quote(ctx context.Context, task strategy.Task, shared any) (any, error) {
//	    slog.InfoContext(ctx, "querying upstream")  // includes decision_id, task_type, strategy
//	    ...
//	}
//
// # Redaction
//
// With Redact enabled, values under sensitive keys (api_key, token,
// password, ...) are masked and string values are scrubbed for API keys,
// bearer tokens and email addresses. Strategies often log upstream URLs
// and errors that embed credentials.
package logging
