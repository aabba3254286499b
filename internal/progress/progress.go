// Package progress carries an optional status callback through a context
// so long-running operations can narrate what they are doing without
// depending on any particular UI.
package progress

import "context"

// Func is a callback for reporting progress messages.
type Func func(msg string)

type key struct{}

// With returns a context carrying the given progress callback.
func With(ctx context.Context, fn Func) context.Context {
	return context.WithValue(ctx, key{}, fn)
}

// Report calls the progress callback in ctx, if any.
// Safe to call when no callback is set (e.g. MCP mode); it simply returns.
func Report(ctx context.Context, msg string) {
	if fn, ok := ctx.Value(key{}).(Func); ok && fn != nil {
		fn(msg)
	}
}
