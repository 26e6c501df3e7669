// Package executor defines the boundary to the provisioning operation. The
// retrier treats execution as a black box with exactly two outcomes; error
// content is logged and audited but never inspected for routing.
package executor

import "context"

// Executor performs one provisioning attempt from the payload snapshot.
// A nil return is success; any error is a failure that consumes an attempt.
// Implementations must honor ctx so a hung downstream call cannot stall a
// whole batch.
type Executor interface {
	Execute(ctx context.Context, payload []byte) error
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, payload []byte) error

func (f ExecutorFunc) Execute(ctx context.Context, payload []byte) error {
	return f(ctx, payload)
}
