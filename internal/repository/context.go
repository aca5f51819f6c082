package repository

import "context"

type stackKey struct{}

// push returns a child context whose stack is ctx's stack plus repo.
func push(ctx context.Context, repo *Repository) context.Context {
	parent := Stack(ctx)
	stack := make([]*Repository, len(parent), len(parent)+1)
	copy(stack, parent)
	return context.WithValue(ctx, stackKey{}, append(stack, repo))
}

// Stack returns the repositories pushed on ctx, bottom first.
func Stack(ctx context.Context) []*Repository {
	stack, _ := ctx.Value(stackKey{}).([]*Repository)
	return stack
}

// Current returns the top of ctx's stack.
func Current(ctx context.Context) (*Repository, bool) {
	stack := Stack(ctx)
	if len(stack) == 0 {
		return nil, false
	}
	return stack[len(stack)-1], true
}
