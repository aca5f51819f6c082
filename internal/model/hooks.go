package model

import (
	"context"
)

// LifecycleHooks are the callbacks a host framework runs after it
// persists or deletes a record.
type LifecycleHooks[T any] struct {
	AfterSave    func(ctx context.Context, record T) error
	AfterDestroy func(ctx context.Context, record T) error
}

// Hooks returns the model's save and destroy callbacks.
func (m *Model[T]) Hooks() LifecycleHooks[T] {
	return LifecycleHooks[T]{
		AfterSave:    m.OnSave,
		AfterDestroy: m.OnDestroy,
	}
}

// OnSave indexes record. It does nothing while the model is disabled, when
// auto save is off, or when the configuration's condition rejects record.
func (m *Model[T]) OnSave(ctx context.Context, record T) error {
	if m.Disabled() || !m.cfg.AutoSave {
		return nil
	}
	if m.cfg.Condition != nil && !m.cfg.Condition(record) {
		return nil
	}
	a, err := m.Adapter(ctx)
	if err != nil {
		return err
	}
	return a.IndexSave(ctx, m, record)
}

// OnDestroy removes record from the index unless auto save is off.
func (m *Model[T]) OnDestroy(ctx context.Context, record T) error {
	if !m.cfg.AutoSave {
		return nil
	}
	a, err := m.Adapter(ctx)
	if err != nil {
		return err
	}
	return a.IndexDestroy(ctx, m, record)
}
