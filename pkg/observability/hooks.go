// Package observability provides lifecycle hooks for plugins and
// instrumentation.
//
// The graph model notifies hooks at three points:
//   - after a container's canvas is opened
//   - before a container's canvas is saved
//   - before a project export is serialized
//
// Hooks receive the token being produced or consumed and may annotate it,
// typically by writing their own entry into its plugin map. Store backends
// additionally report their operations through [StoreHooks].
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Let the owner of a project or store inject an implementation
//
// There is no global registry: a project is constructed with the hooks it
// should call, so two projects in one process never see each other's
// plugins.
//
// # Usage
//
//	hooks := observability.Multi(observability.LogHooks(logger), myPlugin)
//	p := project.New("game", project.WithHooks(hooks))
package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/behave/pkg/token"
)

// =============================================================================
// Lifecycle Hooks
// =============================================================================

// LifecycleHooks receives container and project lifecycle events.
type LifecycleHooks interface {
	// OnOpened is called after a container's canvas has been rebuilt from
	// tok. Plugins read their saved state from tok.Plugins.
	OnOpened(ctx context.Context, containerID string, tok *token.CanvasToken)

	// OnSaving is called with the freshly built token before it is
	// persisted. Plugins may add entries to tok.Plugins.
	OnSaving(ctx context.Context, containerID string, tok *token.CanvasToken)

	// OnExporting is called before a project export is returned. Returning
	// an error aborts the export.
	OnExporting(ctx context.Context, exp *token.Export) error
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from store backends.
type StoreHooks interface {
	// OnLoad records a read of key.
	OnLoad(ctx context.Context, backend, key string, found bool, duration time.Duration, err error)

	// OnSave records a write of size bytes to key.
	OnSave(ctx context.Context, backend, key string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLifecycleHooks is a no-op implementation of LifecycleHooks.
type NoopLifecycleHooks struct{}

func (NoopLifecycleHooks) OnOpened(context.Context, string, *token.CanvasToken) {}
func (NoopLifecycleHooks) OnSaving(context.Context, string, *token.CanvasToken) {}
func (NoopLifecycleHooks) OnExporting(context.Context, *token.Export) error     { return nil }

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, bool, time.Duration, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error)  {}

// =============================================================================
// Composition
// =============================================================================

type multi []LifecycleHooks

// Multi fans events out to every non-nil hook in order. OnExporting stops
// at the first error.
func Multi(hooks ...LifecycleHooks) LifecycleHooks {
	var m multi
	for _, h := range hooks {
		if h != nil {
			m = append(m, h)
		}
	}
	return m
}

func (m multi) OnOpened(ctx context.Context, id string, tok *token.CanvasToken) {
	for _, h := range m {
		h.OnOpened(ctx, id, tok)
	}
}

func (m multi) OnSaving(ctx context.Context, id string, tok *token.CanvasToken) {
	for _, h := range m {
		h.OnSaving(ctx, id, tok)
	}
}

func (m multi) OnExporting(ctx context.Context, exp *token.Export) error {
	for _, h := range m {
		if err := h.OnExporting(ctx, exp); err != nil {
			return err
		}
	}
	return nil
}

// OrNoop returns h, or a no-op implementation when h is nil.
func OrNoop(h LifecycleHooks) LifecycleHooks {
	if h == nil {
		return NoopLifecycleHooks{}
	}
	return h
}

// =============================================================================
// Logging
// =============================================================================

type logHooks struct{ logger *log.Logger }

// LogHooks returns hooks that log every event at debug level.
func LogHooks(logger *log.Logger) interface {
	LifecycleHooks
	StoreHooks
} {
	if logger == nil {
		logger = log.Default()
	}
	return logHooks{logger: logger}
}

func (l logHooks) OnOpened(_ context.Context, id string, tok *token.CanvasToken) {
	l.logger.Debug("container opened", "container", id, "items", len(tok.Items))
}

func (l logHooks) OnSaving(_ context.Context, id string, tok *token.CanvasToken) {
	l.logger.Debug("container saving", "container", id, "items", len(tok.Items))
}

func (l logHooks) OnExporting(_ context.Context, exp *token.Export) error {
	l.logger.Debug("project exporting", "project", exp.Name, "containers", len(exp.Containers), "assets", len(exp.Assets))
	return nil
}

func (l logHooks) OnLoad(_ context.Context, backend, key string, found bool, d time.Duration, err error) {
	l.logger.Debug("store load", "backend", backend, "key", key, "found", found, "took", d, "err", err)
}

func (l logHooks) OnSave(_ context.Context, backend, key string, size int, d time.Duration, err error) {
	l.logger.Debug("store save", "backend", backend, "key", key, "size", size, "took", d, "err", err)
}
