// Package observability lets the binary attach instrumentation to the
// conversion pipeline, the cache and the HTTP server without making the
// libraries depend on a metrics or tracing backend.
//
// Hooks are registered once at startup and default to no-ops:
//
//	observability.SetConvertHooks(loggingHooks{logger})
//
// Libraries emit events through the accessors:
//
//	observability.Convert().OnLoadStart(ctx, hint, len(data))
//	m, f, err := spdx.Load(data, hint)
//	observability.Convert().OnLoadComplete(ctx, string(f), m.NodeCount(), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Convert Hooks
// =============================================================================

// ConvertHooks receives events from document conversion.
type ConvertHooks interface {
	// Load events. format is empty when detection failed.
	OnLoadStart(ctx context.Context, hint string, size int)
	OnLoadComplete(ctx context.Context, format string, elements int, duration time.Duration, err error)

	// Render events.
	OnRenderStart(ctx context.Context, format string, elements int)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache lookups made by the pipeline.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP server.
type ServerHooks interface {
	// OnRequest records a completed request. route is the matched pattern.
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopConvertHooks is a no-op implementation of ConvertHooks.
type NoopConvertHooks struct{}

func (NoopConvertHooks) OnLoadStart(context.Context, string, int) {}
func (NoopConvertHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopConvertHooks) OnRenderStart(context.Context, string, int) {}
func (NoopConvertHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	convertHooks ConvertHooks = NoopConvertHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	serverHooks  ServerHooks  = NoopServerHooks{}
	hooksMu      sync.RWMutex
)

// SetConvertHooks registers conversion hooks. A nil h is ignored.
func SetConvertHooks(h ConvertHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		convertHooks = h
	}
}

// SetCacheHooks registers cache hooks. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers server hooks. A nil h is ignored.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Convert returns the registered conversion hooks.
func Convert() ConvertHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return convertHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores the no-op defaults. Used by tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	convertHooks = NoopConvertHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
