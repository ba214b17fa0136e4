package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	c := NoopConvertHooks{}
	c.OnLoadStart(ctx, "sbom.spdx.json", 1024)
	c.OnLoadComplete(ctx, "json", 3, time.Millisecond, nil)
	c.OnRenderStart(ctx, "mermaid", 3)
	c.OnRenderComplete(ctx, "mermaid", 512, time.Millisecond, nil)

	k := NoopCacheHooks{}
	k.OnCacheHit(ctx, "model")
	k.OnCacheMiss(ctx, "artifact")
	k.OnCacheSet(ctx, "artifact", 512)

	s := NoopServerHooks{}
	s.OnRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Convert().(NoopConvertHooks); !ok {
		t.Error("Convert() should return NoopConvertHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	convert := &testConvertHooks{}
	SetConvertHooks(convert)
	if Convert() != convert {
		t.Error("SetConvertHooks should set custom hooks")
	}

	cache := &testCacheHooks{}
	SetCacheHooks(cache)
	if Cache() != cache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	server := &testServerHooks{}
	SetServerHooks(server)
	if Server() != server {
		t.Error("SetServerHooks should set custom hooks")
	}

	Reset()
	if _, ok := Convert().(NoopConvertHooks); !ok {
		t.Error("Reset() should restore NoopConvertHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testConvertHooks{}
	SetConvertHooks(custom)
	SetConvertHooks(nil)
	SetCacheHooks(nil)
	SetServerHooks(nil)

	if Convert() != custom {
		t.Error("SetConvertHooks(nil) should be ignored")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("SetCacheHooks(nil) should be ignored")
	}
}

type testConvertHooks struct{ NoopConvertHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
