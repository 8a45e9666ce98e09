package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, "grid_rect", 42)
	p.OnBuildComplete(ctx, "grid_rect", 17, time.Millisecond, nil)
	p.OnExportStart(ctx, "export:1234")
	p.OnExportComplete(ctx, "export:1234", 2048, time.Millisecond, errors.New("closed"))

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "build")
	c.OnCacheMiss(ctx, "build")
	c.OnCacheSet(ctx, "build", 1024)

	s := NoopServerHooks{}
	s.OnRequest(ctx, "POST", "/build")
	s.OnResponse(ctx, "POST", "/build", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	pipeline := &countingPipeline{}
	SetPipelineHooks(pipeline)
	if Pipeline() != pipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}
	Pipeline().OnBuildStart(context.Background(), "empty", 1)
	if pipeline.starts != 1 {
		t.Errorf("custom hook received %d starts, want 1", pipeline.starts)
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
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &countingPipeline{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)
	SetCacheHooks(nil)
	SetServerHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("SetCacheHooks(nil) should be ignored")
	}
}

type countingPipeline struct {
	NoopPipelineHooks
	starts int
}

func (c *countingPipeline) OnBuildStart(context.Context, string, int64) { c.starts++ }

type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
