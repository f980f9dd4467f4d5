// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// Instrument a store with tracing spans and debug logs.
//
// A nil tracer stands for the global tracer, which is a no-op unless some tracer has been registered.
func Instrument(tr opentracing.Tracer, l *zap.Logger, store Store) Store {
	if tr == nil {
		tr = opentracing.GlobalTracer()
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &instrumentedStore{
		tr:    tr,
		store: store,
		l:     l.With(zap.String("store", store.String())),
	}
}

type instrumentedStore struct {
	store Store
	tr    opentracing.Tracer
	l     *zap.Logger
}

func (i *instrumentedStore) opName(name string) string {
	return strings.Join([]string{"storage", i.String(), name}, ".")
}

func (i *instrumentedStore) startSpan(ctx context.Context, name string) (opentracing.Span, context.Context) {
	var span opentracing.Span
	if parent := opentracing.SpanFromContext(ctx); parent != nil {
		span = i.tr.StartSpan(i.opName(name), opentracing.ChildOf(parent.Context()))
	} else {
		span = i.tr.StartSpan(i.opName(name))
	}
	return span, opentracing.ContextWithSpan(ctx, span)
}

func finish(span opentracing.Span, err error) {
	if err != nil {
		span.SetTag("error", true)
		span.LogKV("message", err.Error())
	}
	span.Finish()
}

func (i *instrumentedStore) Has(ctx context.Context, key string) (has bool, err error) {
	span, ctx := i.startSpan(ctx, "Has")
	defer func() { finish(span, err) }()
	span.SetTag("key", key)
	i.l.Debug("storage has", zap.String("key", key))

	return i.store.Has(ctx, key)
}

func (i *instrumentedStore) Get(ctx context.Context, key string) (rdr io.ReadCloser, err error) {
	span, ctx := i.startSpan(ctx, "Get")
	defer func() { finish(span, err) }()
	span.SetTag("key", key)
	i.l.Debug("storage get", zap.String("key", key))

	return i.store.Get(ctx, key)
}

func (i *instrumentedStore) Put(ctx context.Context, key string, rdr io.Reader) (err error) {
	span, ctx := i.startSpan(ctx, "Put")
	defer func() { finish(span, err) }()
	span.SetTag("key", key)
	i.l.Debug("storage put", zap.String("key", key))

	return i.store.Put(ctx, key, rdr)
}

func (i *instrumentedStore) Download(ctx context.Context, key string, w io.WriterAt) (n int64, err error) {
	span, ctx := i.startSpan(ctx, "Download")
	defer func() { finish(span, err) }()
	span.SetTag("key", key)
	i.l.Debug("storage download", zap.String("key", key))

	n, err = Download(ctx, i.store, key, w)
	span.SetTag("bytes", n)
	return n, err
}

func (i *instrumentedStore) Keys(ctx context.Context) (keys []string, err error) {
	span, ctx := i.startSpan(ctx, "Keys")
	defer func() { finish(span, err) }()
	i.l.Debug("storage keys")

	keys, err = i.store.Keys(ctx)
	span.SetTag("count", len(keys))
	return keys, err
}

func (i *instrumentedStore) String() string {
	return i.store.String()
}
