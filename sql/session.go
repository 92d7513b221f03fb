package sql

import (
	"context"
	"io"
	"sync"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Session holds the state of one client of the engine for the whole
// lifetime of its connection.
type Session interface {
	// ID returns the unique ID of the session.
	ID() string
	// Logger returns the logger of the session, with the session fields
	// already attached.
	Logger() *logrus.Entry
	// SetLogger replaces the logger of the session.
	SetLogger(*logrus.Entry)
}

// BaseSession is the basic session type.
type BaseSession struct {
	id string

	mu     sync.Mutex
	logger *logrus.Entry
}

// NewBaseSession creates a new basic session with a fresh unique ID.
func NewBaseSession() *BaseSession {
	var id string
	if uid, err := uuid.NewV4(); err == nil {
		id = uid.String()
	}
	return &BaseSession{id: id}
}

// ID implements the Session interface.
func (s *BaseSession) ID() string { return s.id }

// Logger implements the Session interface.
func (s *BaseSession) Logger() *logrus.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logger == nil {
		s.logger = logrus.StandardLogger().WithField("session", s.id)
	}
	return s.logger
}

// SetLogger implements the Session interface.
func (s *BaseSession) SetLogger(logger *logrus.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// Context of the query execution.
type Context struct {
	context.Context
	Session
	pid       uint64
	query     string
	queryTime time.Time
	tracer    opentracing.Tracer
}

// ContextOption is a function to configure the context.
type ContextOption func(*Context)

// WithSession adds the given session to the context.
func WithSession(s Session) ContextOption {
	return func(ctx *Context) {
		ctx.Session = s
	}
}

// WithTracer adds the given tracer to the context.
func WithTracer(t opentracing.Tracer) ContextOption {
	return func(ctx *Context) {
		ctx.tracer = t
	}
}

// WithPid adds the given pid to the context.
func WithPid(pid uint64) ContextOption {
	return func(ctx *Context) {
		ctx.pid = pid
	}
}

// WithQuery adds the given query text to the context.
func WithQuery(q string) ContextOption {
	return func(ctx *Context) {
		ctx.query = q
	}
}

// NewContext creates a new query context.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context:   ctx,
		Session:   NewBaseSession(),
		queryTime: time.Now(),
		tracer:    opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewEmptyContext returns a default context with no values set, commonly
// used in tests.
func NewEmptyContext() *Context {
	return NewContext(context.TODO())
}

// Pid returns the process ID associated with this context.
func (c *Context) Pid() uint64 { return c.pid }

// Query returns the query string associated with this context, if any.
func (c *Context) Query() string { return c.query }

// QueryTime returns the time the query associated with this context started.
func (c *Context) QueryTime() time.Time { return c.queryTime }

// Span creates a new tracing span with the given operation name and
// options. If there is a parent span, the new span is a child of it.
// It returns the new span and a context with the span attached, to pass
// down to clients of this context.
func (c *Context) Span(
	opName string,
	opts ...opentracing.StartSpanOption,
) (opentracing.Span, *Context) {
	parentSpan := opentracing.SpanFromContext(c.Context)
	if parentSpan != nil {
		opts = append(opts, opentracing.ChildOf(parentSpan.Context()))
	}
	span := c.tracer.StartSpan(opName, opts...)
	ctx := opentracing.ContextWithSpan(c.Context, span)

	return span, c.WithContext(ctx)
}

// WithContext returns a new context with the given underlying context.
func (c *Context) WithContext(ctx context.Context) *Context {
	nc := *c
	nc.Context = ctx
	return &nc
}

// NewSubContext creates a new sub-context of this context that can be
// cancelled before its parent finishes.
func (c *Context) NewSubContext() (*Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(c.Context)
	return c.WithContext(ctx), cancel
}

// NewErrgroup returns an errgroup.Group bound to a sub-context of this one,
// so that the first failing task cancels every other task of the group.
func (c *Context) NewErrgroup() (*errgroup.Group, *Context) {
	eg, egCtx := errgroup.WithContext(c.Context)
	return eg, c.WithContext(egCtx)
}

// NewSpanIter creates a RowIter executed in the given span. The span is
// finished with row count and timing stats once the wrapped iterator is
// exhausted or closed.
func NewSpanIter(span opentracing.Span, iter RowIter) RowIter {
	return &spanIter{span: span, iter: iter}
}

type spanIter struct {
	span  opentracing.Span
	iter  RowIter
	count int
	max   time.Duration
	min   time.Duration
	total time.Duration
	done  bool
}

func (i *spanIter) updateTimings(start time.Time) {
	elapsed := time.Since(start)
	if i.max < elapsed {
		i.max = elapsed
	}

	if i.min > elapsed || i.min == 0 {
		i.min = elapsed
	}

	i.total += elapsed
}

func (i *spanIter) Next() (Row, error) {
	start := time.Now()

	row, err := i.iter.Next()
	if err == io.EOF {
		i.finish()
		return nil, err
	}

	if err != nil {
		i.finishWithError(err)
		return nil, err
	}

	i.count++
	i.updateTimings(start)
	return row, nil
}

func (i *spanIter) finish() {
	var avg time.Duration
	if i.count > 0 {
		avg = i.total / time.Duration(i.count)
	}

	i.span.FinishWithOptions(opentracing.FinishOptions{
		LogRecords: []opentracing.LogRecord{
			{
				Timestamp: time.Now(),
				Fields: []log.Field{
					log.Int("rows", i.count),
					log.String("total_time", i.total.String()),
					log.String("max_time", i.max.String()),
					log.String("min_time", i.min.String()),
					log.String("avg_time", avg.String()),
				},
			},
		},
	})
	i.done = true
}

func (i *spanIter) finishWithError(err error) {
	i.span.FinishWithOptions(opentracing.FinishOptions{
		LogRecords: []opentracing.LogRecord{
			{
				Timestamp: time.Now(),
				Fields:    []log.Field{log.String("error", err.Error())},
			},
		},
	})
	i.done = true
}

func (i *spanIter) Close() error {
	if !i.done {
		i.finish()
	}
	return i.iter.Close()
}
