// logger.go: the Logger hierarchy and record pipeline. Dispatch is
// synchronous from the call site through interceptor and writer fan-out;
// writers may schedule their own background work.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package chirpy

import (
	"fmt"
	"sync"

	"github.com/agilira/go-errors"
)

// Logger is a mutable holder of name, context, min level, writers,
// interceptors and a parent link.
type Logger struct {
	mu sync.RWMutex

	name     string
	instance InstanceMarker
	minLevel *AtomicLevel // nil means "inherit from parent"
	context  Data
	parent   *Logger

	writers      []Writer
	interceptors []Interceptor

	clock Clock
}

// NewRoot constructs a new process-wide-capable root logger with no parent.
// Most programs use the package-level Root instead of calling this.
func NewRoot() *Logger {
	return &Logger{context: Data{}, clock: SystemClock}
}

// ChildOptions configures Logger.Child.
type ChildOptions struct {
	Name     string
	Instance any
	Context  []Field
	MinLevel *Level
}

// Child returns a new logger whose parent is l. The child inherits writers
// and interceptors from ancestry by walking the chain at dispatch time; it
// never caches a resolved list, so reconfiguring an ancestor later is
// visible immediately.
func (l *Logger) Child(opts ChildOptions) *Logger {
	c := &Logger{parent: l, context: NewData(opts.Context...), clock: l.clockOrDefault()}
	if opts.Name != "" {
		c.name = opts.Name
	}
	if opts.Instance != nil {
		c.instance = MarkerFor(opts.Instance)
	}
	if opts.MinLevel != nil {
		c.minLevel = NewAtomicLevel(*opts.MinLevel)
	}
	return c
}

func (l *Logger) clockOrDefault() Clock {
	if l.clock != nil {
		return l.clock
	}
	return SystemClock
}

// SetClock overrides the clock this logger (and any future children) use.
// Intended for tests; not safe to call concurrently with logging.
func (l *Logger) SetClock(c Clock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clock = c
}

// SetMinLevel replaces this logger's own gate. It does not mutate ancestors.
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.minLevel == nil {
		l.minLevel = NewAtomicLevel(level)
	} else {
		l.minLevel.SetLevel(level)
	}
}

// AtomicLevel returns this logger's own min_level gate, creating it at
// DefaultMinLevel first if the logger currently inherits from an
// ancestor. The returned handle stays live for the logger's lifetime, so
// a ConfigWatcher can hold onto it and call SetLevel without re-fetching.
func (l *Logger) AtomicLevel() *AtomicLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.minLevel == nil {
		l.minLevel = NewAtomicLevel(DefaultMinLevel)
	}
	return l.minLevel
}

// EffectiveMinLevel returns the nearest ancestor's min_level, or
// DefaultMinLevel if none is set anywhere in the chain.
func (l *Logger) EffectiveMinLevel() Level {
	for cur := l; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		ml := cur.minLevel
		cur.mu.RUnlock()
		if ml != nil {
			return ml.Level()
		}
	}
	return DefaultMinLevel
}

// IsEnabled reports whether level passes this logger's effective gate.
func (l *Logger) IsEnabled(level Level) bool {
	return level.Enabled(l.EffectiveMinLevel())
}

// AddWriter appends a writer in registration order; order is preserved and
// observable in writer fan-out.
func (l *Logger) AddWriter(w Writer) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writers = append(l.writers, w)
	return l
}

// AddInterceptor appends an interceptor in registration order.
func (l *Logger) AddInterceptor(i Interceptor) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interceptors = append(l.interceptors, i)
	return l
}

// SetContext sets fields on the logger's own mutable context map. Mutations
// affect only subsequently-emitted records.
func (l *Logger) SetContext(fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, f := range fields {
		l.context.Set(f.Key, f.Value())
	}
}

// effectiveChain walks ancestry root-first, gathering contexts, writers and
// interceptors in order, plus the nearest-to-self logger name and instance
// marker.
func (l *Logger) effectiveChain() (contexts []Data, writers []Writer, interceptors []Interceptor, name string, marker InstanceMarker) {
	var chain []*Logger
	for cur := l; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	// chain is self..root; reverse to root-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	for _, cur := range chain {
		cur.mu.RLock()
		contexts = append(contexts, cur.context)
		writers = append(writers, cur.writers...)
		interceptors = append(interceptors, cur.interceptors...)
		if cur.name != "" {
			name = cur.name
		}
		if cur.instance.TypeName != "" {
			marker = cur.instance
		}
		cur.mu.RUnlock()
	}
	return
}

// anyRequiresCallerInfo reports whether a writer or interceptor in the
// effective chain needs caller info. When none does, no backtrace is ever
// captured for the record.
func anyRequiresCallerInfo(writers []Writer, interceptors []Interceptor) bool {
	for _, w := range writers {
		if w.RequiresCallerInfo() {
			return true
		}
	}
	for _, i := range interceptors {
		if i.RequiresCallerInfo() {
			return true
		}
	}
	return false
}

// LogParams bundles the optional arguments to Log so convenience methods
// don't need a long positional signature. Every field is optional; the zero
// value attaches nothing.
type LogParams struct {
	Data       []Field
	Err        error
	StackTrace string
	FormatOpts FormatOptions
}

// Log is the single dispatch primitive every convenience method delegates
// to: gate, gather the effective chain, capture the caller token only if
// someone needs it, build the record, run interceptors, fan out to writers.
func (l *Logger) Log(level Level, msg Message, p LogParams) {
	if !l.IsEnabled(level) {
		return
	}

	contexts, writers, interceptors, name, marker := l.effectiveChain()

	var token *CallerToken
	if anyRequiresCallerInfo(writers, interceptors) {
		token = captureCaller(1)
	}

	data := Merge(append(append([]Data{}, contexts...), NewData(p.Data...))...)

	rec := &Record{
		Timestamp:  l.clockOrDefault().Now(),
		Level:      level,
		Message:    msg,
		Data:       data,
		Err:        p.Err,
		StackTrace: p.StackTrace,
		LoggerName: name,
		Instance:   marker,
		Caller:     token,
		FormatOpts: p.FormatOpts,
	}

	for _, ic := range interceptors {
		out, ok, err := safeIntercept(ic, rec)
		if err != nil {
			handleError(err)
			return
		}
		if !ok {
			return
		}
		rec = out
	}

	for _, w := range writers {
		if err := safeWrite(w, rec); err != nil {
			handleError(err)
		}
	}
}

// safeIntercept runs ic, converting a panic into a dropped record so a
// misbehaving interceptor never takes down the caller.
func safeIntercept(ic Interceptor, rec *Record) (out *Record, ok bool, failure *errors.Error) {
	defer func() {
		if r := recover(); r != nil {
			failure = NewError(ErrInterceptor, fmt.Sprintf("interceptor panicked: %v", r))
		}
	}()
	out, ok = ic.Intercept(rec)
	return
}

// safeWrite dispatches rec to w, converting both returned errors and panics
// into handler-routed failures so one broken sink cannot starve another.
func safeWrite(w Writer, rec *Record) (failure *errors.Error) {
	defer func() {
		if r := recover(); r != nil {
			failure = NewError(ErrWrite, fmt.Sprintf("writer panicked: %v", r))
		}
	}()
	if err := w.Write(rec); err != nil {
		return WrapError(ErrWrite, err, "writer failed")
	}
	return nil
}

func (l *Logger) Trace(msg string, data ...Field)    { l.Log(TraceLevel, Msg(msg), LogParams{Data: data}) }
func (l *Logger) Debug(msg string, data ...Field)    { l.Log(DebugLevel, Msg(msg), LogParams{Data: data}) }
func (l *Logger) Info(msg string, data ...Field)     { l.Log(InfoLevel, Msg(msg), LogParams{Data: data}) }
func (l *Logger) Notice(msg string, data ...Field)   { l.Log(NoticeLevel, Msg(msg), LogParams{Data: data}) }
func (l *Logger) Success(msg string, data ...Field)  { l.Log(SuccessLevel, Msg(msg), LogParams{Data: data}) }
func (l *Logger) Warning(msg string, data ...Field)  { l.Log(WarningLevel, Msg(msg), LogParams{Data: data}) }
func (l *Logger) Critical(msg string, data ...Field) { l.Log(CriticalLevel, Msg(msg), LogParams{Data: data}) }
func (l *Logger) Wtf(msg string, data ...Field)      { l.Log(WtfLevel, Msg(msg), LogParams{Data: data}) }

// Error logs at the Error level, attaching err (may be nil).
func (l *Logger) Error(msg string, err error, data ...Field) {
	l.Log(ErrorLevel, Msg(msg), LogParams{Data: data, Err: err})
}

// Lazy variants evaluate their message only after the level gate passes, so
// a filtered-out call never pays the construction cost.
func (l *Logger) TraceLazy(fn func() string, data ...Field) {
	l.Log(TraceLevel, LazyMsg(fn), LogParams{Data: data})
}
func (l *Logger) DebugLazy(fn func() string, data ...Field) {
	l.Log(DebugLevel, LazyMsg(fn), LogParams{Data: data})
}
func (l *Logger) InfoLazy(fn func() string, data ...Field) {
	l.Log(InfoLevel, LazyMsg(fn), LogParams{Data: data})
}
func (l *Logger) NoticeLazy(fn func() string, data ...Field) {
	l.Log(NoticeLevel, LazyMsg(fn), LogParams{Data: data})
}
func (l *Logger) SuccessLazy(fn func() string, data ...Field) {
	l.Log(SuccessLevel, LazyMsg(fn), LogParams{Data: data})
}
func (l *Logger) WarningLazy(fn func() string, data ...Field) {
	l.Log(WarningLevel, LazyMsg(fn), LogParams{Data: data})
}
func (l *Logger) ErrorLazy(fn func() string, data ...Field) {
	l.Log(ErrorLevel, LazyMsg(fn), LogParams{Data: data})
}
func (l *Logger) CriticalLazy(fn func() string, data ...Field) {
	l.Log(CriticalLevel, LazyMsg(fn), LogParams{Data: data})
}
func (l *Logger) WtfLazy(fn func() string, data ...Field) {
	l.Log(WtfLevel, LazyMsg(fn), LogParams{Data: data})
}

// ForInstance returns a child logger marked with instance's identity, so
// formatters can print e.g. "ClassName@a1b2" for records it emits.
func (l *Logger) ForInstance(instance any) *Logger {
	return l.Child(ChildOptions{Instance: instance})
}

// Sync flushes every writer reachable from this logger's own registrations
// (not ancestors', since writers are owned by their registering logger).
func (l *Logger) Sync() error {
	l.mu.RLock()
	writers := append([]Writer{}, l.writers...)
	l.mu.RUnlock()
	var firstErr error
	for _, w := range writers {
		if err := w.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes every writer this logger owns.
func (l *Logger) Close() error {
	l.mu.RLock()
	writers := append([]Writer{}, l.writers...)
	l.mu.RUnlock()
	var firstErr error
	for _, w := range writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Adopt rewires other's parent to l without changing other's own min_level.
// After adoption, other's records fan out through l's configured writers
// while other's own filter still gates verbosity.
func (l *Logger) Adopt(other *Logger) {
	other.mu.Lock()
	defer other.mu.Unlock()
	other.parent = l
}
