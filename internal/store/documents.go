package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"associate-os/internal/logging"
	"associate-os/internal/model"
	"associate-os/internal/schema"
)

// Documents owns the live AppData: it loads it from a Backend, persists every
// replacement and tells subscribers about it.
//
// Reads are lock-free. Commits are serialised, so subscribers observe
// replacements in commit order, each exactly once.
type Documents struct {
	backend           Backend
	namespace         string
	snapshotNamespace string
	log               *log.Logger
	now               func() time.Time
	onSettings        func(model.Settings)

	current atomic.Pointer[model.AppData]
	loadErr error

	commitMu sync.Mutex

	subsMu  sync.Mutex
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(model.AppData)
}

type Option func(*Documents)

func WithNamespace(ns string) Option {
	return func(d *Documents) {
		if ns != "" {
			d.namespace = ns
		}
	}
}

func WithSnapshotNamespace(ns string) Option {
	return func(d *Documents) {
		if ns != "" {
			d.snapshotNamespace = ns
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(d *Documents) {
		if l != nil {
			d.log = l
		}
	}
}

// WithClock overrides time.Now for snapshot keys.
func WithClock(now func() time.Time) Option {
	return func(d *Documents) {
		if now != nil {
			d.now = now
		}
	}
}

// WithSettingsHook registers fn to run with the settings of the loaded
// document and of every committed replacement, before subscribers.
func WithSettingsHook(fn func(model.Settings)) Option {
	return func(d *Documents) {
		d.onSettings = fn
	}
}

// Open loads the document stored under the namespace. A missing record yields
// the default document. A record that fails validation is logged and also
// yields the default document; the stored bytes are left untouched until the
// next successful Replace.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Documents, error) {
	if backend == nil {
		return nil, errors.New("nil backend")
	}
	d := &Documents{
		backend:           backend,
		namespace:         DefaultNamespace,
		snapshotNamespace: DefaultSnapshotNamespace,
		log:               logging.Discard(),
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	doc := schema.Default()
	raw, ok, err := backend.ReadRecord(ctx, d.namespace)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.namespace, err)
	}
	if ok {
		loaded, err := schema.Validate(raw)
		if err != nil {
			d.loadErr = err
			d.log.Warn("stored document is unreadable; starting from defaults", "namespace", d.namespace, "err", err)
		} else {
			doc = loaded
			d.log.Debug("document loaded", "namespace", d.namespace, "format", schema.DetectFormat(raw), "tasks", len(doc.Tasks))
		}
	}
	d.current.Store(&doc)
	if d.onSettings != nil {
		d.onSettings(doc.Settings)
	}
	return d, nil
}

// Current returns the latest committed document. It must not be modified.
func (d *Documents) Current() model.AppData {
	return *d.current.Load()
}

// LoadErr reports why the stored document was discarded at Open, if it was.
func (d *Documents) LoadErr() error {
	return d.loadErr
}

func (d *Documents) Namespace() string { return d.namespace }

// Replace validates next, persists it and only then makes it current.
// If persisting fails the current document and subscribers are untouched.
func (d *Documents) Replace(ctx context.Context, next model.AppData) error {
	d.commitMu.Lock()
	defer d.commitMu.Unlock()
	return d.commitLocked(ctx, next)
}

// Apply runs fn against the current document and commits the result. fn's
// error aborts the commit. A result that is the current document itself
// (a mutation whose target does not exist) is not committed.
func (d *Documents) Apply(ctx context.Context, fn func(model.AppData) (model.AppData, error)) (model.AppData, error) {
	d.commitMu.Lock()
	defer d.commitMu.Unlock()

	cur := d.Current()
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	if unchanged(cur, next) {
		d.log.Debug("mutation left the document unchanged")
		return cur, nil
	}
	if err := d.commitLocked(ctx, next); err != nil {
		return cur, err
	}
	return next, nil
}

func (d *Documents) commitLocked(ctx context.Context, next model.AppData) error {
	raw, err := encodeDocument(next)
	if err != nil {
		return err
	}
	if err := d.backend.WriteRecord(ctx, d.namespace, raw); err != nil {
		return fmt.Errorf("write %s: %w", d.namespace, err)
	}
	doc := next
	d.current.Store(&doc)
	d.log.Debug("document committed", "namespace", d.namespace, "tasks", len(doc.Tasks), "bytes", len(raw))

	if d.onSettings != nil {
		d.onSettings(doc.Settings)
	}
	for _, s := range d.subscribers() {
		s.fn(doc)
	}
	return nil
}

// Subscribe registers fn to receive every committed document. fn runs while
// the commit lock is held and must not call Replace or Apply.
func (d *Documents) Subscribe(fn func(model.AppData)) (unsubscribe func()) {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	d.nextSub++
	id := d.nextSub
	d.subs = append(d.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			d.subsMu.Lock()
			defer d.subsMu.Unlock()
			for i, s := range d.subs {
				if s.id == id {
					d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (d *Documents) subscribers() []subscriber {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	out := make([]subscriber, len(d.subs))
	copy(out, d.subs)
	return out
}

// encodeDocument serialises doc and checks it against the schema so that a
// document which could not be loaded back is never written.
func encodeDocument(doc model.AppData) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	if err := schema.Check(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// durableBytes returns the stored record when it is a readable aggregate
// document. Otherwise (nothing stored yet, a record discarded at Open, or a
// legacy task list) it returns the encoded current document, so the bytes
// always pass Import and Restore.
func (d *Documents) durableBytes(ctx context.Context) ([]byte, error) {
	raw, ok, err := d.backend.ReadRecord(ctx, d.namespace)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", d.namespace, err)
	}
	if ok && d.loadErr == nil && schema.DetectFormat(raw) == schema.FormatAggregate {
		return raw, nil
	}
	return encodeDocument(d.Current())
}

func unchanged(a, b model.AppData) bool {
	return sameSlice(a.Tasks, b.Tasks) &&
		sameSlice(a.Resources, b.Resources) &&
		sameSlice(a.Settings.Team, b.Settings.Team) &&
		a.Settings.MyShortsign == b.Settings.MyShortsign &&
		a.Settings.DarkMode == b.Settings.DarkMode &&
		a.Settings.IsAuthenticated == b.Settings.IsAuthenticated
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}
