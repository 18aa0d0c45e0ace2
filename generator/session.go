package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Session 持有一次原文的多个回复变体及其生成状态。
//
// All slot state is owned by a single loop goroutine. Public methods and
// finished generation calls hand it closures over the ops channel, so slot
// reads and writes never race and need no lock.
type Session struct {
	gen      TextGenerator
	variants []Variant
	logger   *zap.SugaredLogger
	bufSize  int

	ops       chan func()
	quit      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	calls  errgroup.Group

	// loop-owned
	text    string
	slots   map[VariantID]*slot
	closed  bool
	subs    map[int]chan Event
	nextSub int
	waiters []chan struct{}

	// written once by the loop right before it exits
	final Snapshot
}

type slot struct {
	variant   Variant
	status    Status
	result    string
	err       error
	epoch     uint64
	updatedAt time.Time
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the session logger.
func WithSessionLogger(l *zap.SugaredLogger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithEventBuffer sets the per-subscriber event buffer size.
func WithEventBuffer(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.bufSize = n
		}
	}
}

// NewSession creates an idle session over a fixed set of variants.
func NewSession(gen TextGenerator, variants []Variant, opts ...SessionOption) (*Session, error) {
	if gen == nil {
		return nil, errors.New("text generator is required")
	}
	if len(variants) == 0 {
		return nil, errors.New("at least one variant is required")
	}
	slots := make(map[VariantID]*slot, len(variants))
	for _, v := range variants {
		if v.ID == "" {
			return nil, errors.New("variant id must not be empty")
		}
		if _, dup := slots[v.ID]; dup {
			return nil, fmt.Errorf("duplicate variant %q", v.ID)
		}
		slots[v.ID] = &slot{variant: v}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		gen:      gen,
		variants: append([]Variant(nil), variants...),
		logger:   zap.NewNop().Sugar(),
		bufSize:  32,
		ops:      make(chan func()),
		quit:     make(chan struct{}),
		loopDone: make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		slots:    slots,
		subs:     make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.loop()
	return s, nil
}

// Variants returns the session's variants in display order.
func (s *Session) Variants() []Variant {
	return append([]Variant(nil), s.variants...)
}

// StartAll makes sure every variant of text is generating or generated.
// A text different from the current one discards all slots first. Only idle
// slots issue a call, so repeated calls never duplicate work. StartAll
// returns once the calls are issued; outcomes arrive as events.
func (s *Session) StartAll(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	return s.do(func() error {
		if s.closed {
			return ErrClosed
		}
		if text != s.text {
			s.reset(text)
		}
		for _, v := range s.variants {
			s.start(v.ID)
		}
		return nil
	})
}

// Start is StartAll for a single variant.
func (s *Session) Start(id VariantID) error {
	return s.do(func() error {
		if s.closed {
			return ErrClosed
		}
		if _, ok := s.slots[id]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownVariant, id)
		}
		if s.text == "" {
			return ErrNoInput
		}
		s.start(id)
		return nil
	})
}

// Regenerate drops whatever the variant holds and issues a fresh call. A
// call still in flight for the variant is ignored when it completes.
func (s *Session) Regenerate(id VariantID) error {
	return s.do(func() error {
		if s.closed {
			return ErrClosed
		}
		sl, ok := s.slots[id]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownVariant, id)
		}
		if s.text == "" {
			return ErrNoInput
		}
		sl.status = StatusIdle
		sl.result = ""
		sl.err = nil
		s.start(id)
		return nil
	})
}

// Reset adopts a new input text and discards every slot without starting.
func (s *Session) Reset(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	return s.do(func() error {
		if s.closed {
			return ErrClosed
		}
		s.reset(text)
		return nil
	})
}

// Snapshot returns a copy of the current slot table.
func (s *Session) Snapshot() Snapshot {
	var snap Snapshot
	if err := s.do(func() error {
		snap = s.snapshot()
		return nil
	}); err != nil {
		<-s.loopDone
		return s.final
	}
	return snap
}

// Subscribe returns a stream of slot events and a function that ends the
// subscription. Events are dropped for a subscriber whose buffer is full;
// Snapshot stays authoritative. The channel is closed on unsubscribe or
// when the session closes.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, s.bufSize)
	id := -1
	if err := s.do(func() error {
		if s.closed {
			return ErrClosed
		}
		id = s.nextSub
		s.nextSub++
		s.subs[id] = ch
		return nil
	}); err != nil {
		close(ch)
		return ch, func() {}
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			_ = s.do(func() error {
				if c, ok := s.subs[id]; ok {
					delete(s.subs, id)
					close(c)
				}
				return nil
			})
		})
	}
}

// Wait blocks until no variant is pending or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	ch := make(chan struct{})
	if err := s.do(func() error {
		if s.anyPending() {
			s.waiters = append(s.waiters, ch)
		} else {
			close(ch)
		}
		return nil
	}); err != nil {
		return err
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels in-flight calls, waits for them and stops the session.
// It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		_ = s.do(func() error {
			s.closed = true
			return nil
		})
		s.cancel()
		_ = s.calls.Wait()
		close(s.quit)
		<-s.loopDone
	})
}

// do runs fn on the loop goroutine and returns its error.
func (s *Session) do(fn func() error) error {
	errc := make(chan error, 1)
	select {
	case s.ops <- func() { errc <- fn() }:
	case <-s.quit:
		return ErrClosed
	}
	return <-errc
}

// deliver hands a completion to the loop without waiting for it to run.
func (s *Session) deliver(op func()) {
	select {
	case s.ops <- op:
	case <-s.quit:
	}
}

func (s *Session) loop() {
	defer close(s.loopDone)
	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.quit:
			s.shutdown()
			return
		}
	}
}

func (s *Session) shutdown() {
	s.final = s.snapshot()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	for _, w := range s.waiters {
		close(w)
	}
	s.waiters = nil
}

// start moves an idle slot to pending and issues its generation call.
func (s *Session) start(id VariantID) {
	sl := s.slots[id]
	if sl.status != StatusIdle {
		return
	}
	sl.epoch++
	sl.status = StatusPending
	sl.result = ""
	sl.err = nil
	sl.updatedAt = time.Now()

	epoch := sl.epoch
	text := s.text
	modifier := sl.variant.Modifier
	s.logger.Debugw("generation started", "variant", id, "epoch", epoch)
	s.emit(EventStarted, sl)

	s.calls.Go(func() error {
		out, err := s.gen.Generate(s.ctx, text, modifier)
		s.deliver(func() { s.onResult(id, epoch, out, err) })
		return nil
	})
}

// onResult applies a finished call if it is still the one its slot waits on.
func (s *Session) onResult(id VariantID, epoch uint64, out string, err error) {
	sl, ok := s.slots[id]
	if !ok || sl.status != StatusPending || sl.epoch != epoch {
		s.logger.Debugw("discarding stale result", "variant", id, "epoch", epoch)
		return
	}
	if err == nil && strings.TrimSpace(out) == "" {
		err = errors.New("model returned empty reply")
	}
	sl.updatedAt = time.Now()
	if err != nil {
		if !errors.Is(err, ErrGeneration) {
			err = &GenerationError{Err: err}
		}
		sl.status = StatusFailed
		sl.err = err
		s.logger.Infow("generation failed", "variant", id, "error", err)
		s.emit(EventFailed, sl)
	} else {
		sl.status = StatusDone
		sl.result = out
		s.logger.Infow("generation done", "variant", id, "chars", len(out))
		s.emit(EventDone, sl)
	}
	if !s.anyPending() {
		for _, w := range s.waiters {
			close(w)
		}
		s.waiters = nil
	}
}

// reset discards every slot together. Bumping the epochs makes any call
// still in flight stale.
func (s *Session) reset(text string) {
	s.text = text
	now := time.Now()
	for _, v := range s.variants {
		sl := s.slots[v.ID]
		sl.epoch++
		sl.status = StatusIdle
		sl.result = ""
		sl.err = nil
		sl.updatedAt = now
		s.emit(EventReset, sl)
	}
	for _, w := range s.waiters {
		close(w)
	}
	s.waiters = nil
}

func (s *Session) anyPending() bool {
	for _, sl := range s.slots {
		if sl.status == StatusPending {
			return true
		}
	}
	return false
}

func (s *Session) emit(kind EventKind, sl *slot) {
	if len(s.subs) == 0 {
		return
	}
	ev := Event{Kind: kind, Slot: sl.state()}
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Debugw("subscriber buffer full, dropping event", "subscriber", id, "variant", sl.variant.ID)
		}
	}
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{Text: s.text, Slots: make([]SlotState, 0, len(s.variants))}
	for _, v := range s.variants {
		snap.Slots = append(snap.Slots, s.slots[v.ID].state())
	}
	return snap
}

func (sl *slot) state() SlotState {
	st := SlotState{
		ID:        sl.variant.ID,
		Variant:   sl.variant,
		Status:    sl.status,
		Epoch:     sl.epoch,
		UpdatedAt: sl.updatedAt,
	}
	switch sl.status {
	case StatusDone:
		st.Result = sl.result
	case StatusFailed:
		if sl.err != nil {
			st.Error = sl.err.Error()
		}
	}
	return st
}
