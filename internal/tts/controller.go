package tts

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/voicebox/internal/audio"
	"github.com/dgnsrekt/voicebox/internal/cache"
)

const defaultEventBuffer = 16

// Controller runs generation requests off the caller's goroutine. At most
// one request is in flight; its progress and result arrive on Events.
type Controller struct {
	registry *Registry
	player   Player
	cache    *cache.MemoryCache

	events chan Event

	busy   atomic.Bool
	closed atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithCache replays identical requests from c instead of calling the model.
func WithCache(c *cache.MemoryCache) Option {
	return func(ctl *Controller) { ctl.cache = c }
}

// WithEventBuffer sets the capacity of the events channel.
func WithEventBuffer(n int) Option {
	return func(ctl *Controller) { ctl.events = make(chan Event, n) }
}

// NewController returns a controller loading models through loader and
// playing through player.
func NewController(loader Loader, player Player, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		registry: NewRegistry(loader),
		player:   player,
		events:   make(chan Event, defaultEventBuffer),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Events returns the notification channel. It is never closed; consumers
// stop reading after Close.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Busy reports whether a request is in flight.
func (c *Controller) Busy() bool {
	return c.busy.Load()
}

// Ready reports whether the model for mode is loaded.
func (c *Controller) Ready(mode Mode) bool {
	_, ok := c.registry.Loaded(mode)
	return ok
}

// Submit validates req and starts generating it in the background. It
// returns the request id. Invalid requests fail with a validation error
// without touching the model; a second request while one is in flight fails
// with ErrBusy.
func (c *Controller) Submit(req Request) (string, error) {
	if c.closed.Load() {
		return "", ErrClosed
	}
	req = Normalize(req)
	if err := Validate(req); err != nil {
		return "", err
	}
	if !c.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}

	id := uuid.NewString()
	log.Debug("request submitted", "id", id, "mode", req.Variant.Mode(), "chars", len(req.Text), "device", req.Device)

	sm := NewStateMachine()
	for _, s := range []State{StateDispatched, StateSynthesizing, StatePlaying} {
		sm.OnEnter(s, func() { c.emit(StateChanged{ID: id, State: s}) })
	}

	c.wg.Add(1)
	go c.run(id, req, sm)
	return id, nil
}

func (c *Controller) run(id string, req Request, sm *StateMachine) {
	defer c.wg.Done()

	start := time.Now()
	sm.Transition(StateDispatched)
	cached, err := c.generate(req, sm)
	// cleared first so a consumer reacting to the terminal event can submit
	c.busy.Store(false)

	if err != nil {
		sm.Transition(StateErrored)
		log.Debug("request failed", "id", id, "state", sm.Current(), "error", err)
		c.emit(Failed{ID: id, Err: err, Message: Status(err)})
		return
	}
	sm.Transition(StateDone)
	log.Debug("request done", "id", id, "took", time.Since(start), "cached", cached)
	c.emit(Done{ID: id, Duration: time.Since(start), Cached: cached})
}

func (c *Controller) generate(req Request, sm *StateMachine) (cached bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = ModelError(sm.Current().String(), fmt.Errorf("panic: %v", r))
		}
	}()

	mode := req.Variant.Mode()
	key := requestKey(req)

	var buf audio.Buffer
	if c.cache != nil {
		buf, cached = c.cache.Get(key)
	}
	if !cached {
		model, err := c.registry.Get(c.ctx, mode)
		if err != nil {
			return false, err
		}
		sm.Transition(StateSynthesizing)

		segments, err := model.Synthesize(c.ctx, req.Text, req.Variant)
		if err != nil {
			return false, ModelError("synthesize", err)
		}
		buf, err = audio.Concat(segments...)
		if errors.Is(err, audio.ErrEmptyBuffer) {
			return false, ModelError("synthesize", ErrNoAudio)
		}
		if err != nil {
			return false, ModelError("synthesize", err)
		}
		if c.cache != nil {
			if err := c.cache.Put(key, buf); err != nil {
				log.Debug("not caching synthesis", "error", err)
			}
		}
	} else {
		sm.Transition(StateSynthesizing)
	}

	sm.Transition(StatePlaying)
	if err := c.player.Play(c.ctx, buf, req.Device); err != nil {
		return cached, DeviceError("play", err)
	}
	return cached, nil
}

// Preload loads the model for mode in the background, reporting progress
// with ModelLoading and then ModelReady or ModelFailed. A loaded model is
// reported ready at once.
func (c *Controller) Preload(mode Mode) {
	if c.closed.Load() {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		if _, ok := c.registry.Loaded(mode); !ok {
			c.emit(ModelLoading{Mode: mode})
		}
		model, err := c.registry.Get(c.ctx, mode)
		if err != nil {
			c.emit(ModelFailed{Mode: mode, Err: err, Message: Status(err)})
			return
		}

		var voices []string
		if mode == ModeCustomVoice {
			voices, err = model.Voices(c.ctx)
			if err != nil {
				err = ModelError("voices", err)
				c.emit(ModelFailed{Mode: mode, Err: err, Message: Status(err)})
				return
			}
		}
		c.emit(ModelReady{Mode: mode, Voices: voices})
	}()
}

// Voices loads the custom voice model if needed and returns its speakers.
func (c *Controller) Voices(ctx context.Context) ([]string, error) {
	model, err := c.registry.Get(ctx, ModeCustomVoice)
	if err != nil {
		return nil, err
	}
	voices, err := model.Voices(ctx)
	if err != nil {
		return nil, ModelError("voices", err)
	}
	return voices, nil
}

// Close cancels in-flight work and waits for workers to exit.
func (c *Controller) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.cancel()
	c.wg.Wait()
	return nil
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.ctx.Done():
	}
}

func requestKey(req Request) string {
	parts := []string{req.Variant.Mode().String(), req.Text}
	switch v := req.Variant.(type) {
	case CustomVoice:
		parts = append(parts, v.Speaker, v.Instruct)
	case VoiceDesign:
		parts = append(parts, v.Instruct)
	case VoiceClone:
		parts = append(parts, v.RefAudio, v.RefText)
	}
	return cache.Key(parts...)
}
