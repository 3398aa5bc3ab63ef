package tts

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Registry loads models on first use and keeps them for the life of the
// process. Loads of different modes run in parallel; concurrent callers for
// the same mode share one load. A failed load is not remembered.
type Registry struct {
	loader Loader

	mu     sync.Mutex
	models map[Mode]Model
	locks  map[Mode]*sync.Mutex
}

// NewRegistry returns an empty registry backed by loader.
func NewRegistry(loader Loader) *Registry {
	return &Registry{
		loader: loader,
		models: make(map[Mode]Model),
		locks:  make(map[Mode]*sync.Mutex),
	}
}

// Get returns the model for mode, loading it if needed.
func (r *Registry) Get(ctx context.Context, mode Mode) (Model, error) {
	if m, ok := r.Loaded(mode); ok {
		return m, nil
	}

	lock := r.modeLock(mode)
	lock.Lock()
	defer lock.Unlock()

	// loaded while we waited
	if m, ok := r.Loaded(mode); ok {
		return m, nil
	}

	start := time.Now()
	log.Debug("loading model", "mode", mode)
	m, err := r.loader.Load(ctx, mode)
	if err != nil {
		log.Debug("model load failed", "mode", mode, "error", err)
		return nil, ModelError("load "+mode.String(), err)
	}
	log.Debug("model loaded", "mode", mode, "took", time.Since(start))

	r.mu.Lock()
	r.models[mode] = m
	r.mu.Unlock()
	return m, nil
}

// Loaded returns the model for mode if it has already been loaded.
func (r *Registry) Loaded(mode Mode) (Model, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.models[mode]
	return m, ok
}

func (r *Registry) modeLock(mode Mode) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[mode]
	if !ok {
		l = &sync.Mutex{}
		r.locks[mode] = l
	}
	return l
}
