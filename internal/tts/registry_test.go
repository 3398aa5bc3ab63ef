package tts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistryConcurrentLoad(t *testing.T) {
	loader := &fakeLoader{model: &fakeModel{}, delay: 20 * time.Millisecond}
	r := NewRegistry(loader)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Get(context.Background(), ModeVoiceDesign); err != nil {
				t.Errorf("Get failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := loader.loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
}

func TestRegistryLoadError(t *testing.T) {
	loader := &fakeLoader{err: errors.New("missing weights")}
	r := NewRegistry(loader)

	_, err := r.Get(context.Background(), ModeCustomVoice)
	if KindOf(err) != KindModel {
		t.Fatalf("error = %v, want model error", err)
	}
	if _, ok := r.Loaded(ModeCustomVoice); ok {
		t.Error("failed load was remembered")
	}
}
