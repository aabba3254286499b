package identity

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

type memStorage struct {
	mu      sync.Mutex
	id      string
	failSet bool
	sets    int
}

func (m *memStorage) DeviceID() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, nil
}

func (m *memStorage) SetDeviceID(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.failSet {
		return errors.New("disk full")
	}
	m.id = id
	return nil
}

func TestDeviceIDFormat(t *testing.T) {
	p := NewProvider(&memStorage{}, "android")
	id, err := p.DeviceID()
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.SplitN(id, "_", 3)
	if len(parts) != 3 {
		t.Fatalf("id %q is not platform_timestamp_random", id)
	}
	if parts[0] != "android" {
		t.Errorf("platform segment = %q, want android", parts[0])
	}
	if len(parts[2]) != 12 {
		t.Errorf("random segment %q length = %d, want 12", parts[2], len(parts[2]))
	}
}

func TestDeviceIDStableWithinProcess(t *testing.T) {
	p := NewProvider(&memStorage{}, "ios")
	first, _ := p.DeviceID()
	second, _ := p.DeviceID()
	if first != second {
		t.Errorf("id changed between calls: %q then %q", first, second)
	}
}

func TestDeviceIDStableAcrossProviders(t *testing.T) {
	store := &memStorage{}
	first, _ := NewProvider(store, "ios").DeviceID()
	second, _ := NewProvider(store, "ios").DeviceID()
	if first != second {
		t.Errorf("a new provider over the same storage minted a new id: %q then %q", first, second)
	}
	if store.sets != 1 {
		t.Errorf("SetDeviceID calls = %d, want 1", store.sets)
	}
}

func TestDeviceIDConcurrentFirstUse(t *testing.T) {
	p := NewProvider(&memStorage{}, "ios")

	const n = 20
	ids := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			ids[i], _ = p.DeviceID()
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("concurrent callers saw different ids: %q vs %q", ids[0], ids[i])
		}
	}
}

func TestDeviceIDSurvivesPersistFailure(t *testing.T) {
	p := NewProvider(&memStorage{failSet: true}, "ios")
	first, err := p.DeviceID()
	if err != nil {
		t.Fatalf("persist failure must not fail the call: %v", err)
	}
	second, _ := p.DeviceID()
	if first != second {
		t.Error("id must stay stable for the process even when persistence fails")
	}
}

func TestDeviceIDNoStorage(t *testing.T) {
	p := NewProvider(nil, "")
	id, err := p.DeviceID()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(id, "unknown_") {
		t.Errorf("id %q should use the unknown platform fallback", id)
	}
}
