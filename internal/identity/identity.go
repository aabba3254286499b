// Package identity produces the stable anonymous device identifier that
// correlates this installation with server-side favorite and
// notification state. Losing the id would orphan that state, so once an
// id has been persisted it is never regenerated.
package identity

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Storage persists the device id between runs.
type Storage interface {
	DeviceID() (string, error)
	SetDeviceID(id string) error
}

// Provider hands out the per-install device id, creating it lazily on
// first use.
type Provider struct {
	mu       sync.Mutex
	cached   string
	store    Storage
	platform string
	now      func() time.Time
}

// NewProvider creates a Provider backed by the given storage.
func NewProvider(store Storage, platform string) *Provider {
	if platform == "" {
		platform = "unknown"
	}
	return &Provider{
		store:    store,
		platform: platform,
		now:      time.Now,
	}
}

// DeviceID returns the device id: the in-memory value if cached, else
// the persisted one, else a freshly generated id which is persisted
// before being returned. Concurrent first calls observe the same id.
func (p *Provider) DeviceID() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != "" {
		return p.cached, nil
	}

	if p.store != nil {
		stored, err := p.store.DeviceID()
		if err != nil {
			return "", fmt.Errorf("read device id: %w", err)
		}
		if stored != "" {
			p.cached = stored
			return stored, nil
		}
	}

	id := p.generate()
	if p.store != nil {
		if err := p.store.SetDeviceID(id); err != nil {
			// Keep the id for this process so callers stay consistent,
			// but the next run will mint a new one.
			log.Printf("identity: persisting device id failed: %v", err)
		}
	}
	p.cached = id
	return id, nil
}

// generate builds "<platform>_<unix-millis>_<random>".
func (p *Provider) generate() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%d_%s", p.platform, p.now().UnixMilli(), suffix)
}
