// Package videotest provides an in-memory video provider that records calls.
package videotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/irsalhamdi/course-platform/core/video"
)

// Provider records every call in order as "create:<url>" or
// "delete:<asset id>". Like the real provider, deleting an asset it does not
// hold succeeds.
type Provider struct {
	mu    sync.Mutex
	calls []string
	seq   int
	live  map[string]bool

	// Fail makes every call fail.
	Fail error

	// CreateFail makes only CreateAsset fail.
	CreateFail error

	// DeleteFail makes DeleteAsset fail for the keyed asset ids.
	DeleteFail map[string]error
}

func (p *Provider) CreateAsset(ctx context.Context, sourceURL string) (video.Asset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, "create:"+sourceURL)
	if p.Fail != nil {
		return video.Asset{}, p.Fail
	}
	if p.CreateFail != nil {
		return video.Asset{}, p.CreateFail
	}

	p.seq++
	a := video.Asset{
		ID:         fmt.Sprintf("asset-%d", p.seq),
		PlaybackID: fmt.Sprintf("playback-%d", p.seq),
	}

	if p.live == nil {
		p.live = make(map[string]bool)
	}
	p.live[a.ID] = true

	return a, nil
}

func (p *Provider) DeleteAsset(ctx context.Context, assetID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, "delete:"+assetID)
	if p.Fail != nil {
		return p.Fail
	}
	if err := p.DeleteFail[assetID]; err != nil {
		return err
	}

	delete(p.live, assetID)
	return nil
}

// SetDeleteFail replaces the per-asset delete failures; nil clears them.
func (p *Provider) SetDeleteFail(fails map[string]error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.DeleteFail = fails
}

// Calls returns a copy of the recorded calls.
func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// Deletes counts the recorded DeleteAsset calls.
func (p *Provider) Deletes() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	var n int
	for _, c := range p.calls {
		if strings.HasPrefix(c, "delete:") {
			n++
		}
	}
	return n
}

// Live returns the ids of created assets not yet deleted, sorted.
func (p *Provider) Live() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.live))
	for id := range p.live {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
