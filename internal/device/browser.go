package device

import "sync"

// BrowserState is a snapshot of the in-app browser.
type BrowserState struct {
	CurrentURL   string   `json:"currentUrl"`
	URLInput     string   `json:"urlInput"`
	History      []string `json:"history"`
	Index        int      `json:"historyIndex"`
	Loading      bool     `json:"isLoading"`
	CanGoBack    bool     `json:"canGoBack"`
	CanGoForward bool     `json:"canGoForward"`
}

// Browser tracks navigation history. Back/forward availability is computed
// from the history and index on every read and is never stored.
type Browser struct {
	mu      sync.Mutex
	current string
	input   string
	history []string
	index   int
	loading bool
}

// NewBrowser returns a browser with empty history.
func NewBrowser() *Browser {
	return &Browser{index: -1}
}

func canGoBack(index int) bool {
	return index > 0
}

func canGoForward(index int, history []string) bool {
	return index < len(history)-1
}

// CanGoBack reports whether Back would move.
func (b *Browser) CanGoBack() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return canGoBack(b.index)
}

// CanGoForward reports whether Forward would move.
func (b *Browser) CanGoForward() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return canGoForward(b.index, b.history)
}

// Navigate opens url, dropping any forward history.
func (b *Browser) Navigate(url string) BrowserState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history[:b.index+1], url)
	b.index = len(b.history) - 1
	b.current = url
	b.input = url
	return b.snapshot()
}

// Back moves one entry back. ok is false when there is nowhere to go.
func (b *Browser) Back() (state BrowserState, ok bool) {
	return b.step(-1)
}

// Forward moves one entry forward. ok is false when there is nowhere to go.
func (b *Browser) Forward() (state BrowserState, ok bool) {
	return b.step(1)
}

func (b *Browser) step(delta int) (BrowserState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if (delta < 0 && !canGoBack(b.index)) || (delta > 0 && !canGoForward(b.index, b.history)) {
		return b.snapshot(), false
	}
	b.index += delta
	b.current = b.history[b.index]
	b.input = b.current
	return b.snapshot(), true
}

// SetInput updates the address bar text without navigating.
func (b *Browser) SetInput(s string) BrowserState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.input = s
	return b.snapshot()
}

// SetLoading marks a page load as started or finished.
func (b *Browser) SetLoading(loading bool) BrowserState {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = loading
	return b.snapshot()
}

// Snapshot returns the current state.
func (b *Browser) Snapshot() BrowserState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

func (b *Browser) snapshot() BrowserState {
	return BrowserState{
		CurrentURL:   b.current,
		URLInput:     b.input,
		History:      append([]string{}, b.history...),
		Index:        b.index,
		Loading:      b.loading,
		CanGoBack:    canGoBack(b.index),
		CanGoForward: canGoForward(b.index, b.history),
	}
}
