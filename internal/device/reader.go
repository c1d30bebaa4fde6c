package device

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/oasis/internal/apperr"
)

// Reader themes.
const (
	ThemeCompact     = "compact"
	ThemeComfortable = "comfortable"
	ThemeSpacious    = "spacious"
)

// Reader font families.
const (
	FontBookerly    = "bookerly"
	FontAmazonEmber = "amazon-ember"
	FontNotoSerif   = "noto-serif"
	FontSystem      = "system"
)

const readerSettingKey = "reader"

// ReaderSettings controls post typography.
type ReaderSettings struct {
	Theme            string  `json:"theme"`
	FontSize         int     `json:"fontSize"`
	FontFamily       string  `json:"fontFamily"`
	MarginHorizontal int     `json:"marginHorizontal"`
	LineHeight       float64 `json:"lineHeight"`
}

// Validate validates the reader settings.
func (r *ReaderSettings) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Theme, validation.Required, validation.In(ThemeCompact, ThemeComfortable, ThemeSpacious)),
		validation.Field(&r.FontSize, validation.Required, validation.Min(10), validation.Max(40)),
		validation.Field(&r.FontFamily, validation.Required, validation.In(FontBookerly, FontAmazonEmber, FontNotoSerif, FontSystem)),
		validation.Field(&r.MarginHorizontal, validation.Min(0), validation.Max(64)),
		validation.Field(&r.LineHeight, validation.Required, validation.Min(1.0), validation.Max(3.0)),
	)
}

// DefaultReader returns the factory reader settings.
func DefaultReader() ReaderSettings {
	return ReaderSettings{
		Theme:            ThemeComfortable,
		FontSize:         18,
		FontFamily:       FontBookerly,
		MarginHorizontal: 16,
		LineHeight:       1.6,
	}
}

type preset struct {
	fontSize         int
	marginHorizontal int
	lineHeight       float64
}

var themePresets = map[string]preset{
	ThemeCompact:     {fontSize: 16, marginHorizontal: 8, lineHeight: 1.4},
	ThemeComfortable: {fontSize: 18, marginHorizontal: 16, lineHeight: 1.6},
	ThemeSpacious:    {fontSize: 20, marginHorizontal: 24, lineHeight: 1.8},
}

// ReaderPatch is a partial update; nil fields are left unchanged.
type ReaderPatch struct {
	Theme            *string  `json:"theme,omitempty"`
	FontSize         *int     `json:"fontSize,omitempty"`
	FontFamily       *string  `json:"fontFamily,omitempty"`
	MarginHorizontal *int     `json:"marginHorizontal,omitempty"`
	LineHeight       *float64 `json:"lineHeight,omitempty"`
}

func (p ReaderPatch) applyTo(r ReaderSettings) ReaderSettings {
	if p.Theme != nil {
		r.Theme = *p.Theme
	}
	if p.FontSize != nil {
		r.FontSize = *p.FontSize
	}
	if p.FontFamily != nil {
		r.FontFamily = *p.FontFamily
	}
	if p.MarginHorizontal != nil {
		r.MarginHorizontal = *p.MarginHorizontal
	}
	if p.LineHeight != nil {
		r.LineHeight = *p.LineHeight
	}
	return r
}

// ReaderPersister stores serialized settings by key.
type ReaderPersister interface {
	LoadSetting(key string) ([]byte, bool, error)
	SaveSetting(key string, value []byte) error
}

// ReaderStore owns the reader settings and writes every change through to
// its persister.
type ReaderStore struct {
	mu        sync.Mutex
	value     ReaderSettings
	persist   ReaderPersister
	observers []func(ReaderSettings)
}

// NewReaderStore loads saved settings from p, falling back to defaults when
// nothing usable is stored. p may be nil for an in-memory store.
func NewReaderStore(p ReaderPersister) (*ReaderStore, error) {
	s := &ReaderStore{value: DefaultReader(), persist: p}
	if p == nil {
		return s, nil
	}
	raw, ok, err := p.LoadSetting(readerSettingKey)
	if err != nil {
		return nil, fmt.Errorf("device: load reader settings: %w", err)
	}
	if ok {
		var saved ReaderSettings
		if err := json.Unmarshal(raw, &saved); err == nil && saved.Validate() == nil {
			s.value = saved
		}
	}
	return s, nil
}

// Get returns the current reader settings.
func (s *ReaderStore) Get() ReaderSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Subscribe registers fn to receive the new value after every change.
func (s *ReaderStore) Subscribe(fn func(ReaderSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Update merges patch into the current settings.
func (s *ReaderStore) Update(patch ReaderPatch) (ReaderSettings, error) {
	return s.apply(patch.applyTo)
}

// ApplyPreset switches to theme and takes its size, margin and line height.
func (s *ReaderStore) ApplyPreset(theme string) (ReaderSettings, error) {
	p, ok := themePresets[theme]
	if !ok {
		return s.Get(), fmt.Errorf("%w: unknown theme %q", apperr.ErrInvalidArgument, theme)
	}
	return s.apply(func(r ReaderSettings) ReaderSettings {
		r.Theme = theme
		r.FontSize = p.fontSize
		r.MarginHorizontal = p.marginHorizontal
		r.LineHeight = p.lineHeight
		return r
	})
}

// Reset restores the defaults.
func (s *ReaderStore) Reset() (ReaderSettings, error) {
	return s.apply(func(ReaderSettings) ReaderSettings { return DefaultReader() })
}

func (s *ReaderStore) apply(fn func(ReaderSettings) ReaderSettings) (ReaderSettings, error) {
	next, observers, err := s.commit(fn)
	if err != nil {
		return next, err
	}
	for _, o := range observers {
		o(next)
	}
	return next, nil
}

// commit validates and persists the new value before making it current.
// On error the current value is returned unchanged.
func (s *ReaderStore) commit(fn func(ReaderSettings) ReaderSettings) (ReaderSettings, []func(ReaderSettings), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.value)
	if err := next.Validate(); err != nil {
		return s.value, nil, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err)
	}
	if s.persist != nil {
		raw, err := json.Marshal(next)
		if err != nil {
			return s.value, nil, fmt.Errorf("device: encode reader settings: %w", err)
		}
		if err := s.persist.SaveSetting(readerSettingKey, raw); err != nil {
			return s.value, nil, fmt.Errorf("device: save reader settings: %w", err)
		}
	}
	s.value = next
	return next, slices.Clone(s.observers), nil
}
