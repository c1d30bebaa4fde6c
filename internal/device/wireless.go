// Package device holds the simulated e-reader's settings state: wireless
// radios, reader typography and the in-app browser history.
//
// Each store owns exactly one value. Stores are constructed explicitly and
// handed to their consumers; the package keeps no global state.
package device

import (
	"slices"
	"sync"
)

// WirelessSettings is the radio state shown in the control center.
// WifiNetwork and WifiSignal are display-only and never changed by transitions.
type WirelessSettings struct {
	AirplaneMode     bool   `json:"airplaneMode"`
	WifiEnabled      bool   `json:"wifiEnabled"`
	WifiNetwork      string `json:"wifiNetwork"`
	WifiSignal       int    `json:"wifiSignal"`
	BluetoothEnabled bool   `json:"bluetoothEnabled"`
}

// DefaultWireless returns the state a fresh session starts with.
func DefaultWireless() WirelessSettings {
	return WirelessSettings{
		AirplaneMode:     false,
		WifiEnabled:      true,
		WifiNetwork:      "Home_Network",
		WifiSignal:       3,
		BluetoothEnabled: false,
	}
}

// WirelessStore owns one WirelessSettings value. The three Set methods are
// its only mutators; each replaces the whole value at once.
type WirelessStore struct {
	mu        sync.Mutex
	value     WirelessSettings
	observers []func(WirelessSettings)
}

// NewWirelessStore creates a store holding initial.
func NewWirelessStore(initial WirelessSettings) *WirelessStore {
	return &WirelessStore{value: initial}
}

// Get returns the current settings.
func (s *WirelessStore) Get() WirelessSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Subscribe registers fn to receive the new value after every transition.
func (s *WirelessStore) Subscribe(fn func(WirelessSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// SetAirplaneMode enters or leaves airplane mode. Entering forces both radios
// off. Leaving does not bring them back; the user re-enables them one by one.
func (s *WirelessStore) SetAirplaneMode(enabled bool) WirelessSettings {
	return s.apply(func(v WirelessSettings) WirelessSettings {
		v.AirplaneMode = enabled
		if enabled {
			v.WifiEnabled = false
			v.BluetoothEnabled = false
		}
		return v
	})
}

// SetWifiEnabled switches Wi-Fi and always leaves airplane mode.
func (s *WirelessStore) SetWifiEnabled(enabled bool) WirelessSettings {
	return s.apply(func(v WirelessSettings) WirelessSettings {
		v.WifiEnabled = enabled
		v.AirplaneMode = false
		return v
	})
}

// SetBluetoothEnabled switches Bluetooth and always leaves airplane mode.
func (s *WirelessStore) SetBluetoothEnabled(enabled bool) WirelessSettings {
	return s.apply(func(v WirelessSettings) WirelessSettings {
		v.BluetoothEnabled = enabled
		v.AirplaneMode = false
		return v
	})
}

func (s *WirelessStore) apply(fn func(WirelessSettings) WirelessSettings) WirelessSettings {
	s.mu.Lock()
	s.value = fn(s.value)
	next := s.value
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o(next)
	}
	return next
}
