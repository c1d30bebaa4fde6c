package device

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWireless_AirplaneThenWifi(t *testing.T) {
	s := NewWirelessStore(WirelessSettings{WifiEnabled: true, WifiNetwork: "Home_Network", WifiSignal: 3})

	got := s.SetAirplaneMode(true)
	want := WirelessSettings{AirplaneMode: true, WifiNetwork: "Home_Network", WifiSignal: 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("after airplane on (-want +got):\n%s", diff)
	}

	got = s.SetWifiEnabled(true)
	want = WirelessSettings{WifiEnabled: true, WifiNetwork: "Home_Network", WifiSignal: 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("after wifi on (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, s.Get()); diff != "" {
		t.Errorf("Get disagrees with last transition (-want +got):\n%s", diff)
	}
}

func TestWireless_AirplaneOffDoesNotRestoreRadios(t *testing.T) {
	s := NewWirelessStore(WirelessSettings{WifiEnabled: true, BluetoothEnabled: true})
	s.SetAirplaneMode(true)
	got := s.SetAirplaneMode(false)
	if got.AirplaneMode || got.WifiEnabled || got.BluetoothEnabled {
		t.Errorf("radios restored after airplane off: %+v", got)
	}
}

func TestWireless_AirplaneOffKeepsRadiosWhenNotInAirplane(t *testing.T) {
	s := NewWirelessStore(WirelessSettings{WifiEnabled: true, BluetoothEnabled: true})
	got := s.SetAirplaneMode(false)
	if !got.WifiEnabled || !got.BluetoothEnabled {
		t.Errorf("radios changed: %+v", got)
	}
}

func TestWireless_DisablingRadioExitsAirplane(t *testing.T) {
	s := NewWirelessStore(DefaultWireless())
	s.SetAirplaneMode(true)

	got := s.SetBluetoothEnabled(false)
	if got.AirplaneMode {
		t.Error("disabling bluetooth must exit airplane mode")
	}

	s.SetAirplaneMode(true)
	got = s.SetWifiEnabled(false)
	if got.AirplaneMode {
		t.Error("disabling wifi must exit airplane mode")
	}
}

func TestWireless_DisplayFieldsPassThrough(t *testing.T) {
	s := NewWirelessStore(DefaultWireless())
	s.SetAirplaneMode(true)
	s.SetBluetoothEnabled(true)
	got := s.SetWifiEnabled(true)
	if got.WifiNetwork != "Home_Network" || got.WifiSignal != 3 {
		t.Errorf("display fields changed: %+v", got)
	}
}

func TestWireless_ObserversSeeEveryTransition(t *testing.T) {
	s := NewWirelessStore(DefaultWireless())
	var seen []WirelessSettings
	s.Subscribe(func(v WirelessSettings) { seen = append(seen, v) })

	s.SetAirplaneMode(true)
	s.SetBluetoothEnabled(true)

	if len(seen) != 2 {
		t.Fatalf("observer calls = %d, want 2", len(seen))
	}
	if !seen[0].AirplaneMode || seen[1].AirplaneMode || !seen[1].BluetoothEnabled {
		t.Errorf("observed = %+v", seen)
	}
}
