package api

import (
	"net/http"

	"github.com/starford/oasis/internal/device"
)

// GetWireless handles GET /api/settings/wireless.
//
//	@Summary		Get wireless settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	WirelessSettings
//	@Security		BearerAuth
//	@Router			/settings/wireless [get]
func (h *Handler) GetWireless(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.wireless.Get())
}

// SetAirplane handles PUT /api/settings/wireless/airplane.
//
//	@Summary		Toggle airplane mode; enabling it turns both radios off
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ToggleRequest	true	"New state"
//	@Success		200		{object}	WirelessSettings
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/wireless/airplane [put]
func (h *Handler) SetAirplane(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.wireless.SetAirplaneMode)
}

// SetWifi handles PUT /api/settings/wireless/wifi.
//
//	@Summary		Toggle Wi-Fi; always leaves airplane mode off
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ToggleRequest	true	"New state"
//	@Success		200		{object}	WirelessSettings
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/wireless/wifi [put]
func (h *Handler) SetWifi(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.wireless.SetWifiEnabled)
}

// SetBluetooth handles PUT /api/settings/wireless/bluetooth.
//
//	@Summary		Toggle Bluetooth; always leaves airplane mode off
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ToggleRequest	true	"New state"
//	@Success		200		{object}	WirelessSettings
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/wireless/bluetooth [put]
func (h *Handler) SetBluetooth(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.wireless.SetBluetoothEnabled)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, set func(bool) device.WirelessSettings) {
	var req ToggleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("enabled is required"))
		return
	}
	writeJSON(w, http.StatusOK, set(*req.Enabled))
}

// GetReader handles GET /api/settings/reader.
//
//	@Summary		Get reader typography settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	ReaderSettings
//	@Security		BearerAuth
//	@Router			/settings/reader [get]
func (h *Handler) GetReader(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.reader.Get())
}

// UpdateReader handles PATCH /api/settings/reader.
//
//	@Summary		Merge fields into the reader settings
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ReaderPatch	true	"Fields to change"
//	@Success		200		{object}	ReaderSettings
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/reader [patch]
func (h *Handler) UpdateReader(w http.ResponseWriter, r *http.Request) {
	var patch ReaderPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	next, err := h.reader.Update(patch)
	if err != nil {
		writeError(w, "update reader settings", err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// ApplyReaderPreset handles POST /api/settings/reader/preset.
//
//	@Summary		Apply a theme preset
//	@Tags			settings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PresetRequest	true	"Theme"
//	@Success		200		{object}	ReaderSettings
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/settings/reader/preset [post]
func (h *Handler) ApplyReaderPreset(w http.ResponseWriter, r *http.Request) {
	var req PresetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next, err := h.reader.ApplyPreset(req.Theme)
	if err != nil {
		writeError(w, "apply reader preset", err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// ResetReader handles POST /api/settings/reader/reset.
//
//	@Summary		Restore default reader settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	ReaderSettings
//	@Security		BearerAuth
//	@Router			/settings/reader/reset [post]
func (h *Handler) ResetReader(w http.ResponseWriter, _ *http.Request) {
	next, err := h.reader.Reset()
	if err != nil {
		writeError(w, "reset reader settings", err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}
