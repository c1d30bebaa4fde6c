package api

import (
	"net/http"
	"strings"
)

// GetBrowser handles GET /api/browser.
//
//	@Summary		Get browser history state
//	@Tags			browser
//	@Produce		json
//	@Success		200	{object}	BrowserState
//	@Security		BearerAuth
//	@Router			/browser [get]
func (h *Handler) GetBrowser(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.browser.Snapshot())
}

// Navigate handles POST /api/browser/navigate.
//
//	@Summary		Open a URL, dropping any forward history
//	@Tags			browser
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NavigateRequest	true	"Target URL"
//	@Success		200		{object}	BrowserState
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/browser/navigate [post]
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("url is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.browser.Navigate(url))
}

// Back handles POST /api/browser/back.
//
//	@Summary		Go back one history entry
//	@Tags			browser
//	@Produce		json
//	@Success		200	{object}	BrowserState
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/browser/back [post]
func (h *Handler) Back(w http.ResponseWriter, _ *http.Request) {
	state, ok := h.browser.Back()
	if !ok {
		writeJSON(w, http.StatusConflict, errorBody("no previous page"))
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// Forward handles POST /api/browser/forward.
//
//	@Summary		Go forward one history entry
//	@Tags			browser
//	@Produce		json
//	@Success		200	{object}	BrowserState
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/browser/forward [post]
func (h *Handler) Forward(w http.ResponseWriter, _ *http.Request) {
	state, ok := h.browser.Forward()
	if !ok {
		writeJSON(w, http.StatusConflict, errorBody("no next page"))
		return
	}
	writeJSON(w, http.StatusOK, state)
}
