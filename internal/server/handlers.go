package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/yourusername/bbl-multi-builder/internal/service"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	facade  *service.QueryFacade
	version string
}

func (h *handlers) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "BBL Multi Builder API",
		"version": h.version,
	})
}

func (h *handlers) listTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"teams": h.facade.ListTeams()})
}

func (h *handlers) listMatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": h.facade.ListMatches()})
}

func (h *handlers) listPlayers(w http.ResponseWriter, r *http.Request) {
	resp, err := h.facade.ListPlayers(mux.Vars(r)["team"])
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// teamRecommendations accepts repeated or comma separated market parameters
func (h *handlers) teamRecommendations(w http.ResponseWriter, r *http.Request) {
	var markets []string
	for _, v := range r.URL.Query()["market"] {
		markets = append(markets, strings.Split(v, ",")...)
	}

	resp, err := h.facade.GetRecommendations(mux.Vars(r)["team"], markets)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) matchRecommendations(w http.ResponseWriter, r *http.Request) {
	var req service.MatchRecommendationsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.facade.GetMatchRecommendations(req)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) buildMulti(w http.ResponseWriter, r *http.Request) {
	var req service.BuildMultiRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.facade.BuildMulti(req)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeJSON(w, http.StatusBadRequest, &service.APIError{
			Kind:       service.KindValidation,
			Identifier: "body",
			Message:    msg,
		})
		return false
	}
	return true
}

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeAPIError(w http.ResponseWriter, err error) {
	apiErr := service.Translate(err)
	writeJSON(w, apiErr.Status, apiErr)
}
