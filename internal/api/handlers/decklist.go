package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/poslogithub/magic-league-generator/internal/api/response"
	"github.com/poslogithub/magic-league-generator/internal/league"
	"github.com/poslogithub/magic-league-generator/internal/mtga/decklist"
)

// ImageRenderer draws a decklist as PNG. *deckimage.Composer implements it.
type ImageRenderer interface {
	WritePNG(ctx context.Context, w io.Writer, deck, sideboard *decklist.Cards) ([]string, error)
}

// DecklistRequest carries a decklist and the pool it is checked against.
type DecklistRequest struct {
	PoolRequest
	Decklist     string `json:"decklist"`
	StripInvalid bool   `json:"strip_invalid,omitempty"`
	AddUnused    bool   `json:"add_unused,omitempty"`
}

// FixResponse is a corrected decklist with the validation that produced it.
type FixResponse struct {
	Decklist   string                   `json:"decklist"`
	Changed    bool                     `json:"changed"`
	Validation *league.ValidationResult `json:"validation"`
}

// DecklistHandler handles decklist requests.
type DecklistHandler struct {
	service *league.Service
	images  ImageRenderer
}

// NewDecklistHandler creates a new DecklistHandler. images may be nil, in
// which case image requests are refused.
func NewDecklistHandler(service *league.Service, images ImageRenderer) *DecklistHandler {
	return &DecklistHandler{service: service, images: images}
}

func decodeDecklistRequest(r *http.Request) (*DecklistRequest, error) {
	var body DecklistRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.New("invalid request body")
	}
	if strings.TrimSpace(body.Decklist) == "" {
		return nil, errors.New("decklist is required")
	}
	return &body, nil
}

// Validate checks a decklist against the regenerated pool.
func (h *DecklistHandler) Validate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeDecklistRequest(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Validate(req, body.Decklist)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, result)
}

// Fix returns the decklist corrected as requested.
func (h *DecklistHandler) Fix(w http.ResponseWriter, r *http.Request) {
	body, err := decodeDecklistRequest(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeError(w, err)
		return
	}

	fixed, result, err := h.service.Fix(req, body.Decklist, league.FixOptions{
		StripInvalid: body.StripInvalid,
		AddUnused:    body.AddUnused,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, FixResponse{
		Decklist:   fixed,
		Changed:    fixed != body.Decklist,
		Validation: result,
	})
}

// Parse splits a plain-text decklist into deck and sideboard counts.
func (h *DecklistHandler) Parse(w http.ResponseWriter, r *http.Request) {
	text, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	deck, side := decklist.Separate(string(text))
	response.Success(w, map[string]*decklist.Cards{
		"deck":      decklist.Parse(deck, false),
		"sideboard": decklist.Parse(side, false),
	})
}

// Image renders a plain-text decklist as PNG. Cards that could not be drawn
// are listed in the response.MissingCardsHeader header.
func (h *DecklistHandler) Image(w http.ResponseWriter, r *http.Request) {
	if h.images == nil {
		response.ServiceUnavailable(w, errors.New("card images are not configured"))
		return
	}
	text, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	deckText, sideText := decklist.Separate(string(text))
	var buf bytes.Buffer
	misses, err := h.images.WritePNG(r.Context(), &buf, decklist.Parse(deckText, false), decklist.Parse(sideText, false))
	if err != nil {
		writeError(w, err)
		return
	}

	response.PNG(w, buf.Bytes(), misses)
}
