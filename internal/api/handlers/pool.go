package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/poslogithub/magic-league-generator/internal/api/response"
	"github.com/poslogithub/magic-league-generator/internal/league"
	"github.com/poslogithub/magic-league-generator/internal/mtga/sealed"
)

// PoolRequest is the JSON form of a pool request.
type PoolRequest struct {
	PlayerID   string    `json:"player_id"`
	Sets       []string  `json:"sets"`
	PackCounts []int     `json:"pack_counts"`
	Mode       string    `json:"mode"`
	Anchor     time.Time `json:"anchor,omitempty"`
	Now        time.Time `json:"now,omitempty"`
}

func (p PoolRequest) toRequest() (sealed.PoolRequest, error) {
	mode, err := sealed.ParseMode(p.Mode)
	if err != nil {
		return sealed.PoolRequest{}, err
	}
	sets := make([]string, len(p.Sets))
	for i, s := range p.Sets {
		sets[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return sealed.PoolRequest{
		PlayerID:   p.PlayerID,
		Sets:       sets,
		PackCounts: p.PackCounts,
		Mode:       mode,
		Anchor:     p.Anchor,
		Now:        p.Now,
	}, nil
}

// PoolResponse is a generated pool with its decklist rendering.
type PoolResponse struct {
	Pool       *sealed.Pool `json:"pool"`
	Decklist   string       `json:"decklist"`
	Infeasible []string     `json:"infeasible,omitempty"`
}

// PoolHandler handles pool and period requests.
type PoolHandler struct {
	service *league.Service
}

// NewPoolHandler creates a new PoolHandler.
func NewPoolHandler(service *league.Service) *PoolHandler {
	return &PoolHandler{service: service}
}

// GeneratePool assembles a pool.
func (h *PoolHandler) GeneratePool(w http.ResponseWriter, r *http.Request) {
	var body PoolRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	req, err := body.toRequest()
	if err != nil {
		writeError(w, err)
		return
	}
	pool, err := h.service.Pool(req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, PoolResponse{
		Pool:       pool,
		Decklist:   h.service.ExportDecklist(pool),
		Infeasible: pool.Infeasible(),
	})
}

// GetPeriod returns the allotment period of a mode. Static mode takes the
// anchor query parameter in RFC 3339.
func (h *PoolHandler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	mode, err := sealed.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, err)
		return
	}

	var anchor time.Time
	if s := r.URL.Query().Get("anchor"); s != "" {
		anchor, err = time.Parse(time.RFC3339, s)
		if err != nil {
			response.BadRequest(w, errors.New("anchor must be an RFC 3339 timestamp"))
			return
		}
	}

	period, err := h.service.Period(mode, anchor)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, period)
}

// GetSets returns the set codes that can produce a pack.
func (h *PoolHandler) GetSets(w http.ResponseWriter, _ *http.Request) {
	sets := h.service.Sets()
	if sets == nil {
		sets = []string{}
	}
	response.Success(w, sets)
}
