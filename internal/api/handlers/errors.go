package handlers

import (
	"errors"
	"net/http"

	"github.com/poslogithub/magic-league-generator/internal/api/response"
	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
	"github.com/poslogithub/magic-league-generator/internal/mtga/deckimage"
	"github.com/poslogithub/magic-league-generator/internal/mtga/sealed"
)

// writeError maps domain errors to status codes. Request problems are 400,
// unknown cards 404, anything else 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sealed.ErrConfiguration), errors.Is(err, deckimage.ErrEmptyDecklist):
		response.BadRequest(w, err)
	case errors.Is(err, cards.ErrCardNotFound):
		response.NotFound(w, err)
	default:
		response.InternalError(w, err)
	}
}
