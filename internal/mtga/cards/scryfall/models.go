package scryfall

import (
	"errors"
	"fmt"
	"net/url"
)

// Card is a printing as returned by Scryfall.
type Card struct {
	ID       string `json:"id"`
	OracleID string `json:"oracle_id"`
	ArenaID  *int   `json:"arena_id,omitempty"`

	Name          string     `json:"name"`
	PrintedName   string     `json:"printed_name,omitempty"` // Localized name for non-English printings
	Lang          string     `json:"lang"`
	ReleasedAt    string     `json:"released_at"`
	Layout        string     `json:"layout"`
	ImageURIs     *ImageURIs `json:"image_uris,omitempty"`
	ManaCost      string     `json:"mana_cost,omitempty"`
	CMC           float64    `json:"cmc"`
	TypeLine      string     `json:"type_line"`
	OracleText    string     `json:"oracle_text,omitempty"`
	ColorIdentity []string   `json:"color_identity"`
	Keywords      []string   `json:"keywords,omitempty"`
	Games         []string   `json:"games,omitempty"`

	SetCode         string `json:"set"`
	SetName         string `json:"set_name"`
	SetType         string `json:"set_type"`
	CollectorNumber string `json:"collector_number"`
	Rarity          string `json:"rarity"`
	Booster         bool   `json:"booster"`
	Promo           bool   `json:"promo"`
	Digital         bool   `json:"digital"`

	// Card faces (for DFCs, MDFCs, split cards)
	CardFaces []CardFace `json:"card_faces,omitempty"`
}

// CardFace is one face of a multi-faced card.
type CardFace struct {
	Name        string     `json:"name"`
	PrintedName string     `json:"printed_name,omitempty"`
	ManaCost    string     `json:"mana_cost,omitempty"`
	TypeLine    string     `json:"type_line"`
	OracleText  string     `json:"oracle_text,omitempty"`
	ImageURIs   *ImageURIs `json:"image_uris,omitempty"`
}

// ImageURIs contains URLs for card images in various sizes.
type ImageURIs struct {
	Small      string `json:"small"`
	Normal     string `json:"normal"`
	Large      string `json:"large"`
	PNG        string `json:"png"`
	ArtCrop    string `json:"art_crop"`
	BorderCrop string `json:"border_crop"`
}

// ImageURL returns the normal-size image of the front or back face. Single
// faced cards have no back image.
func (c *Card) ImageURL(back bool) string {
	if !back && c.ImageURIs != nil {
		return c.ImageURIs.Normal
	}

	face := 0
	if back {
		face = 1
	}
	if len(c.CardFaces) > face && c.CardFaces[face].ImageURIs != nil {
		return c.CardFaces[face].ImageURIs.Normal
	}
	return ""
}

// DisplayName returns the printed name, falling back to the oracle name.
func (c *Card) DisplayName() string {
	if c.PrintedName != "" {
		return c.PrintedName
	}
	if len(c.CardFaces) > 0 && c.CardFaces[0].PrintedName != "" {
		return c.CardFaces[0].PrintedName
	}
	return c.Name
}

// Set is a Magic set.
type Set struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	ReleasedAt string `json:"released_at,omitempty"`
	SetType    string `json:"set_type"`
	CardCount  int    `json:"card_count"`
	Digital    bool   `json:"digital"`
}

// SearchResult is one page of search results.
type SearchResult struct {
	Object     string `json:"object"`
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	NextPage   string `json:"next_page,omitempty"`
	Data       []Card `json:"data"`
}

// SearchOptions are the optional search parameters.
type SearchOptions struct {
	Unique        string // cards, art or prints
	Order         string
	IncludeExtras bool
}

func (o SearchOptions) values(query string) url.Values {
	v := url.Values{}
	v.Set("q", query)
	if o.Unique != "" {
		v.Set("unique", o.Unique)
	}
	if o.Order != "" {
		v.Set("order", o.Order)
	}
	if o.IncludeExtras {
		v.Set("include_extras", "true")
	}
	return v
}

// APIError represents an error response from the Scryfall API.
type APIError struct {
	Object   string   `json:"object"`
	Code     string   `json:"code"`
	Status   int      `json:"status"`
	Details  string   `json:"details"`
	Type     string   `json:"type,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Details)
	}
	return fmt.Sprintf("Scryfall API error (HTTP %d): %s", e.Status, e.Code)
}

// NotFoundError represents a 404 error from the API.
type NotFoundError struct {
	URL string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
