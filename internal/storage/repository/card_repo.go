package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/georgysavva/scany/sqlscan"

	"github.com/poslogithub/magic-league-generator/internal/mtga/cards"
	"github.com/poslogithub/magic-league-generator/internal/storage/models"
)

// CardRepository stores catalog printings and synced sets.
type CardRepository interface {
	// ListCards returns every stored card ordered by set and collector number.
	ListCards(ctx context.Context) ([]*models.Card, error)

	// ListCardsBySet returns the cards of one set ordered by collector number.
	ListCardsBySet(ctx context.Context, setCode string) ([]*models.Card, error)

	// LoadCatalog builds an in-memory catalog from every stored card.
	LoadCatalog(ctx context.Context) (*cards.Catalog, error)

	// ImageURIs returns the front and back image URIs of a printing.
	ImageURIs(ctx context.Context, setCode string, number int) (front, back string, err error)

	// ReplaceSet swaps a set's cards and record for new ones in one
	// transaction. On error the previous contents are left in place.
	ReplaceSet(ctx context.Context, set *models.CardSet, cards []*models.Card) error

	// ListSets returns the synced sets ordered by code.
	ListSets(ctx context.Context) ([]*models.CardSet, error)
}

type cardRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCardRepository creates a card repository. A nil logger uses slog.Default.
func NewCardRepository(db *sql.DB, logger *slog.Logger) CardRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &cardRepository{db: db, logger: logger}
}

const cardColumns = `id, scryfall_id, set_code, set_number, name, pretty_name, lang, cost,
	color_identity, card_type, sub_types, super_type, abilities, cmc, rarity, collectible,
	mtga_id, is_token, is_secondary_card, is_rebalanced, is_creature_card,
	is_noncreature_spell_card, is_land_card, image_uri, back_image_uri, imported_at`

// ReplaceSet swaps a set's cards and record for new ones in one transaction.
// Every row must belong to the set.
func (r *cardRepository) ReplaceSet(ctx context.Context, set *models.CardSet, rows []*models.Card) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteSet(ctx, tx, set.Code); err != nil {
		return err
	}
	if err := upsertCards(ctx, tx, set.Code, rows); err != nil {
		return err
	}
	if err := saveSet(ctx, tx, set); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit set %s: %w", set.Code, err)
	}
	r.logger.Debug("Replaced set", "set", set.Code, "cards", len(rows))
	return nil
}

// upsertCards writes rows of one set inside tx, keyed by Scryfall ID.
func upsertCards(ctx context.Context, tx *sql.Tx, setCode string, rows []*models.Card) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (
			scryfall_id, set_code, set_number, name, pretty_name, lang, cost,
			color_identity, card_type, sub_types, super_type, abilities, cmc, rarity, collectible,
			mtga_id, is_token, is_secondary_card, is_rebalanced, is_creature_card,
			is_noncreature_spell_card, is_land_card, image_uri, back_image_uri, imported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scryfall_id) DO UPDATE SET
			set_code = excluded.set_code,
			set_number = excluded.set_number,
			name = excluded.name,
			pretty_name = excluded.pretty_name,
			lang = excluded.lang,
			cost = excluded.cost,
			color_identity = excluded.color_identity,
			card_type = excluded.card_type,
			sub_types = excluded.sub_types,
			super_type = excluded.super_type,
			abilities = excluded.abilities,
			cmc = excluded.cmc,
			rarity = excluded.rarity,
			collectible = excluded.collectible,
			mtga_id = excluded.mtga_id,
			is_token = excluded.is_token,
			is_secondary_card = excluded.is_secondary_card,
			is_rebalanced = excluded.is_rebalanced,
			is_creature_card = excluded.is_creature_card,
			is_noncreature_spell_card = excluded.is_noncreature_spell_card,
			is_land_card = excluded.is_land_card,
			image_uri = excluded.image_uri,
			back_image_uri = excluded.back_image_uri,
			imported_at = excluded.imported_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare card upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, c := range rows {
		if c.SetCode != setCode {
			return fmt.Errorf("card %s belongs to set %s, not %s", c.Name, c.SetCode, setCode)
		}
		if c.ImportedAt == "" {
			c.ImportedAt = now
		}
		_, err := stmt.ExecContext(ctx,
			c.ScryfallID, c.SetCode, c.SetNumber, c.Name, c.PrettyName, c.Lang, c.Cost,
			c.ColorIdentity, c.CardType, c.SubTypes, c.SuperType, c.Abilities, c.CMC, c.Rarity, c.Collectible,
			c.MtgaID, c.IsToken, c.IsSecondaryCard, c.IsRebalanced, c.IsCreatureCard,
			c.IsNoncreatureSpellCard, c.IsLandCard, c.ImageURI, c.BackImageURI, c.ImportedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save card %s (%s %d): %w", c.Name, c.SetCode, c.SetNumber, err)
		}
	}
	return nil
}

// ListCards returns every stored card ordered by set and collector number.
func (r *cardRepository) ListCards(ctx context.Context) ([]*models.Card, error) {
	var rows []*models.Card
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY set_code, set_number, id`
	if err := sqlscan.Select(ctx, r.db, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return rows, nil
}

// ListCardsBySet returns the cards of one set ordered by collector number.
func (r *cardRepository) ListCardsBySet(ctx context.Context, setCode string) ([]*models.Card, error) {
	var rows []*models.Card
	query := `SELECT ` + cardColumns + ` FROM cards WHERE set_code = ? ORDER BY set_number, id`
	if err := sqlscan.Select(ctx, r.db, &rows, query, setCode); err != nil {
		return nil, fmt.Errorf("failed to list cards for set %s: %w", setCode, err)
	}
	return rows, nil
}

// LoadCatalog builds an in-memory catalog from every stored card. Rows that
// cannot be converted are logged and skipped.
func (r *cardRepository) LoadCatalog(ctx context.Context) (*cards.Catalog, error) {
	rows, err := r.ListCards(ctx)
	if err != nil {
		return nil, err
	}

	all := make([]*cards.Card, 0, len(rows))
	for _, row := range rows {
		c, err := row.ToCard()
		if err != nil {
			r.logger.Warn("Skipping unreadable card", "scryfall_id", row.ScryfallID, "error", err)
			continue
		}
		all = append(all, c)
	}

	r.logger.Debug("Loaded catalog", "cards", len(all))
	return cards.NewCatalog(all), nil
}

// ImageURIs returns the image URIs of the last stored printing at the
// collector number.
func (r *cardRepository) ImageURIs(ctx context.Context, setCode string, number int) (string, string, error) {
	var row struct {
		ImageURI     string `db:"image_uri"`
		BackImageURI string `db:"back_image_uri"`
	}
	query := `SELECT image_uri, back_image_uri FROM cards
		WHERE set_code = ? AND set_number = ? AND image_uri != ''
		ORDER BY id DESC LIMIT 1`
	if err := sqlscan.Get(ctx, r.db, &row, query, setCode, number); err != nil {
		if sqlscan.NotFound(err) {
			return "", "", fmt.Errorf("%s %d: %w", setCode, number, cards.ErrCardNotFound)
		}
		return "", "", fmt.Errorf("failed to get image uris: %w", err)
	}
	return row.ImageURI, row.BackImageURI, nil
}

func deleteSet(ctx context.Context, tx *sql.Tx, setCode string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM cards WHERE set_code = ?`, setCode); err != nil {
		return fmt.Errorf("failed to delete cards for set %s: %w", setCode, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM card_sets WHERE code = ?`, setCode); err != nil {
		return fmt.Errorf("failed to delete set %s: %w", setCode, err)
	}
	return nil
}

func saveSet(ctx context.Context, tx *sql.Tx, set *models.CardSet) error {
	if set.SyncedAt == "" {
		set.SyncedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO card_sets (code, name, released_at, card_count, synced_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			released_at = excluded.released_at,
			card_count = excluded.card_count,
			synced_at = excluded.synced_at
	`, set.Code, set.Name, set.ReleasedAt, set.CardCount, set.SyncedAt)
	if err != nil {
		return fmt.Errorf("failed to save set %s: %w", set.Code, err)
	}
	return nil
}

// ListSets returns the synced sets ordered by code.
func (r *cardRepository) ListSets(ctx context.Context) ([]*models.CardSet, error) {
	var sets []*models.CardSet
	query := `SELECT code, name, released_at, card_count, synced_at FROM card_sets ORDER BY code`
	if err := sqlscan.Select(ctx, r.db, &sets, query); err != nil {
		return nil, fmt.Errorf("failed to list sets: %w", err)
	}
	return sets, nil
}
