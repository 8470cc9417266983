package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/newsroom-agent/internal/types"
)

// Publication is one archived release of a story.
type Publication struct {
	ID             uuid.UUID  `json:"id"`
	StoryID        uuid.UUID  `json:"story_id"`
	DraftVersion   int        `json:"draft_version"`
	Content        string     `json:"content"`
	WordCount      int        `json:"word_count"`
	DestinationIDs []string   `json:"destination_ids"`
	PublishedAt    time.Time  `json:"published_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// SavePublication archives one published draft. The story ID is unique in
// the archive; a duplicate insert for the same story is rejected by the
// table constraint, preserving at-most-once publication downstream.
func (db *DB) SavePublication(ctx context.Context, storyID uuid.UUID, draft *types.Draft, record *types.PublicationRecord) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO publications (story_id, draft_version, content, word_count, destination_ids, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		storyID, draft.Version, draft.Content, draft.WordCount, record.DestinationIDs, record.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save publication for story %s: %w", storyID, err)
	}
	return nil
}

// GetPublication retrieves the archived publication for a story, or nil
// when the story was never published.
func (db *DB) GetPublication(ctx context.Context, storyID uuid.UUID) (*Publication, error) {
	var p Publication
	err := db.pool.QueryRow(ctx,
		`SELECT id, story_id, draft_version, content, word_count, destination_ids, published_at, archived_at
		 FROM publications WHERE story_id = $1`,
		storyID,
	).Scan(&p.ID, &p.StoryID, &p.DraftVersion, &p.Content, &p.WordCount, &p.DestinationIDs, &p.PublishedAt, &p.ArchivedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get publication for story %s: %w", storyID, err)
	}
	return &p, nil
}

// ListPublications retrieves recent publications, newest first.
func (db *DB) ListPublications(ctx context.Context, limit int) ([]Publication, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, story_id, draft_version, content, word_count, destination_ids, published_at, archived_at
		 FROM publications ORDER BY published_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list publications: %w", err)
	}
	defer rows.Close()

	var publications []Publication
	for rows.Next() {
		var p Publication
		if err := rows.Scan(&p.ID, &p.StoryID, &p.DraftVersion, &p.Content, &p.WordCount, &p.DestinationIDs, &p.PublishedAt, &p.ArchivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan publication: %w", err)
		}
		publications = append(publications, p)
	}
	return publications, nil
}
