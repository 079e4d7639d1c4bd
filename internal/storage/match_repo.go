package storage

import (
	"context"
	"fmt"
	"strings"

	"coursetrack/internal/models"
	"coursetrack/internal/util"
)

// MatchRepo stores opted-in handles per document fingerprint. Matching is
// content-addressed: two users who upload byte-identical documents land on
// the same fingerprint and see each other.
type MatchRepo struct {
	db *DB
}

func NewMatchRepo(db *DB) *MatchRepo {
	return &MatchRepo{db: db}
}

// Publish records a handle against a fingerprint. Re-publishing is
// idempotent; an avatar is only filled in when the stored one is empty.
func (r *MatchRepo) Publish(ctx context.Context, fingerprint, handle, avatarURL string) error {
	handle = util.NormalizeHandle(handle)
	if handle == "" {
		return fmt.Errorf("handle is required")
	}
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO shared_handles (fingerprint, handle, handle_lower, avatar_url)
VALUES ($1, $2, $3, NULLIF($4,''))
ON CONFLICT (fingerprint, handle_lower)
DO UPDATE SET avatar_url = COALESCE(shared_handles.avatar_url, EXCLUDED.avatar_url)`,
		fingerprint, handle, strings.ToLower(handle), avatarURL)
	if err != nil {
		return fmt.Errorf("publish handle: %w", err)
	}
	return nil
}

// Fetch returns every opted-in handle for a fingerprint, sorted by
// lower-cased handle, with the viewer's own entry flagged. Viewers who
// have not opted in on this fingerprint get ErrOptInRequired.
func (r *MatchRepo) Fetch(ctx context.Context, fingerprint, viewerHandle string) ([]models.MatchEntry, error) {
	viewer := strings.ToLower(util.NormalizeHandle(viewerHandle))
	if viewer == "" {
		return nil, fmt.Errorf("viewer handle is required")
	}
	rows, err := r.db.Pool.Query(ctx, `
SELECT handle, handle_lower, COALESCE(avatar_url,'')
FROM shared_handles
WHERE fingerprint=$1
ORDER BY handle_lower`, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("fetch handles: %w", err)
	}
	defer rows.Close()

	entries := make([]models.MatchEntry, 0)
	optedIn := false
	for rows.Next() {
		var handle, lower, avatar string
		if err := rows.Scan(&handle, &lower, &avatar); err != nil {
			return nil, fmt.Errorf("scan handle: %w", err)
		}
		isSelf := lower == viewer
		optedIn = optedIn || isSelf
		entries = append(entries, models.MatchEntry{Handle: handle, AvatarURL: avatar, IsSelf: isSelf})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate handles: %w", err)
	}
	if !optedIn {
		return nil, util.ErrOptInRequired
	}
	return entries, nil
}
