package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/internal/api/store"
)

type videosRepo struct {
	db *sql.DB
}

func (r *videosRepo) CreateVideo(ctx context.Context, v domain.Video) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO videos (id, owner_id, video_file, thumbnail, title, description,
			duration, views, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OwnerID, v.VideoFile, v.Thumbnail, v.Title, v.Description,
		v.Duration, v.Views, v.IsPublished, toMillis(v.CreatedAt), toMillis(v.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *videosRepo) GetVideoByID(ctx context.Context, id string) (domain.Video, error) {
	var (
		v                    domain.Video
		createdAt, updatedAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, video_file, thumbnail, title, description,
			duration, views, is_published, created_at, updated_at
		FROM videos WHERE id = ?`, id,
	).Scan(
		&v.ID, &v.OwnerID, &v.VideoFile, &v.Thumbnail, &v.Title, &v.Description,
		&v.Duration, &v.Views, &v.IsPublished, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.Video{}, mapNotFound(err)
	}

	v.CreatedAt = fromMillis(createdAt)
	v.UpdatedAt = fromMillis(updatedAt)
	return v, nil
}

func (r *videosRepo) IncrementVideoViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE videos SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res, store.ErrNotFound)
}

func (r *videosRepo) SetVideoPublished(ctx context.Context, id string, published bool, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE videos SET is_published = ?, updated_at = ? WHERE id = ?`,
		published, toMillis(now), id,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res, store.ErrNotFound)
}
