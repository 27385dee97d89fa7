package repository

import (
	"context"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

type CVRepository interface {
	// OwnerOf returns the user that uploaded the document.
	OwnerOf(ctx context.Context, cvID int64) (int64, error)
	Register(ctx context.Context, cvID, userID int64) error
}

type cvRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewCVRepository(db *DB, logger *slog.Logger) CVRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &cvRepository{db: db, logger: logger}
}

func (r *cvRepository) OwnerOf(ctx context.Context, cvID int64) (int64, error) {
	query, args := r.db.builder().Select("user_id").
		From(entsql.Table("cv")).
		Where(entsql.EQ("id", cvID)).
		Query()
	rows, err := r.db.query(ctx, query, args)
	if err != nil {
		return 0, common.Wrapf(common.ErrPersistence, err, "owner of cv %d", cvID)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return 0, common.Wrapf(common.ErrPersistence, err, "owner of cv %d", cvID)
		}
		return 0, fmt.Errorf("cv %d: %w", cvID, common.ErrNotFound)
	}
	var userID int64
	if err := rows.Scan(&userID); err != nil {
		return 0, common.Wrapf(common.ErrPersistence, err, "scan owner of cv %d", cvID)
	}
	return userID, nil
}

// Register records the owner of a document. Existing rows are left as they are.
func (r *cvRepository) Register(ctx context.Context, cvID, userID int64) error {
	query, args := r.db.builder().Insert("cv").
		Columns("id", "user_id").
		Values(cvID, userID).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()
	if _, err := r.db.exec(ctx, query, args); err != nil {
		return common.Wrapf(common.ErrPersistence, err, "register cv %d", cvID)
	}
	r.logger.Debug("repository.cv.registered", "cv_id", cvID, "user_id", userID)
	return nil
}
