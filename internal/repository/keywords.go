package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/entity"
)

type KeywordRepository interface {
	// Record stores the skill names extracted for a document. A second call for
	// the same document leaves the first row untouched and reports inserted=false.
	Record(ctx context.Context, cvID int64, skills []string) (inserted bool, err error)
	Get(ctx context.Context, cvID int64) (*entity.CVKeywords, error)
	List(ctx context.Context) ([]entity.CVKeywords, error)
}

type keywordRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewKeywordRepository(db *DB, logger *slog.Logger) KeywordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &keywordRepository{db: db, logger: logger}
}

func (r *keywordRepository) Record(ctx context.Context, cvID int64, skills []string) (bool, error) {
	start := time.Now()
	log := common.LoggerFrom(ctx, r.logger)
	if skills == nil {
		skills = []string{}
	}

	value, err := r.skillsValue(skills)
	if err != nil {
		return false, common.Wrapf(common.ErrPersistence, err, "encode skills")
	}
	query, args := r.db.builder().Insert("cv_keywords").
		Columns("cv_id", "skills").
		Values(cvID, value).
		OnConflict(entsql.ConflictColumns("cv_id"), entsql.DoNothing()).
		Query()
	res, err := r.db.exec(ctx, query, args)
	if err != nil {
		log.Error("repository.keywords.insert_failed", "error", err)
		return false, common.Wrapf(common.ErrPersistence, err, "insert cv_keywords for %d", cvID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, common.Wrapf(common.ErrPersistence, err, "rows affected")
	}

	log.Info("repository.keywords.recorded",
		"inserted", n > 0,
		"skills", len(skills),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return n > 0, nil
}

func (r *keywordRepository) Get(ctx context.Context, cvID int64) (*entity.CVKeywords, error) {
	sel := r.db.builder().Select("cv_id", "skills").
		From(entsql.Table("cv_keywords")).
		Where(entsql.EQ("cv_id", cvID))
	rows, err := r.list(ctx, sel)
	if err != nil {
		return nil, common.Wrapf(common.ErrPersistence, err, "get cv_keywords for %d", cvID)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cv_keywords for %d: %w", cvID, common.ErrNotFound)
	}
	return &rows[0], nil
}

func (r *keywordRepository) List(ctx context.Context) ([]entity.CVKeywords, error) {
	sel := r.db.builder().Select("cv_id", "skills").
		From(entsql.Table("cv_keywords")).
		OrderBy("cv_id")
	rows, err := r.list(ctx, sel)
	if err != nil {
		return nil, common.Wrapf(common.ErrPersistence, err, "list cv_keywords")
	}
	return rows, nil
}

func (r *keywordRepository) list(ctx context.Context, sel *entsql.Selector) ([]entity.CVKeywords, error) {
	query, args := sel.Query()
	rows, err := r.db.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.CVKeywords{}
	for rows.Next() {
		var kw entity.CVKeywords
		if err := rows.Scan(&kw.CVID, r.skillsScanner(&kw.Skills)); err != nil {
			return nil, err
		}
		if kw.Skills == nil {
			kw.Skills = []string{}
		}
		out = append(out, kw)
	}
	return out, rows.Err()
}

// skillsValue encodes the skills column: a native text[] on Postgres, a JSON array elsewhere.
func (r *keywordRepository) skillsValue(skills []string) (any, error) {
	if r.db.dialect == dialect.Postgres {
		return skills, nil
	}
	b, err := json.Marshal(skills)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *keywordRepository) skillsScanner(dst *[]string) sql.Scanner {
	if r.db.dialect == dialect.Postgres {
		return pgtype.NewMap().SQLScanner(dst)
	}
	return jsonStrings{dst: dst}
}

type jsonStrings struct {
	dst *[]string
}

func (j jsonStrings) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*j.dst = []string{}
		return nil
	case string:
		return json.Unmarshal([]byte(v), j.dst)
	case []byte:
		return json.Unmarshal(v, j.dst)
	default:
		return errors.New("skills column: unsupported type")
	}
}
