package repository

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/cv-parser/internal/common"
	"github.com/joseph-ayodele/cv-parser/internal/entity"
)

type SkillRepository interface {
	// Reconcile makes sure every name exists in the catalog and returns the
	// catalog rows for them, ordered by id.
	Reconcile(ctx context.Context, names []string) ([]entity.Skill, error)
	List(ctx context.Context) ([]entity.Skill, error)
}

type skillRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewSkillRepository(db *DB, logger *slog.Logger) SkillRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &skillRepository{db: db, logger: logger}
}

func (r *skillRepository) Reconcile(ctx context.Context, names []string) ([]entity.Skill, error) {
	names = dedupe(names)
	if len(names) == 0 {
		return []entity.Skill{}, nil
	}
	start := time.Now()
	log := common.LoggerFrom(ctx, r.logger)

	ins := r.db.builder().Insert("skills").Columns("name")
	for _, n := range names {
		ins.Values(n)
	}
	ins.OnConflict(entsql.ConflictColumns("name"), entsql.DoNothing())
	query, args := ins.Query()
	res, err := r.db.exec(ctx, query, args)
	if err != nil {
		log.Error("repository.skills.insert_failed", "error", err, "names", len(names))
		return nil, common.Wrapf(common.ErrPersistence, err, "insert skills")
	}
	created, _ := res.RowsAffected()

	args = make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	sel := r.db.builder().Select("id", "name").
		From(entsql.Table("skills")).
		Where(entsql.In("name", args...)).
		OrderBy("id")
	skills, err := r.scan(ctx, sel)
	if err != nil {
		log.Error("repository.skills.select_failed", "error", err)
		return nil, common.Wrapf(common.ErrPersistence, err, "select skills")
	}

	log.Info("repository.skills.reconciled",
		"requested", len(names),
		"created", created,
		"resolved", len(skills),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return skills, nil
}

func (r *skillRepository) List(ctx context.Context) ([]entity.Skill, error) {
	sel := r.db.builder().Select("id", "name").From(entsql.Table("skills")).OrderBy("id")
	skills, err := r.scan(ctx, sel)
	if err != nil {
		return nil, common.Wrapf(common.ErrPersistence, err, "list skills")
	}
	return skills, nil
}

func (r *skillRepository) scan(ctx context.Context, sel *entsql.Selector) ([]entity.Skill, error) {
	query, args := sel.Query()
	rows, err := r.db.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	skills := []entity.Skill{}
	for rows.Next() {
		var s entity.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// dedupe lowercases and trims names, drops empties and repeats, and sorts
// the result. Concurrent multi-row inserts must take row locks in one
// global order or Postgres can abort one of them as a deadlock.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
