package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cv-parser/internal/entity"
)

const (
	SkillsSheet   = "Skills"
	KeywordsSheet = "CV Keywords"
)

type SkillLister interface {
	List(ctx context.Context) ([]entity.Skill, error)
}

type KeywordLister interface {
	List(ctx context.Context) ([]entity.CVKeywords, error)
}

// Service is a tiny façade over repositories that produces XLSX bytes for exports.
type Service struct {
	skills   SkillLister
	keywords KeywordLister
	logger   *slog.Logger
}

func NewService(skills SkillLister, keywords KeywordLister, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{skills: skills, keywords: keywords, logger: logger}
}

// ExportCatalogXLSX returns a workbook with the skill catalog on one sheet and
// every recorded CV's skills on another.
func (s *Service) ExportCatalogXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	skills, err := s.skills.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	keywords, err := s.keywords.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query cv keywords: %w", err)
	}

	usage := make(map[string]int, len(skills))
	for _, kw := range keywords {
		for _, name := range kw.Skills {
			usage[name]++
		}
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SkillsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(KeywordsSheet); err != nil {
		return nil, err
	}

	writeRow(f, SkillsSheet, 1, "ID", "Name", "CVs")
	for i, sk := range skills {
		writeRow(f, SkillsSheet, i+2, sk.ID, sk.Name, usage[sk.Name])
	}

	writeRow(f, KeywordsSheet, 1, "CV ID", "Skill Count", "Skills")
	for i, kw := range keywords {
		writeRow(f, KeywordsSheet, i+2, kw.CVID, len(kw.Skills), strings.Join(kw.Skills, ", "))
	}

	_ = f.SetColWidth(SkillsSheet, "A", "A", 10)
	_ = f.SetColWidth(SkillsSheet, "B", "B", 32)
	_ = f.SetColWidth(KeywordsSheet, "A", "B", 12)
	_ = f.SetColWidth(KeywordsSheet, "C", "C", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"skills", len(skills),
		"cvs", len(keywords),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
