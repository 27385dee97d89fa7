package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cv-parser/internal/entity"
)

type skillList []entity.Skill

func (s skillList) List(context.Context) ([]entity.Skill, error) { return s, nil }

type keywordList []entity.CVKeywords

func (k keywordList) List(context.Context) ([]entity.CVKeywords, error) { return k, nil }

type failingKeywords struct{}

func (failingKeywords) List(context.Context) ([]entity.CVKeywords, error) {
	return nil, errors.New("db down")
}

func TestExportCatalogXLSX(t *testing.T) {
	svc := NewService(
		skillList{{ID: 1, Name: "sql"}, {ID: 2, Name: "python"}},
		keywordList{{CVID: 42, Skills: []string{"sql", "python"}}, {CVID: 43, Skills: []string{"sql"}}},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	data, err := svc.ExportCatalogXLSX(context.Background())
	if err != nil {
		t.Fatalf("ExportCatalogXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SkillsSheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", SkillsSheet, err)
	}
	if len(rows) != 3 || rows[1][1] != "sql" || rows[1][2] != "2" || rows[2][2] != "1" {
		t.Fatalf("skills sheet = %v", rows)
	}

	rows, err = f.GetRows(KeywordsSheet)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", KeywordsSheet, err)
	}
	if len(rows) != 3 || rows[1][0] != "42" || rows[1][2] != "sql, python" {
		t.Fatalf("keywords sheet = %v", rows)
	}
}

func TestExportPropagatesQueryErrors(t *testing.T) {
	svc := NewService(skillList{}, failingKeywords{}, nil)
	if _, err := svc.ExportCatalogXLSX(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
