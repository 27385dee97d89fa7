package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cv-parser/internal/export"
	"github.com/joseph-ayodele/cv-parser/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the skills, cv and cv_keywords tables when missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger := setup(cmd)
		db, err := openDB(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Migrate(cmd.Context())
	},
}

var dbhealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Check that the database is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger := setup(cmd)
		start := time.Now()
		db, err := openDB(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "database ok (%s, %dms)\n", db.Dialect(), time.Since(start).Milliseconds())
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the skill catalog and CV keywords to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger := setup(cmd)
		out, _ := cmd.Flags().GetString("out")

		db, err := openDB(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := export.NewService(repository.NewSkillRepository(db, logger), repository.NewKeywordRepository(db, logger), logger)
		xlsx, err := svc.ExportCatalogXLSX(cmd.Context())
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, xlsx, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		logger.Info("export written", "path", out, "bytes", len(xlsx))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <cv-id> <user-id>",
	Short: "Record the owner of a document (local and test databases)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cvID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("cv-id: %w", err)
		}
		userID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("user-id: %w", err)
		}
		cfg, logger := setup(cmd)
		db, err := openDB(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		return repository.NewCVRepository(db, logger).Register(cmd.Context(), cvID, userID)
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "cv-catalog.xlsx", "output file")
	rootCmd.AddCommand(migrateCmd, dbhealthCmd, exportCmd, registerCmd)
}
