package main

import (
	"fmt"
	"io"
	"os"

	"ruangbelajar/internal/db"
	"ruangbelajar/internal/library"
	"ruangbelajar/internal/seed"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply embedded database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		applied, err := db.Migrate(cmd.Context(), e.db)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", name)
		}
		return nil
	},
}

var yamlCmd = &cobra.Command{
	Use:   "yaml <file>",
	Short: "Import a curriculum bundle from YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importFile(cmd, args[0], seed.ParseYAML)
	},
}

var xlsxCmd = &cobra.Command{
	Use:   "xlsx <file>",
	Short: "Import a curriculum bundle from an Excel workbook",
	Long: "Sheets: mapel(id,nama_mapel,image_url), tingkat(id,nama_tingkat), " +
		"materi(id,judul,mapel_id,tingkat_id), sub_materi(id,materi_id,nama_submateri,dokumen,video), " +
		"soal(id,materi_id,pertanyaan,a,b,c,d,benar), event(id,name_event,image_event).",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importFile(cmd, args[0], seed.ParseWorkbook)
	},
}

var exportLibraryCmd = &cobra.Command{
	Use:   "export-library <user_id> <out.xlsx>",
	Short: "Export a learner's saved topics to an Excel workbook",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		raw, err := seed.ExportLibrary(cmd.Context(), library.NewService(e.db), args[0])
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[1], raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", args[1], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
		return nil
	},
}

func importFile(cmd *cobra.Command, path string, parse func(io.Reader) (*seed.Bundle, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bundle, err := parse(f)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	st, err := seed.Apply(cmd.Context(), e.db, bundle)
	if err != nil {
		return err
	}
	e.invalidate(cmd.Context())
	e.log.Info("bundle imported", "file", path, "topics", st.Topics, "questions", st.Questions)
	fmt.Fprintf(cmd.OutOrStdout(), "mapel=%d tingkat=%d materi=%d sub_materi=%d soal=%d event=%d\n",
		st.Subjects, st.Levels, st.Topics, st.SubTopics, st.Questions, st.Events)
	return nil
}
