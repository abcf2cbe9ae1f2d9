package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsCreateCoreTables(t *testing.T) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil || len(names) == 0 {
		t.Fatalf("expected embedded migrations, got %v err=%v", names, err)
	}
	var all strings.Builder
	for _, n := range names {
		b, err := migrationFiles.ReadFile(n)
		if err != nil {
			t.Fatalf("read %s: %v", n, err)
		}
		all.Write(b)
	}
	sql := all.String()
	for _, table := range []string{"tingkat_pendidikan", "materi", "nama_sub_materi", "isi_sub_materi", "quiz_soal", "quiz_opsi", "library", "profiles"} {
		if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Fatalf("missing table %s", table)
		}
	}
	if !strings.Contains(sql, "UNIQUE (user_id, mapel_id, level_id, materi_id)") {
		t.Fatalf("library uniqueness must be enforced by the schema")
	}
}
