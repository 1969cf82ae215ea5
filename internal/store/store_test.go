package store

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"herbar/client/internal/catalog"
)

func TestMigrationsHaveMatchingUpAndDownFiles(t *testing.T) {
	entries, err := fsReadDir(t)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	pattern := regexp.MustCompile(`^(\d+)_.*\.(up|down)\.sql$`)
	byVersion := map[string]map[string]bool{}
	for _, name := range entries {
		match := pattern.FindStringSubmatch(name)
		if match == nil {
			t.Fatalf("unexpected migration file name %s", name)
		}
		version, direction := match[1], match[2]
		if byVersion[version] == nil {
			byVersion[version] = map[string]bool{}
		}
		byVersion[version][direction] = true
	}
	if len(byVersion) == 0 {
		t.Fatal("no migrations discovered")
	}
	for version, dirs := range byVersion {
		if !dirs["up"] || !dirs["down"] {
			t.Fatalf("version %s must include both up and down files", version)
		}
	}
}

func fsReadDir(t *testing.T) ([]string, error) {
	t.Helper()
	files, err := upMigrations(Migrations())
	if err != nil {
		return nil, err
	}
	var names []string
	for _, f := range files {
		names = append(names, f, strings.TrimSuffix(f, ".up.sql")+".down.sql")
	}
	for _, n := range names {
		if _, err := Migrations().Open(n); err != nil {
			return nil, err
		}
	}
	return names, nil
}

func TestUpMigrationsSortedAndFiltered(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_b.up.sql":   {Data: []byte("SELECT 2")},
		"0001_a.up.sql":   {Data: []byte("SELECT 1")},
		"0001_a.down.sql": {Data: []byte("SELECT 0")},
		"README.md":       {Data: []byte("notes")},
	}
	files, err := upMigrations(fsys)
	if err != nil {
		t.Fatalf("upMigrations failed: %v", err)
	}
	if len(files) != 2 || files[0] != "0001_a.up.sql" || files[1] != "0002_b.up.sql" {
		t.Fatalf("unexpected order %v", files)
	}
}

func TestEncodeJSONNil(t *testing.T) {
	got, err := encodeJSON([]string(nil), "[]")
	if err != nil || got != "[]" {
		t.Fatalf("expected [], got %q (%v)", got, err)
	}
	list, err := decodeList(`["afide","paianjen rosu"]`)
	if err != nil || len(list) != 2 {
		t.Fatalf("unexpected list %v (%v)", list, err)
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("HERBAR_TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("HERBAR_TEST_DATABASE_URL is not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS plant_details, plants, schema_migrations`); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if err := ApplyMigrations(ctx, db, Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := ApplyMigrations(ctx, db, Migrations()); err != nil {
		t.Fatalf("second migrate must be a no-op: %v", err)
	}

	s := NewPostgresStore(db)
	err = s.UpsertRecords(ctx, []catalog.Record{
		{ID: 1, Name: "Aloe", Tags: []string{"usor"}, Toxicity: 1},
		{ID: 2, Name: "Calathea", CareGuide: "umiditate ridicata", Classification: map[string]string{"familie": "Marantaceae"}},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	records, err := s.FetchAll(ctx)
	if err != nil || len(records) != 2 || records[0].Tags[0] != "usor" {
		t.Fatalf("unexpected records %+v (%v)", records, err)
	}
	d, err := s.FetchDetail(ctx, 2)
	if err != nil || d.Classification["familie"] != "Marantaceae" {
		t.Fatalf("unexpected detail %+v (%v)", d, err)
	}
	if _, err := s.FetchDetail(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
