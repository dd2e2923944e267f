package database

import (
	"strings"
	"testing"

	"github.com/iliyamo/lotty-marketplace/internal/config"
)

func TestSplitStatements(t *testing.T) {
	src := "CREATE TABLE a (id INT);\n\nCREATE TABLE b (\n  id INT\n);\n  \n"
	got := splitStatements(src)
	if len(got) != 2 {
		t.Fatalf("got %d statements: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INT)" || !strings.HasPrefix(got[1], "CREATE TABLE b") || strings.HasSuffix(got[1], ";") {
		t.Fatalf("unexpected statements %q", got)
	}
}

func TestEmbeddedMigrationsSplit(t *testing.T) {
	raw, err := migrationFS.ReadFile("migrations/001_init.sql")
	if err != nil {
		t.Fatal(err)
	}
	stmts := splitStatements(string(raw))
	if len(stmts) == 0 {
		t.Fatal("no statements in 001_init.sql")
	}
	for _, s := range stmts {
		if strings.Contains(s, ";\n") {
			t.Fatalf("statement not split: %q", s)
		}
	}
	for _, table := range []string{"users", "sessions", "subscriptions", "listings", "listing_images", "chats", "messages", "offers", "comments", "ratings"} {
		found := false
		for _, s := range stmts {
			if strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS "+table+" (") {
				found = true
			}
		}
		if !found {
			t.Fatalf("table %s missing", table)
		}
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.Config{DBUser: "lotty", DBPass: "p@ss:word", DBHost: "db", DBPort: "3306", DBName: "lotty"})
	for _, want := range []string{"lotty:p@ss:word@tcp(db:3306)/lotty", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn %q lacks %q", dsn, want)
		}
	}
}
