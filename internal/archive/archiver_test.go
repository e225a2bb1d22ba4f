package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

func TestWriteOverflowCreatesFile(t *testing.T) {
	dir := t.TempDir()
	a := New(nil, dir, 1)

	a.writeOverflow(oddsmodel.FeedLogEntry{
		EventID: "sr:match:1", Timestamp: 1000, ProfileID: "p1", Payload: []byte("<odds_change/>"),
	})

	var found bool
	filepath.Walk(filepath.Join(dir, "feed_log"), func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			found = true
		}
		return nil
	})
	if !found {
		t.Fatal("expected writeOverflow to create a file under the overflow dir")
	}
}

func TestWriteOverflowNoopWithoutDir(t *testing.T) {
	a := New(nil, "", 1)
	// Must not panic or attempt any filesystem access.
	a.writeOverflow(oddsmodel.FeedLogEntry{EventID: "sr:match:1"})
}

func TestRotateRemovesOldestFilesOverBudget(t *testing.T) {
	dir := t.TempDir()
	a := New(nil, dir, 0) // maxOverflowGB=0 forces rotation on any content

	sub := filepath.Join(dir, "feed_log", "2026", "01", "01.jsonl.gz")
	if err := os.MkdirAll(filepath.Dir(sub), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sub, []byte("some archived content"), 0o644); err != nil {
		t.Fatal(err)
	}

	a.rotate()

	if _, err := os.Stat(sub); !os.IsNotExist(err) {
		t.Fatal("expected rotate to remove the file once over budget")
	}
}
