// Package archive implements the FeedArchiver spec §4.6 describes: a
// best-effort, fire-and-forget sink that serializes a (possibly boosted)
// message to the canonical XML form and writes it to the document store.
// Serialization and write failures are logged and swallowed — archival
// never blocks or fails a publication.
//
// Grounded on the teacher's internal/archive.Archiver (periodic
// best-effort cycle, swallow-and-log) and internal/persist's mongo
// connect/index-ensure pattern, adapted from trade cold-storage to the
// feed_log document this spec's archiver writes. The teacher's local-disk
// overflow/rotation logic — originally the landing zone ahead of an S3
// cold-storage tier this spec has no use for — is kept here as the
// fallback sink when MongoDB itself is unreachable, so writes are never
// simply dropped on a store outage.
package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

// Archiver implements router.Archiver: it writes FeedLogEntry documents to
// the feed_log collection, falling back to local gzipped NDJSON when the
// write fails, and periodically rotating that overflow directory to stay
// under a size budget.
type Archiver struct {
	db          *mongo.Database
	overflowDir string
	maxBytes    int64

	wg sync.WaitGroup
}

// New creates an Archiver writing through db, with overflowDir as the
// fallback landing zone (capped at maxOverflowGB) for writes that fail
// while MongoDB is unreachable. overflowDir == "" disables the fallback;
// writes that fail are simply logged and dropped.
func New(db *mongo.Database, overflowDir string, maxOverflowGB int) *Archiver {
	return &Archiver{
		db:          db,
		overflowDir: overflowDir,
		maxBytes:    int64(maxOverflowGB) * 1 << 30,
	}
}

// Archive serializes message to the canonical XML form, wraps it in a
// FeedLogEntry, and writes it asynchronously. profileID == "" encodes the
// "null profile" case (a broadcast of a message that was never boosted).
// Archive never blocks the caller and never returns an error; all failures
// are logged.
func (a *Archiver) Archive(profileID string, message oddsmodel.Message) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.archive(profileID, message)
	}()
}

// Wait blocks until every in-flight Archive call has completed. Intended
// for graceful shutdown, not the hot path.
func (a *Archiver) Wait() {
	a.wg.Wait()
}

func (a *Archiver) archive(profileID string, message oddsmodel.Message) {
	payload, err := xml.Marshal(message)
	if err != nil {
		log.Printf("archive: serialize event %s: %v", message.EventID, err)
		return
	}

	entry := oddsmodel.FeedLogEntry{
		EventID:   message.EventID,
		Timestamp: message.Timestamp,
		Payload:   payload,
		ProfileID: profileID,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := a.db.Collection("feed_log").InsertOne(ctx, entry); err != nil {
		log.Printf("archive: write event %s to document store failed, falling back to overflow: %v", message.EventID, err)
		a.writeOverflow(entry)
	}
}

// writeOverflow appends entry to today's gzipped overflow file, as one
// tab-separated line (eventId, timestamp, profileId, XML payload), when
// the primary document-store write failed. Best effort: failures here are
// also logged and swallowed — there is no further fallback.
func (a *Archiver) writeOverflow(entry oddsmodel.FeedLogEntry) {
	if a.overflowDir == "" {
		return
	}

	day := time.Now().UTC().Format("2006/01/02")
	path := filepath.Join(a.overflowDir, "feed_log", day+".jsonl.gz")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("archive: overflow mkdir: %v", err)
		return
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("archive: overflow open: %v", err)
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	fmt.Fprintf(gz, "%s\t%d\t%s\t%s\n", entry.EventID, entry.Timestamp, entry.ProfileID, entry.Payload)
	if err := gz.Close(); err != nil {
		log.Printf("archive: overflow gzip: %v", err)
		return
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		log.Printf("archive: overflow write: %v", err)
	}
}

// RunOverflowRotation periodically deletes the oldest overflow files until
// total size is under the configured budget. Blocks until ctx is
// cancelled; a no-op when no overflow directory is configured.
func (a *Archiver) RunOverflowRotation(ctx context.Context, interval time.Duration) {
	if a.overflowDir == "" {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.rotate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.rotate()
		}
	}
}

func (a *Archiver) rotate() {
	root := filepath.Join(a.overflowDir, "feed_log")

	type fileEntry struct {
		path string
		size int64
	}

	var files []fileEntry
	var total int64

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		files = append(files, fileEntry{path: path, size: info.Size()})
		total += info.Size()
		return nil
	})

	if total <= a.maxBytes {
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].path < files[j].path })

	for _, f := range files {
		if total <= a.maxBytes {
			break
		}
		if err := os.Remove(f.path); err != nil {
			log.Printf("archive: remove overflow file %s: %v", f.path, err)
			continue
		}
		total -= f.size
		log.Printf("archive: rotated out overflow file %s (%d bytes)", f.path, f.size)
	}
}
