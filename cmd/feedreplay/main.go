// Command feedreplay reads archive overflow files written by
// internal/archive.Archiver when the document store was unreachable, and
// pretty-prints the odds-change messages they contain.
//
// Usage:
//
//	feedreplay -dir ./overflow                 # replay every day on disk
//	feedreplay -dir ./overflow -day 2026/07/29 # replay a single day
package main

import (
	"bufio"
	"compress/gzip"
	"encoding/xml"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ndrandal/odds-router/internal/oddsmodel"
)

func main() {
	dir := flag.String("dir", "", "Archive overflow root directory (the value passed to -archive-overflow-dir)")
	day := flag.String("day", "", "Single day to replay, e.g. 2026/07/29 (empty replays every file found)")
	flag.Parse()

	log.SetFlags(log.Ltime)

	if *dir == "" {
		log.Fatal("-dir is required")
	}

	root := filepath.Join(*dir, "feed_log")
	files, err := findOverflowFiles(root, *day)
	if err != nil {
		log.Fatalf("scan overflow directory: %v", err)
	}
	if len(files) == 0 {
		log.Printf("no overflow files found under %s", root)
		return
	}

	total := 0
	for _, path := range files {
		n, err := replayFile(path)
		if err != nil {
			log.Printf("%s: %v", path, err)
			continue
		}
		total += n
	}
	log.Printf("replayed %d entries from %d file(s)", total, len(files))
}

// findOverflowFiles returns every *.jsonl.gz overflow file under root,
// sorted by path (which sorts by day given the teacher's YYYY/MM/DD
// layout), optionally narrowed to the single file for one day.
func findOverflowFiles(root, day string) ([]string, error) {
	searchRoot := root
	if day != "" {
		searchRoot = filepath.Join(root, day+".jsonl.gz")
		if _, err := os.Stat(searchRoot); err != nil {
			return nil, nil
		}
		return []string{searchRoot}, nil
	}

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".jsonl.gz") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// replayFile decompresses path and pretty-prints each archived entry. The
// overflow format is tab-separated: eventId, timestamp, profileId, then
// the raw XML payload — mirroring what Archiver.writeOverflow wrote.
func replayFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("gzip reader: %w", err)
	}
	defer gz.Close()

	fmt.Printf("=== %s ===\n", path)

	count := 0
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, "\t", 4)
		if len(parts) != 4 {
			fmt.Printf("??? malformed entry, skipping: %q\n", line)
			continue
		}

		eventID, tsStr, profileID, payload := parts[0], parts[1], parts[2], parts[3]
		ts, _ := strconv.ParseInt(tsStr, 10, 64)

		var msg oddsmodel.Message
		if err := xml.Unmarshal([]byte(payload), &msg); err != nil {
			fmt.Printf("event=%s ts=%d profile=%q  (payload did not parse as XML: %v)\n", eventID, ts, profileID, err)
			count++
			continue
		}

		printEntry(eventID, ts, profileID, msg)
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("scan: %w", err)
	}
	return count, nil
}

func printEntry(eventID string, ts int64, profileID string, msg oddsmodel.Message) {
	label := profileID
	if label == "" {
		label = "-"
	}
	fmt.Printf("event=%s ts=%d profile=%s product=%s markets=%d\n", eventID, ts, label, msg.Product, len(msg.Markets))
	for _, m := range msg.Markets {
		outcomes := make([]string, len(m.Outcomes))
		for i, o := range m.Outcomes {
			outcomes[i] = fmt.Sprintf("%s@%s", o.ID, o.Odds)
		}
		fmt.Printf("  market=%d key=%s outcomes=[%s]\n", m.ID, m.MarketKey(), strings.Join(outcomes, ", "))
	}
}
