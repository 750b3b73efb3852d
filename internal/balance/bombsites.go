package balance

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
)

// SiteTable maps map names to bombsite counts. The count is used only to
// decide which side absorbs the extra player when the participant total is
// odd. The table is loaded lazily from a line-based file ("mapname count");
// unknown maps get a heuristic default and are appended for future lookups.
type SiteTable struct {
	path string

	mu     sync.Mutex
	sites  map[string]int
	loaded bool
}

// NewSiteTable creates a table backed by the file at path.
func NewSiteTable(path string) *SiteTable {
	return &SiteTable{path: path, sites: make(map[string]int)}
}

// defaultSites guesses a bombsite count for an unlisted map. Hostage-style
// maps carry no bombsites; everything else defaults to two.
func defaultSites(mapName string) int {
	if strings.HasPrefix(mapName, "cs_") {
		return 1
	}
	return 2
}

// Sites returns the bombsite count for a map, learning and persisting a
// default for maps not yet listed.
func (t *SiteTable) Sites(mapName string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loadLocked()

	if n, ok := t.sites[mapName]; ok {
		return n
	}

	n := defaultSites(mapName)
	t.sites[mapName] = n
	if err := t.appendLocked(mapName, n); err != nil {
		log.Printf("Warning: failed to persist bombsite count for %s: %v", mapName, err)
	}
	return n
}

// All returns a copy of the full table, loading it if needed.
func (t *SiteTable) All() map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loadLocked()

	out := make(map[string]int, len(t.sites))
	for k, v := range t.sites {
		out[k] = v
	}
	return out
}

// loadLocked parses the backing file once. Malformed lines are skipped with
// a warning; parsing continues for remaining lines.
func (t *SiteTable) loadLocked() {
	if t.loaded {
		return
	}
	t.loaded = true

	f, err := os.Open(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: failed to open bombsite table %s: %v", t.path, err)
		}
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			log.Printf("Warning: %s:%d: malformed bombsite line %q, skipping", t.path, lineNum, line)
			continue
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			log.Printf("Warning: %s:%d: bad bombsite count %q, skipping", t.path, lineNum, fields[1])
			continue
		}
		t.sites[fields[0]] = n
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Warning: reading bombsite table %s: %v", t.path, err)
	}
}

// appendLocked appends one learned entry to the backing file.
func (t *SiteTable) appendLocked(mapName string, count int) error {
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s %d\n", mapName, count)
	return err
}
