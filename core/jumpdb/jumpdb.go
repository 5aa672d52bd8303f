// Package jumpdb persists the directory jump database: one record per
// visited directory carrying a visit count and a last-access timestamp.
// The j command ranks candidates by "frecency": visits weighted by how
// recently the directory was entered.
package jumpdb

import (
	"encoding/binary"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketDirs = []byte("dirs")

// Entry is one visited directory.
type Entry struct {
	Path      string
	Visits    uint64
	LastVisit time.Time
}

// Rank is the frecency score used for ordering.
func (e Entry) Rank(now time.Time) float64 {
	age := now.Sub(e.LastVisit)
	weight := 0.25
	switch {
	case age < time.Hour:
		weight = 4
	case age < 24*time.Hour:
		weight = 2
	case age < 7*24*time.Hour:
		weight = 1
	}
	return float64(e.Visits) * weight
}

// DB wraps the bolt file. A nil *DB is a valid no-op database, which is
// what stealth mode runs with.
type DB struct {
	db  *bolt.DB
	now func() time.Time
}

// Open creates or opens the database file.
func Open(path string) (*DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDirs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db, now: time.Now}, nil
}

// Close releases the bolt file.
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	return d.db.Close()
}

func encode(visits uint64, last time.Time) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], visits)
	binary.BigEndian.PutUint64(buf[8:], uint64(last.Unix()))
	return buf
}

func decode(val []byte) (uint64, time.Time) {
	if len(val) != 16 {
		return 0, time.Time{}
	}
	visits := binary.BigEndian.Uint64(val[:8])
	last := time.Unix(int64(binary.BigEndian.Uint64(val[8:])), 0)
	return visits, last
}

// Add records one visit to path.
func (d *DB) Add(path string) error {
	if d == nil {
		return nil
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDirs)
		visits, _ := decode(b.Get([]byte(path)))
		return b.Put([]byte(path), encode(visits+1, d.now()))
	})
}

// Remove forgets a directory (used when a jump target no longer exists).
func (d *DB) Remove(path string) error {
	if d == nil {
		return nil
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDirs).Delete([]byte(path))
	})
}

// Entries returns every record ordered by descending rank.
func (d *DB) Entries() ([]Entry, error) {
	if d == nil {
		return nil, nil
	}
	var out []Entry
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDirs).ForEach(func(k, v []byte) error {
			visits, last := decode(v)
			out = append(out, Entry{Path: string(k), Visits: visits, LastVisit: last})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	now := d.now()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank(now) > out[j].Rank(now)
	})
	return out, nil
}

// Best returns the highest-ranked directory whose path contains every
// query term, in order, as a substring.
func (d *DB) Best(terms []string, caseSens bool) (string, bool) {
	entries, err := d.Entries()
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if matchTerms(e.Path, terms, caseSens) {
			return e.Path, true
		}
	}
	return "", false
}

func matchTerms(path string, terms []string, caseSens bool) bool {
	hay := path
	if !caseSens {
		hay = strings.ToLower(hay)
	}
	pos := 0
	for _, t := range terms {
		if !caseSens {
			t = strings.ToLower(t)
		}
		i := strings.Index(hay[pos:], t)
		if i < 0 {
			return false
		}
		pos += i + len(t)
	}
	return true
}
