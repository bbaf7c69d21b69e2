package models

import (
	"fmt"
	"strings"
)

// Track is one entry of the source catalog's liked songs.
//
// ID and Album are informational. Resume and dedup only ever look at [Track.Identity].
type Track struct {
	ID     string `json:"id,omitempty"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
}

// Identity returns "{Title} by {Artist}". It is the resume cursor value and the search query.
func (t Track) Identity() string {
	return fmt.Sprintf("%s by %s", t.Title, t.Artist)
}

var newlines = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// DedupKey normalizes a video title for the dedup set.
//
// Keys are lower-cased and never contain line breaks, so they survive a newline-delimited log.
func DedupKey(title string) string {
	return strings.ToLower(newlines.Replace(title))
}

// DedupSet holds [DedupKey] values of titles already inserted into the destination playlist.
type DedupSet map[string]struct{}

// NewDedupSet builds a set from raw titles or keys.
func NewDedupSet(titles ...string) DedupSet {
	s := make(DedupSet, len(titles))
	for _, title := range titles {
		s.Add(title)
	}
	return s
}

// Add inserts the key for title.
func (s DedupSet) Add(title string) { s[DedupKey(title)] = struct{}{} }

// Contains reports whether the key for title is present.
func (s DedupSet) Contains(title string) bool {
	_, ok := s[DedupKey(title)]
	return ok
}

// Has reports whether key is present as-is, without normalization.
//
// The driver uses it for the exact identity check done before searching.
func (s DedupSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the members in no particular order.
func (s DedupSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	return keys
}
