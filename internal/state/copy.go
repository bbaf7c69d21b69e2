package state

import "fmt"

// CopyStats describes what [Copy] wrote.
type CopyStats struct {
	Cursor    string
	HasCursor bool
	Copied    int // dedup keys newly written to dst
	Existing  int // dedup keys dst already had
}

// Copy merges src's state into dst.
//
// dst's dedup set only grows. Its cursor is replaced by src's when src has one.
func Copy(dst, src Store) (CopyStats, error) {
	var stats CopyStats

	srcSet, err := src.LoadDedupSet()
	if err != nil {
		return stats, fmt.Errorf("load source dedup set: %w", err)
	}

	dstSet, err := dst.LoadDedupSet()
	if err != nil {
		return stats, fmt.Errorf("load destination dedup set: %w", err)
	}

	for key := range srcSet {
		if dstSet.Has(key) {
			stats.Existing++
			continue
		}
		if err := dst.AppendDedup(key); err != nil {
			return stats, err
		}
		stats.Copied++
	}

	cursor, ok, err := src.LoadCursor()
	if err != nil {
		return stats, fmt.Errorf("load source cursor: %w", err)
	}
	if ok {
		if err := dst.SaveCursor(cursor); err != nil {
			return stats, err
		}
		stats.Cursor, stats.HasCursor = cursor, true
	}

	return stats, nil
}
