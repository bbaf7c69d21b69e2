package models

// Match is the top search result for a track.
type Match struct {
	VideoID    string `json:"video_id"`
	VideoTitle string `json:"video_title"`
}

// URL returns the watch page for the matched video.
func (m Match) URL() string {
	return "https://www.youtube.com/watch?v=" + m.VideoID
}

// InsertOutcome is the result of a single playlist insert attempt.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	SkippedDuplicate
	Failed
)

func (o InsertOutcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case SkippedDuplicate:
		return "skipped-duplicate"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}
