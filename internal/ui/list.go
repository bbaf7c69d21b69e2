package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/likesync/internal/models"
)

var _ list.Item = outcomeItem{}

// outcomeItem wraps [models.TrackOutcome] to implement [list.Item].
type outcomeItem struct {
	outcome models.TrackOutcome
}

func (i outcomeItem) FilterValue() string { return i.outcome.Track.Identity() }
func (i outcomeItem) Title() string       { return i.outcome.Track.Identity() }
func (i outcomeItem) Description() string {
	desc := styles.Status(i.outcome.Status)
	if i.outcome.Match != nil {
		desc = fmt.Sprintf("%s • %s", desc, i.outcome.Match.VideoTitle)
	}
	if i.outcome.Error != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.outcome.Error)
	}
	return desc
}

func outcomeItems(outcomes []models.TrackOutcome) []list.Item {
	items := make([]list.Item, len(outcomes))
	for i, o := range outcomes {
		items[i] = outcomeItem{outcome: o}
	}
	return items
}
