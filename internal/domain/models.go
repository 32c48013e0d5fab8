package domain

import "time"

// EventKind identifies a kind of care event
type EventKind string

// Care event kinds
const (
	EventWater     EventKind = "water"
	EventFertilize EventKind = "fertilize"
	EventPrune     EventKind = "prune"
	EventRepot     EventKind = "repot"
	EventNote      EventKind = "note"
	EventPhoto     EventKind = "photo"
)

// Plant represents a tracked plant
type Plant struct {
	UUID           string     `json:"uuid"`
	Name           string     `json:"name"`
	Species        string     `json:"species"`
	Description    string     `json:"description"`
	PotSize        int        `json:"pot_size"`
	Group          string     `json:"group"` // group UUID it belongs to ("" if ungrouped)
	Archived       bool       `json:"archived"`
	Thumbnail      string     `json:"thumbnail"`
	LastWatered    *time.Time `json:"last_watered"`
	LastFertilized *time.Time `json:"last_fertilized"`
}

// DisplayName returns the name shown in the UI, falling back to species
// for unnamed plants.
func (p Plant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Species != "" {
		return "Unnamed " + p.Species
	}
	return "Unnamed plant"
}

// Group represents a collection of plants
type Group struct {
	UUID     string   `json:"uuid"`
	Name     string   `json:"name"`
	Plants   []string `json:"plants"` // plant UUIDs
	Archived bool     `json:"archived"`
}

// CareEvent is one logged care action for a plant
type CareEvent struct {
	Kind      EventKind `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// OverviewState is the overview route's initial state
type OverviewState struct {
	Plants      []Plant `json:"plants"`
	Groups      []Group `json:"groups"`
	ShowArchive bool    `json:"show_archive"`
}
