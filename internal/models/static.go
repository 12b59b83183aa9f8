package models

// Static assigns a member to one of the twelve groups of a preset. A member
// without a record is unassigned.
type Static struct {
	ID        string `json:"$id" mapstructure:"$id"`
	DiscordID string `json:"discord_id" mapstructure:"discord_id"`
	Group     int    `json:"group" mapstructure:"group"`
}

// Snapshot is the all-data payload.
type Snapshot struct {
	Members      []Member               `json:"members"`
	UniqueValues UniqueValues           `json:"uniqueValues"`
	VodTracking  map[string]VodTracking `json:"vodTracking"`
	Statics      []Static               `json:"statics"`
}
