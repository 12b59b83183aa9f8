package models

// VodTracking is the review state of one member. Each check flag is paired
// with a date and a lead; both are null whenever the flag is false.
type VodTracking struct {
	ID            string  `json:"$id,omitempty" mapstructure:"$id"`
	DiscordID     string  `json:"discord_id" mapstructure:"discord_id"`
	HasVod        bool    `json:"has_vod" mapstructure:"has_vod"`
	Notes         string  `json:"notes" mapstructure:"notes"`
	VodCheckDate  *string `json:"vod_check_date" mapstructure:"vod_check_date"`
	VodCheckLead  *string `json:"vod_check_lead" mapstructure:"vod_check_lead"`
	GearChecked   bool    `json:"gear_checked" mapstructure:"gear_checked"`
	GearCheckDate *string `json:"gear_check_date" mapstructure:"gear_check_date"`
	GearCheckLead *string `json:"gear_check_lead" mapstructure:"gear_check_lead"`
	GearScore     *string `json:"gear_score" mapstructure:"gear_score"`
}

// Document attribute names of a VodTracking record.
const (
	AttrDiscordID     = "discord_id"
	AttrHasVod        = "has_vod"
	AttrNotes         = "notes"
	AttrVodCheckDate  = "vod_check_date"
	AttrVodCheckLead  = "vod_check_lead"
	AttrGearChecked   = "gear_checked"
	AttrGearCheckDate = "gear_check_date"
	AttrGearCheckLead = "gear_check_lead"
	AttrGearScore     = "gear_score"
)

// Member and static attribute names used in queries.
const (
	AttrGuild      = "guild"
	AttrIngameName = "ingame_name"
	AttrGroup      = "group"
)
