package dtos

// VodUpdateRequest is the body of POST /api/vod-update. Primary and
// Secondary are accepted for compatibility with older clients but never
// used for authorization; the member's stored loadout is.
type VodUpdateRequest struct {
	DiscordID     string  `json:"discordId" validate:"required,discord_id"`
	Checked       *bool   `json:"checked"`
	Primary       string  `json:"primary"`
	Secondary     string  `json:"secondary"`
	Notes         *string `json:"notes" validate:"omitempty,max=500"`
	VodCheckDate  *string `json:"vod_check_date"`
	GearChecked   *bool   `json:"gear_checked"`
	GearCheckDate *string `json:"gear_check_date"`
	GearScore     any     `json:"gear_score"`

	present map[string]struct{}
}

// MarkPresent records which JSON keys the client actually sent, so an
// explicit null can be told apart from an omitted field.
func (r *VodUpdateRequest) MarkPresent(keys ...string) {
	if r.present == nil {
		r.present = make(map[string]struct{}, len(keys))
	}
	for _, k := range keys {
		r.present[k] = struct{}{}
	}
}

func (r *VodUpdateRequest) Has(key string) bool {
	_, ok := r.present[key]
	return ok
}

// StaticsUpdateRequest is the body of POST /api/statics/update. A null
// group removes the member from every group of the preset.
type StaticsUpdateRequest struct {
	DiscordID string `json:"discordId" validate:"required,discord_id"`
	Group     *int   `json:"group" validate:"omitempty,min=1,max=12"`
	Preset    string `json:"preset" validate:"omitempty,oneof=preset1 preset2"`
}

type StaticsWebhookRequest struct {
	Guild  string `json:"guild" validate:"required,max=100"`
	Preset string `json:"preset" validate:"omitempty,oneof=preset1 preset2"`
}
