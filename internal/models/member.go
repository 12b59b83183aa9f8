package models

import (
	"wohee/vodtracker/internal/constants"
)

// Member is a roster entry. Members are imported by an external process;
// this service only reads them.
type Member struct {
	ID              string                 `json:"$id" mapstructure:"$id"`
	DiscordID       string                 `json:"discord_id" mapstructure:"discord_id"`
	DiscordUsername string                 `json:"discord_username" mapstructure:"discord_username"`
	DiscordNickname *string                `json:"discord_nickname,omitempty" mapstructure:"discord_nickname"`
	IngameName      string                 `json:"ingame_name" mapstructure:"ingame_name"`
	Guild           *string                `json:"guild" mapstructure:"guild"`
	PrimaryWeapon   string                 `json:"primary_weapon" mapstructure:"primary_weapon"`
	SecondaryWeapon string                 `json:"secondary_weapon" mapstructure:"secondary_weapon"`
	HasThread       bool                   `json:"has_thread" mapstructure:"has_thread"`
	ThreadLink      *string                `json:"thread_link,omitempty" mapstructure:"thread_link"`
	Class           *constants.MemberClass `json:"class,omitempty" mapstructure:"class"`
}

// GuildName returns the member's guild or "" when untagged.
func (m Member) GuildName() string {
	if m.Guild == nil {
		return ""
	}
	return *m.Guild
}

// Loadout returns the member's weapon pair.
func (m Member) Loadout() constants.WeaponPair {
	return constants.WeaponPair{Primary: m.PrimaryWeapon, Secondary: m.SecondaryWeapon}
}

// DisplayName prefers the in-game name, then the Discord nickname, then the
// Discord username.
func (m Member) DisplayName() string {
	if m.IngameName != "" {
		return m.IngameName
	}
	if m.DiscordNickname != nil && *m.DiscordNickname != "" {
		return *m.DiscordNickname
	}
	return m.DiscordUsername
}

// UniqueValues lists the distinct filter values present in the roster.
type UniqueValues struct {
	Guilds           []string `json:"guilds"`
	PrimaryWeapons   []string `json:"primaryWeapons"`
	SecondaryWeapons []string `json:"secondaryWeapons"`
}

// MemberSet is what the member cache holds and hands out.
type MemberSet struct {
	Members      []Member     `json:"members"`
	UniqueValues UniqueValues `json:"uniqueValues"`
}
