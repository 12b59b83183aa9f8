package gorm

// MemberRow backs the members collection on SQL backends.
type MemberRow struct {
	ID              string  `gorm:"column:id;primaryKey"`
	DiscordID       string  `gorm:"column:discord_id;uniqueIndex"`
	DiscordUsername string  `gorm:"column:discord_username"`
	DiscordNickname *string `gorm:"column:discord_nickname"`
	IngameName      string  `gorm:"column:ingame_name;index"`
	Guild           *string `gorm:"column:guild;index"`
	PrimaryWeapon   string  `gorm:"column:primary_weapon"`
	SecondaryWeapon string  `gorm:"column:secondary_weapon"`
	HasThread       bool    `gorm:"column:has_thread;default:false"`
	ThreadLink      *string `gorm:"column:thread_link"`
	Class           *string `gorm:"column:class"`
}

func (MemberRow) TableName() string {
	return "members"
}

type VodTrackingRow struct {
	ID            string  `gorm:"column:id;primaryKey"`
	DiscordID     string  `gorm:"column:discord_id;index"`
	HasVod        bool    `gorm:"column:has_vod;default:false"`
	Notes         string  `gorm:"column:notes;default:''"`
	VodCheckDate  *string `gorm:"column:vod_check_date"`
	VodCheckLead  *string `gorm:"column:vod_check_lead"`
	GearChecked   bool    `gorm:"column:gear_checked;default:false"`
	GearCheckDate *string `gorm:"column:gear_check_date"`
	GearCheckLead *string `gorm:"column:gear_check_lead"`
	GearScore     *string `gorm:"column:gear_score"`
}

func (VodTrackingRow) TableName() string {
	return "vod_tracking"
}

// StaticRow is shared by both preset tables, so it declares no named
// indexes. The store picks the table.
type StaticRow struct {
	ID        string `gorm:"column:id;primaryKey"`
	DiscordID string `gorm:"column:discord_id"`
	Group     int    `gorm:"column:group"`
}

func (StaticRow) TableName() string {
	return "statics"
}
