package constants

const (
	MsgNoSession          = "No session found"
	MsgInvalidSession     = "Invalid session"
	MsgInsufficientAccess = "Insufficient permissions"
	MsgWeaponPermission   = "No permission for this weapon combination"
	MsgMasterRequired     = "Master role required"
	MsgLeadershipRequired = "Leadership role required"
	MsgTooManyRequests    = "Too many requests"
)

const (
	MsgDiscordIDRequired = "Discord ID is required"
	MsgInvalidDiscordID  = "Discord ID must be 17-19 digits"
	MsgNotesTooLong      = "Notes must be under 500 characters"
	MsgNotesMarkup       = "Notes must not contain markup tags"
	MsgInvalidGearScore  = "Gear score must be a whole number"
	MsgInvalidGroup      = "Group must be between 1 and 12"
	MsgInvalidPreset     = "Unknown statics preset"
	MsgPresetUnavailable = "Statics preset is not configured"
	MsgInvalidCheckDate  = "Check date must be an ISO 8601 date"
	MsgRefreshUnchecked  = "Cannot refresh the date of an unchecked item"
	MsgThreadRequired    = "User must have a ticket thread before updating"
	MsgMemberNotFound    = "User not found"
	MsgGroupFull         = "Static group is full"
	MsgMissingGuild      = "Missing guild"
	MsgNoWebhook         = "No webhook configured for this guild"
	MsgNoCode            = "No code provided"
	MsgInvalidBody       = "Invalid request body"
)

const (
	MsgFetchFailed        = "Failed to fetch data"
	MsgVodUpdateFailed    = "Failed to update VOD status"
	MsgStaticUpdateFailed = "Failed to update static group"
	MsgStaticsFetchFailed = "Failed to fetch static groups"
	MsgWebhookFailed      = "Failed to send statics to Discord"
	MsgAuthFailed         = "Authentication failed"
)
