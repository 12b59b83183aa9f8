package dtos

import (
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/models"
)

// UserView is the session user as the UI sees it. AccessLevel is a badge
// only.
type UserView struct {
	ID                string                 `json:"id"`
	Username          string                 `json:"username"`
	Roles             []string               `json:"roles"`
	IsMaster          bool                   `json:"isMaster"`
	IsLeadership      bool                   `json:"isLeadership"`
	HasAccess         bool                   `json:"hasAccess"`
	WeaponPermissions []constants.WeaponPair `json:"weaponPermissions"`
	AccessLevel       constants.AccessLevel  `json:"accessLevel"`
}

type AuthResponse struct {
	User UserView `json:"user"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type StaticsResponse struct {
	Groups []models.Static `json:"groups"`
}

type StaticsUpdateResponse struct {
	Success bool            `json:"success"`
	Statics []models.Static `json:"statics"`
}

type VodUpdateResponse struct {
	Success     bool               `json:"success"`
	VodTracking models.VodTracking `json:"vodTracking"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}
