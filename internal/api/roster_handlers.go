package api

import (
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"wohee/vodtracker/internal/auth"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/models/dtos"
	"wohee/vodtracker/internal/services"
)

// AllData handles GET /api/all-data
//
// Members come from the member cache; tracking records and preset 1
// statics are fetched on every call.
func (h *Handlers) AllData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.deps.Services.Snapshot.AllData(r.Context())
		if err != nil {
			common.RespondError(w, err, constants.MsgFetchFailed)
			return
		}
		common.RespondSuccess(w, snap)
	}
}

// VodUpdate handles POST /api/vod-update
func (h *Handlers) VodUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.VodUpdateRequest
		body, err := decodeJSON(w, r, &req)
		if err != nil {
			common.RespondError(w, err, constants.MsgInvalidBody)
			return
		}

		// a second pass over the keys tells an explicit null from an omitted field
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(body, &raw); err == nil {
			for key := range raw {
				req.MarkPresent(key)
			}
		}

		if err := validateStruct(&req); err != nil {
			common.RespondError(w, err, constants.MsgInvalidBody)
			return
		}

		rec, err := h.deps.Services.Vod.Update(r.Context(), auth.GetSession(r.Context()).User(), services.VodUpdate{
			DiscordID:     req.DiscordID,
			Checked:       req.Checked,
			Notes:         req.Notes,
			VodCheckDate:  req.VodCheckDate,
			GearChecked:   req.GearChecked,
			GearCheckDate: req.GearCheckDate,
			GearScore:     req.GearScore,
			GearScoreSet:  req.Has("gear_score"),
		})
		if err != nil {
			common.RespondError(w, err, constants.MsgVodUpdateFailed)
			return
		}
		common.RespondSuccess(w, dtos.VodUpdateResponse{Success: true, VodTracking: *rec})
	}
}

// VodTracking handles GET /api/vod-tracking?discordIds=a,b
func (h *Handlers) VodTracking() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ids []string
		for _, part := range strings.Split(r.URL.Query().Get("discordIds"), ",") {
			id := strings.TrimSpace(part)
			if id == "" {
				continue
			}
			if !validDiscordID(id) {
				common.RespondError(w, common.InvalidWithDetails(constants.MsgInvalidDiscordID, id), "")
				return
			}
			ids = append(ids, id)
		}

		tracking, err := h.deps.Services.Vod.GetTracking(r.Context(), ids)
		if err != nil {
			common.RespondError(w, err, constants.MsgFetchFailed)
			return
		}
		common.RespondSuccess(w, tracking)
	}
}
