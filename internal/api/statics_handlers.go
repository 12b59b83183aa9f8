package api

import (
	"net/http"

	"wohee/vodtracker/internal/auth"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/models/dtos"
)

// ListStatics handles GET /api/statics?preset=preset1|preset2
func (h *Handlers) ListStatics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statics, err := h.deps.Services.Statics.List(r.Context(), r.URL.Query().Get("preset"))
		if err != nil {
			common.RespondError(w, err, constants.MsgStaticsFetchFailed)
			return
		}
		common.RespondSuccess(w, dtos.StaticsResponse{Groups: statics})
	}
}

// UpdateStatic handles POST /api/statics/update
//
// A null group removes the member from the preset. The response carries the
// refetched assignments of the preset.
func (h *Handlers) UpdateStatic() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.StaticsUpdateRequest
		if _, err := decodeJSON(w, r, &req); err != nil {
			common.RespondError(w, err, constants.MsgInvalidBody)
			return
		}
		if err := validateStruct(&req); err != nil {
			common.RespondError(w, err, constants.MsgInvalidBody)
			return
		}

		statics, err := h.deps.Services.Statics.SetGroup(r.Context(), auth.GetSession(r.Context()).User(), req.Preset, req.DiscordID, req.Group)
		if err != nil {
			common.RespondError(w, err, constants.MsgStaticUpdateFailed)
			return
		}
		common.RespondSuccess(w, dtos.StaticsUpdateResponse{Success: true, Statics: statics})
	}
}

// PublishStatics handles POST /api/statics/discord-webhook
func (h *Handlers) PublishStatics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.StaticsWebhookRequest
		if _, err := decodeJSON(w, r, &req); err != nil {
			common.RespondError(w, err, constants.MsgInvalidBody)
			return
		}
		if err := validateStruct(&req); err != nil {
			common.RespondError(w, err, constants.MsgInvalidBody)
			return
		}

		if err := h.deps.Services.Webhooks.PublishStatics(r.Context(), auth.GetSession(r.Context()).User(), req.Guild, req.Preset); err != nil {
			common.RespondError(w, err, constants.MsgWebhookFailed)
			return
		}
		common.RespondSuccess(w, dtos.SuccessResponse{Success: true})
	}
}
