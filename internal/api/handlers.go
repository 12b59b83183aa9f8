package api

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/models/dtos"
)

const maxBodyBytes = 64 << 10

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

// decodeJSON reads a bounded JSON body into dst and returns the raw bytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, common.InvalidWithDetails(constants.MsgInvalidBody, err.Error())
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, common.InvalidWithDetails(constants.MsgInvalidBody, err.Error())
	}
	return body, nil
}

// userView describes user's capabilities for the UI.
func (h *Handlers) userView(user *access.User) dtos.UserView {
	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	authz := h.deps.Authz
	return dtos.UserView{
		ID:                user.ID,
		Username:          user.Username,
		Roles:             roles,
		IsMaster:          authz.IsMasterByRoles(roles),
		IsLeadership:      authz.IsLeadershipByRoles(roles),
		HasAccess:         authz.HasAnyAccessByRoles(roles),
		WeaponPermissions: authz.WeaponPermissions(roles),
		AccessLevel:       authz.AccessLevel(roles),
	}
}
