// internal/app/features/teams/handler.go
package teams

import (
	"net/http"

	teamstore "github.com/dalemusser/crewdeck/internal/app/store/teams"
	"github.com/dalemusser/crewdeck/internal/app/system/apperr"
	"github.com/dalemusser/crewdeck/internal/app/system/authz"
	"github.com/dalemusser/crewdeck/internal/app/system/httpjson"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler provides the team endpoints: lifecycle, membership, and the
// executive tier. All routes require a signed-in user; per-operation
// authorization (executive standing, membership) lives in the store.
type Handler struct {
	Teams *teamstore.Store
	Log   *zap.Logger
}

func NewHandler(teams *teamstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Teams: teams, Log: logger}
}

// HandleCreate creates a team with the caller as sole member and
// executive.
// POST /teams
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createTeamRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	team, err := h.Teams.Create(r.Context(), callerID, req.Name)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, toTeamResponse(team))
}

// ServeMine lists the caller's teams.
// GET /teams/mine
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	teams, err := h.Teams.ListForUser(r.Context(), callerID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	out := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamResponse(t))
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"teams": out})
}

// ServeGet returns one team; members only.
// GET /teams/{teamID}
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	callerID, teamID, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}
	team, err := h.Teams.GetByID(r.Context(), teamID, callerID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, toTeamResponse(team))
}

// HandleJoin adds the caller to a team.
// POST /teams/{teamID}/join
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	callerID, teamID, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}
	if err := h.Teams.Join(r.Context(), teamID, callerID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "joined"})
}

// HandleJoinByShortID resolves a join-link short id and adds the
// caller to the team behind it.
// POST /teams/join-by-short-id/{shortID}
func (h *Handler) HandleJoinByShortID(w http.ResponseWriter, r *http.Request) {
	callerID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	shortID := chi.URLParam(r, "shortID")
	team, err := h.Teams.JoinByShortID(r.Context(), shortID, callerID)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "joined", "team_id": team.ID.Hex()})
}

// HandlePromote elevates a member to the executive tier.
// POST /teams/{teamID}/promote
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	callerID, teamID, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}
	memberID, err := h.decodeMemberID(r)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	if err := h.Teams.Promote(r.Context(), teamID, memberID, callerID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "promoted"})
}

// HandleLeave removes the caller from the team; when the caller is the
// sole executive the team itself is deleted.
// POST /teams/{teamID}/leave
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	callerID, teamID, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}
	if err := h.Teams.Leave(r.Context(), teamID, callerID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "left"})
}

// HandleDelete deletes the team on behalf of an executive.
// DELETE /teams/{teamID}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	callerID, teamID, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}
	if err := h.Teams.Delete(r.Context(), teamID, callerID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleKick removes a non-executive member on behalf of an executive.
// POST /teams/{teamID}/kick
func (h *Handler) HandleKick(w http.ResponseWriter, r *http.Request) {
	callerID, teamID, ok := h.callerAndTeam(w, r)
	if !ok {
		return
	}
	targetID, err := h.decodeMemberID(r)
	if err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	if err := h.Teams.Kick(r.Context(), teamID, targetID, callerID); err != nil {
		httpjson.WriteErr(w, h.Log, err)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "kicked"})
}

func (h *Handler) callerAndTeam(w http.ResponseWriter, r *http.Request) (callerID, teamID primitive.ObjectID, ok bool) {
	callerID, ok = authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	teamID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "teamID"))
	if err != nil {
		httpjson.WriteErr(w, h.Log, apperr.InvalidArgument("malformed team id"))
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return callerID, teamID, true
}

func (h *Handler) decodeMemberID(r *http.Request) (primitive.ObjectID, error) {
	var req memberRequest
	if err := httpjson.Decode(r, &req); err != nil {
		return primitive.NilObjectID, err
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidArgument("malformed member id")
	}
	return memberID, nil
}
