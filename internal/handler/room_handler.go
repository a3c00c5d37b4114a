/*
Package handler provides read-only HTTP views of the room directory.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chatrelay/internal/app/user"
	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/resp"
)

// RosterResponse mirrors the payload of a roomData event.
type RosterResponse struct {
	Room  string      `json:"room"`
	Users user.Roster `json:"users"`
}

// HandleListRooms returns every active room with its occupant count.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"rooms": deps.Directory.Rooms(),
		})
	}
}

// HandleGetRoster returns the current occupants of one room in join order.
func HandleGetRoster(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := chi.URLParam(r, "room")

		users := deps.Directory.GetUsersInRoom(room)
		if len(users) == 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}

		resp.RespondSuccess(w, r, RosterResponse{
			Room:  users[0].Room,
			Users: user.NewRoster(users),
		})
	}
}
