package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quasarhq/quasar-backend/models"
	"github.com/quasarhq/quasar-backend/repository"
	"github.com/quasarhq/quasar-backend/responses"
	"github.com/quasarhq/quasar-backend/utils"
)

// FetchPlayer returns the persisted record for a player id.
func (a *App) FetchPlayer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var record models.PlayerRecord
	err := a.Store.Get(r.Context(), "players", id, &record)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.HandleError(w, responses.NotFoundError{Msg: "No player found with id " + id + "."})
	case errors.Is(err, repository.ErrNoDatabase):
		utils.HandleError(w, responses.ServiceUnavailableError{Msg: "Player records are unavailable on this server."})
	case err != nil:
		a.Log.Errorw("player lookup failed", "id", id, "err", err)
		utils.HandleError(w, responses.InternalServerError{Msg: "An error occurred while processing your request."})
	default:
		utils.HandleSuccess(w, models.SuccessResponse(record))
	}
}
