package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Dosada05/vr-score-keeper/live"
	"github.com/Dosada05/vr-score-keeper/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Scoreboards are embedded on arbitrary venue displays.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub               *live.Hub
	tournamentService services.TournamentService
	standingsService  services.StandingsService
	logger            *slog.Logger
}

func NewWebSocketHandler(
	hub *live.Hub,
	ts services.TournamentService,
	ss services.StandingsService,
	logger *slog.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: ts,
		standingsService:  ss,
		logger:            logger,
	}
}

// ServeWs godoc
// @Summary      Live standings feed
// @Description  Upgrades to a websocket. The first message is the current standings snapshot,
// @Description  later messages are standings_updated and winner_decided events.
// @Tags         standings
// @Param        tournamentID path int true "Tournament ID"
// @Success      101
// @Failure      404 {object} map[string]string
// @Router       /ws/tournaments/{tournamentID} [get]
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	standings, err := h.standingsService.ComputeStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	room := live.TournamentRoom(id)
	snapshot, err := json.Marshal(live.Message{
		Type: live.MessageStandingsUpdated,
		Payload: services.WinnerOutcome{
			TournamentID: id,
			Winner:       tournament.Winner,
			Standings:    standings,
		},
		RoomID: room,
	})
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Warn("websocket upgrade failed", slog.Int("tournament_id", id), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, room)
	client.Send <- snapshot
	if !h.hub.Subscribe(client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.logger.Debug("websocket client subscribed", slog.String("room", room))
}
