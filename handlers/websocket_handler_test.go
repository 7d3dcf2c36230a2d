package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/vr-score-keeper/live"
	"github.com/Dosada05/vr-score-keeper/models"
	"github.com/Dosada05/vr-score-keeper/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

func TestServeWsSendsSnapshotThenBroadcasts(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := live.NewHub(logger)
	done := make(chan struct{})
	go hub.Run(done)
	defer close(done)

	ts := &fakeTournamentService{
		getByID: func(_ context.Context, id int) (*models.Tournament, error) {
			if id != 7 {
				return nil, services.ErrTournamentNotFound
			}
			return &models.Tournament{ID: id, Name: "Cup"}, nil
		},
	}
	ss := &fakeStandingsService{
		compute: func(context.Context, int) ([]models.Standing, error) {
			return []models.Standing{{Player: models.Player{ID: 1, Name: "Ann"}, Total: 4}}, nil
		},
	}
	h := NewWebSocketHandler(hub, ts, ss, logger)

	router := chi.NewRouter()
	router.Get("/ws/tournaments/{tournamentID}", h.ServeWs)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL+"/ws/tournaments/99", nil)
	if err == nil {
		t.Fatal("expected dial to an unknown tournament to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %v", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws/tournaments/7", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var snapshot struct {
		Type    string                 `json:"type"`
		Payload services.WinnerOutcome `json:"payload"`
	}
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snapshot.Type != live.MessageStandingsUpdated || len(snapshot.Payload.Standings) != 1 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}

	room := live.TournamentRoom(7)
	deadline := time.Now().Add(time.Second)
	for hub.RoomSize(room) != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.BroadcastToRoom(room, live.Message{Type: live.MessageWinnerDecided, Payload: map[string]string{"winner": "Ann"}, RoomID: room})

	var event map[string]json.RawMessage
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if string(event["type"]) != `"winner_decided"` {
		t.Fatalf("unexpected event %s", event["type"])
	}
}
