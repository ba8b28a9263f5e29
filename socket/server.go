package socket

import (
	"log"

	socketio "github.com/googollee/go-socket.io"

	"vidmatch_server/models"
	"vidmatch_server/services"
)

// NewSocketServer initializes the Socket.IO server and wires the
// matching core to its transport events
func NewSocketServer(
	presence *services.PresenceService,
	matches *services.MatchService,
	signals *services.SignalService,
) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(s socketio.Conn) error {
		log.Println("Socket connected:", s.ID())
		return nil
	})

	server.OnEvent("/", models.EventFindMatch, func(s socketio.Conn, payload models.FindMatchPayload) {
		if payload.ParticipantID == "" {
			s.Emit(models.EventMatchError, models.MatchErrorEvent{Message: "participantId is required"})
			return
		}
		if err := presence.Register(s, payload.ParticipantID, payload.DuoConnID, payload.Prefs); err != nil {
			log.Printf("Rejecting findMatch from %s: %v", s.ID(), err)
			s.Emit(models.EventMatchError, models.MatchErrorEvent{Message: "Failed to find match"})
			return
		}
		matches.FindMatch(s.ID())
	})

	server.OnEvent("/", models.EventEndMatch, func(s socketio.Conn, payload models.EndMatchPayload) {
		if payload.MatchID == "" {
			s.Emit(models.EventMatchError, models.MatchErrorEvent{Message: "matchId is required"})
			return
		}
		matches.EndMatch(payload.MatchID)
	})

	server.OnEvent("/", models.EventSkip, func(s socketio.Conn, payload models.SkipPayload) {
		matches.Skip(s.ID(), payload.Targets)
	})

	server.OnEvent("/", models.EventMessage, func(s socketio.Conn, msg models.SignalMessage) {
		if msg.To == "" || msg.Kind == "" {
			return
		}
		signals.Relay(s.ID(), msg)
	})

	server.OnEvent("/", models.EventChat, func(s socketio.Conn, msg models.ChatMessage) {
		if msg.To == "" {
			return
		}
		signals.RelayChat(s.ID(), msg)
	})

	server.OnError("/", func(s socketio.Conn, err error) {
		log.Println("Socket error:", err)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Println("Socket disconnected:", s.ID(), reason)
		presence.Unregister(s.ID())
	})

	return server
}
