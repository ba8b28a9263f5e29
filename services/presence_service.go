package services

import (
	"errors"
	"sync"

	"vidmatch_server/models"
)

// ErrDuplicateConnection is returned when a connection id re-registers
// with a conflicting participant identity.
var ErrDuplicateConnection = errors.New("connection already registered with a different participant")

// Socket is the slice of the transport connection the services need.
// socketio.Conn satisfies it.
type Socket interface {
	ID() string
	Emit(event string, args ...interface{})
}

// Connection is one live transport session and who controls it.
type Connection struct {
	ConnID        string
	ParticipantID string
	DuoConnID     string
	Prefs         *models.MatchPrefs
	Socket        Socket
}

// PresenceService is the single source of truth for which connections are
// live and who they belong to. It is mutated synchronously by the
// transport's connect and disconnect events, never polled.
type PresenceService struct {
	mu       sync.RWMutex
	conns    map[string]*Connection
	teardown func(connID string)
}

func NewPresenceService() *PresenceService {
	return &PresenceService{conns: make(map[string]*Connection)}
}

// SetTeardown installs the hook invoked during Unregister, while the
// connection is still visible, so match state referencing it can be torn
// down before the slot is freed.
func (ps *PresenceService) SetTeardown(fn func(connID string)) {
	ps.teardown = fn
}

// Register upserts a connection. Re-registering the same connection id is
// idempotent and refreshes the duo link and preferences; it fails only if
// the participant identity conflicts.
func (ps *PresenceService) Register(sock Socket, participantID, duoConnID string, prefs *models.MatchPrefs) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if existing, ok := ps.conns[sock.ID()]; ok {
		if existing.ParticipantID != participantID {
			return ErrDuplicateConnection
		}
		existing.DuoConnID = duoConnID
		existing.Prefs = prefs
		existing.Socket = sock
		return nil
	}

	ps.conns[sock.ID()] = &Connection{
		ConnID:        sock.ID(),
		ParticipantID: participantID,
		DuoConnID:     duoConnID,
		Prefs:         prefs,
		Socket:        sock,
	}
	return nil
}

// Unregister tears down any match state referencing the connection and
// removes it. Safe to call for ids that were never registered.
func (ps *PresenceService) Unregister(connID string) {
	ps.mu.RLock()
	_, ok := ps.conns[connID]
	ps.mu.RUnlock()
	if !ok {
		return
	}

	if ps.teardown != nil {
		ps.teardown(connID)
	}

	ps.mu.Lock()
	delete(ps.conns, connID)
	ps.mu.Unlock()
}

// Lookup resolves a connection id to its participant id.
func (ps *PresenceService) Lookup(connID string) (string, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	conn, ok := ps.conns[connID]
	if !ok {
		return "", false
	}
	return conn.ParticipantID, true
}

// Get returns a snapshot of the connection.
func (ps *PresenceService) Get(connID string) (Connection, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	conn, ok := ps.conns[connID]
	if !ok {
		return Connection{}, false
	}
	return *conn, true
}

// Count reports how many connections are currently registered.
func (ps *PresenceService) Count() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.conns)
}

// Emit delivers an event to the connection's socket. Sends to unknown
// connection ids are dropped and reported as false; stale sends are
// expected after disconnects and are harmless.
func (ps *PresenceService) Emit(connID string, event string, args ...interface{}) bool {
	ps.mu.RLock()
	conn, ok := ps.conns[connID]
	ps.mu.RUnlock()
	if !ok {
		return false
	}
	conn.Socket.Emit(event, args...)
	return true
}
