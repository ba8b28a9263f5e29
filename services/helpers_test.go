package services

import (
	"context"
	"sync"
	"time"

	"vidmatch_server/models"
)

// fakeSocket records every emitted event in place of a live socket.io
// connection.
type fakeSocket struct {
	id string

	mu     sync.Mutex
	events []emittedEvent
}

type emittedEvent struct {
	name    string
	payload interface{}
}

func newFakeSocket(id string) *fakeSocket {
	return &fakeSocket{id: id}
}

func (f *fakeSocket) ID() string { return f.id }

func (f *fakeSocket) Emit(event string, args ...interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var payload interface{}
	if len(args) > 0 {
		payload = args[0]
	}
	f.events = append(f.events, emittedEvent{name: event, payload: payload})
}

func (f *fakeSocket) eventsNamed(name string) []emittedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []emittedEvent
	for _, e := range f.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeSocket) matchedEvents() []models.MatchedEvent {
	var out []models.MatchedEvent
	for _, e := range f.eventsNamed(models.EventMatched) {
		out = append(out, e.payload.(models.MatchedEvent))
	}
	return out
}

func (f *fakeSocket) signalMessages() []models.SignalMessage {
	var out []models.SignalMessage
	for _, e := range f.eventsNamed(models.EventMessage) {
		out = append(out, e.payload.(models.SignalMessage))
	}
	return out
}

// fakeRecorder captures lifecycle writes in place of DynamoDB.
type fakeRecorder struct {
	mu     sync.Mutex
	starts []models.MatchRecord
	ends   []string
}

func (r *fakeRecorder) RecordStart(_ context.Context, record models.MatchRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, record)
}

func (r *fakeRecorder) RecordEnd(_ context.Context, matchID string, _ time.Time, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ends = append(r.ends, matchID)
}

func (r *fakeRecorder) startCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.starts)
}

func (r *fakeRecorder) endCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ends)
}

// testEngine bundles a wired matching core around fakes.
type testEngine struct {
	presence *PresenceService
	signals  *SignalService
	matches  *MatchService
	recorder *fakeRecorder
}

func newTestEngine() *testEngine {
	presence := NewPresenceService()
	signals := NewSignalService(presence)
	recorder := &fakeRecorder{}
	matches := NewMatchService(presence, signals, recorder, NewFakeUserService(models.FakeUsers))
	presence.SetTeardown(matches.HandleDisconnect)
	return &testEngine{
		presence: presence,
		signals:  signals,
		matches:  matches,
		recorder: recorder,
	}
}

// join registers a socket and requests a match for it.
func (te *testEngine) join(sock *fakeSocket, participantID, duoConnID string) {
	if err := te.presence.Register(sock, participantID, duoConnID, nil); err != nil {
		panic(err)
	}
	te.matches.FindMatch(sock.ID())
}
