package models

import (
	"encoding/json"
	"time"
)

// Socket event names consumed and produced by the matching core
const (
	EventFindMatch    = "findMatch"
	EventEndMatch     = "endMatch"
	EventSkip         = "skip"
	EventMessage      = "message"
	EventChat         = "chat"
	EventMatched      = "matched"
	EventMatchStatus  = "matchStatus"
	EventMatchEnded   = "matchEnded"
	EventMatchError   = "matchError"
	EventPeer         = "peer"
	EventStrangerLeft = "strangerLeft"
)

// Signaling envelope kinds
const (
	SignalKindDescription = "description"
	SignalKindCandidate   = "candidate"
)

// MatchPrefs carries the optional matching filters a client can send.
// Reserved for future eligibility rules; currently informational only.
type MatchPrefs struct {
	Age       int      `json:"age,omitempty"`
	Interests []string `json:"interests,omitempty"`
}

// FindMatchPayload is the inbound request to enter the waiting queue.
type FindMatchPayload struct {
	ParticipantID string      `json:"participantId"`
	DuoConnID     string      `json:"duoConnectionId,omitempty"`
	Prefs         *MatchPrefs `json:"prefs,omitempty"`
}

// EndMatchPayload is the inbound voluntary termination request.
type EndMatchPayload struct {
	MatchID string `json:"matchId"`
}

// SkipPayload names the peer connections to notify when a user skips.
type SkipPayload struct {
	Targets []string `json:"targets"`
}

// SignalMessage is one WebRTC negotiation envelope. The description and
// candidate payloads are opaque to the server and relayed verbatim.
type SignalMessage struct {
	To          string          `json:"to"`
	Kind        string          `json:"kind"`
	Description json.RawMessage `json:"description,omitempty"`
	Candidate   json.RawMessage `json:"candidate,omitempty"`
}

// ChatMessage is a relayed chat line between matched connections.
type ChatMessage struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// MatchedEvent notifies a connection of its pairing result.
type MatchedEvent struct {
	MatchID   string    `json:"matchId"`
	PartnerID string    `json:"partnerId"`
	IsFake    bool      `json:"isFake"`
	StartTime time.Time `json:"startTime"`
	Polite    bool      `json:"polite"`
	FakeUser  *FakeUser `json:"fakeUser,omitempty"`
}

// MatchStatusEvent acknowledges that a connection entered the queue.
type MatchStatusEvent struct {
	Status string `json:"status"`
}

// MatchEndedEvent reports match termination with elapsed duration.
type MatchEndedEvent struct {
	MatchID  string `json:"matchId"`
	Duration int64  `json:"duration"` // milliseconds
	IsFake   bool   `json:"isFake"`
}

// MatchErrorEvent is a recoverable failure notice to the client.
type MatchErrorEvent struct {
	Message string `json:"message"`
}

// PeerEvent is the duo fan-out notification pointing a secondary
// connection at the counterpart of a freshly created match.
type PeerEvent struct {
	MatchID  string `json:"matchId"`
	PairID   string `json:"pairId"`
	PairName string `json:"pairName"`
	DuoID    string `json:"duoId,omitempty"`
	DuoName  string `json:"duoName,omitempty"`
	Polite   bool   `json:"polite"`
}
