package services

import (
	"encoding/json"
	"sync"

	"vidmatch_server/models"
)

// negotiationState is the perfect-negotiation bookkeeping for one
// endpoint of a match: whether it has an unanswered offer in flight,
// whether any remote description has been delivered to it yet, and the
// ICE candidates held back until one has.
type negotiationState struct {
	connID       string
	polite       bool
	makingOffer  bool
	remoteSet    bool
	pendingCands []models.SignalMessage
}

// matchRoute is the relay state for one active match.
type matchRoute struct {
	matchID   string
	endpoints map[string]*negotiationState
}

// SignalService delivers negotiation and chat envelopes between the
// endpoints of an active match. Payload contents are never interpreted
// beyond the envelope kind and the SDP type used for glare resolution.
type SignalService struct {
	Presence *PresenceService

	mu     sync.Mutex
	routes map[string]*matchRoute
	byConn map[string]*matchRoute
}

func NewSignalService(presence *PresenceService) *SignalService {
	return &SignalService{
		Presence: presence,
		routes:   make(map[string]*matchRoute),
		byConn:   make(map[string]*matchRoute),
	}
}

// Bind installs the routing entry for a freshly created match and fixes
// the polite roles used to resolve offer collisions.
func (ss *SignalService) Bind(matchID, connA string, politeA bool, connB string, politeB bool) {
	route := &matchRoute{
		matchID: matchID,
		endpoints: map[string]*negotiationState{
			connA: {connID: connA, polite: politeA},
			connB: {connID: connB, polite: politeB},
		},
	}

	ss.mu.Lock()
	ss.routes[matchID] = route
	ss.byConn[connA] = route
	ss.byConn[connB] = route
	ss.mu.Unlock()
}

// Teardown removes the routing entry so late messages from a torn-down
// negotiation cannot leak into a new match reusing a connection id.
func (ss *SignalService) Teardown(matchID string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	route, ok := ss.routes[matchID]
	if !ok {
		return
	}
	delete(ss.routes, matchID)
	for connID := range route.endpoints {
		if ss.byConn[connID] == route {
			delete(ss.byConn, connID)
		}
	}
}

// Relay forwards a signaling envelope to its target. The envelope is
// dropped silently when the sender and target are not the two endpoints
// of an active match or the target socket is gone.
func (ss *SignalService) Relay(senderConnID string, msg models.SignalMessage) {
	ss.mu.Lock()
	route := ss.byConn[senderConnID]
	if route == nil {
		ss.mu.Unlock()
		return
	}
	sender := route.endpoints[senderConnID]
	target := route.endpoints[msg.To]
	if sender == nil || target == nil {
		ss.mu.Unlock()
		return
	}

	var deliveries []models.SignalMessage

	switch msg.Kind {
	case models.SignalKindDescription:
		switch descriptionType(msg.Description) {
		case "offer":
			if target.makingOffer && !target.polite {
				// Collision: the impolite side ignores the incoming offer.
				ss.mu.Unlock()
				return
			}
			// A polite side abandons its own in-flight offer.
			target.makingOffer = false
			sender.makingOffer = true
		case "answer":
			target.makingOffer = false
		}
		target.remoteSet = true
		deliveries = append(deliveries, msg)
		deliveries = append(deliveries, target.pendingCands...)
		target.pendingCands = nil
	case models.SignalKindCandidate:
		if !target.remoteSet {
			target.pendingCands = append(target.pendingCands, msg)
			ss.mu.Unlock()
			return
		}
		deliveries = append(deliveries, msg)
	default:
		ss.mu.Unlock()
		return
	}
	ss.mu.Unlock()

	for _, d := range deliveries {
		ss.Presence.Emit(msg.To, models.EventMessage, d)
	}
}

// RelayChat forwards a chat line over the same match-scoped path.
func (ss *SignalService) RelayChat(senderConnID string, msg models.ChatMessage) {
	ss.mu.Lock()
	route := ss.byConn[senderConnID]
	routed := route != nil && route.endpoints[msg.To] != nil
	ss.mu.Unlock()
	if !routed {
		return
	}

	ss.Presence.Emit(msg.To, models.EventChat, msg)
}

func descriptionType(raw json.RawMessage) string {
	var desc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &desc); err != nil {
		return ""
	}
	return desc.Type
}
