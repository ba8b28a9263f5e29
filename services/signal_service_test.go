package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidmatch_server/models"
)

func offerTo(to string) models.SignalMessage {
	return models.SignalMessage{
		To:          to,
		Kind:        models.SignalKindDescription,
		Description: json.RawMessage(`{"type":"offer","sdp":"v=0 offer"}`),
	}
}

func answerTo(to string) models.SignalMessage {
	return models.SignalMessage{
		To:          to,
		Kind:        models.SignalKindDescription,
		Description: json.RawMessage(`{"type":"answer","sdp":"v=0 answer"}`),
	}
}

func candidateTo(to, fragment string) models.SignalMessage {
	return models.SignalMessage{
		To:        to,
		Kind:      models.SignalKindCandidate,
		Candidate: json.RawMessage(`{"candidate":"` + fragment + `"}`),
	}
}

// boundPair wires two registered sockets into one routed match, with the
// first socket polite.
func boundPair(t *testing.T) (*testEngine, *fakeSocket, *fakeSocket) {
	t.Helper()
	te := newTestEngine()
	a := newFakeSocket("conn-a")
	b := newFakeSocket("conn-b")
	require.NoError(t, te.presence.Register(a, "alice", "", nil))
	require.NoError(t, te.presence.Register(b, "bob", "", nil))
	te.signals.Bind("m1", a.ID(), true, b.ID(), false)
	return te, a, b
}

func TestRelayDeliversDescriptionVerbatim(t *testing.T) {
	te, a, b := boundPair(t)

	sent := offerTo(b.ID())
	te.signals.Relay(a.ID(), sent)

	got := b.signalMessages()
	require.Len(t, got, 1)
	assert.Equal(t, sent, got[0])
	assert.Empty(t, a.signalMessages())
}

func TestOfferCollisionResolvedByPoliteness(t *testing.T) {
	te, a, b := boundPair(t) // a polite, b impolite

	// Both sides produce an offer before seeing the other's.
	te.signals.Relay(b.ID(), offerTo(a.ID()))
	te.signals.Relay(a.ID(), offerTo(b.ID()))

	// The polite side receives the remote offer and abandons its own;
	// the impolite side never sees the colliding offer.
	aGot := a.signalMessages()
	require.Len(t, aGot, 1)
	assert.Equal(t, "offer", descriptionType(aGot[0].Description))
	assert.Empty(t, b.signalMessages())

	// The polite side answers and negotiation converges.
	te.signals.Relay(a.ID(), answerTo(b.ID()))
	bGot := b.signalMessages()
	require.Len(t, bGot, 1)
	assert.Equal(t, "answer", descriptionType(bGot[0].Description))
}

func TestPoliteSideOfferAfterAnswerIsNotACollision(t *testing.T) {
	te, a, b := boundPair(t)

	// Clean offer/answer round trip, then a renegotiation offer from b.
	te.signals.Relay(b.ID(), offerTo(a.ID()))
	te.signals.Relay(a.ID(), answerTo(b.ID()))
	te.signals.Relay(b.ID(), offerTo(a.ID()))

	require.Len(t, a.signalMessages(), 2)
}

func TestCandidatesQueuedUntilRemoteDescription(t *testing.T) {
	te, a, b := boundPair(t)

	te.signals.Relay(a.ID(), candidateTo(b.ID(), "cand-1"))
	te.signals.Relay(a.ID(), candidateTo(b.ID(), "cand-2"))
	assert.Empty(t, b.signalMessages(), "candidates must be held until a description arrives")

	te.signals.Relay(a.ID(), offerTo(b.ID()))

	got := b.signalMessages()
	require.Len(t, got, 3)
	assert.Equal(t, models.SignalKindDescription, got[0].Kind)
	assert.JSONEq(t, `{"candidate":"cand-1"}`, string(got[1].Candidate))
	assert.JSONEq(t, `{"candidate":"cand-2"}`, string(got[2].Candidate))

	// Later candidates pass straight through.
	te.signals.Relay(a.ID(), candidateTo(b.ID(), "cand-3"))
	assert.Len(t, b.signalMessages(), 4)
}

func TestTeardownStopsDelivery(t *testing.T) {
	te, a, b := boundPair(t)

	te.signals.Teardown("m1")
	te.signals.Relay(a.ID(), offerTo(b.ID()))

	assert.Empty(t, b.signalMessages())
}

func TestRelayDropsUnroutedSenderAndTarget(t *testing.T) {
	te, a, b := boundPair(t)
	stranger := newFakeSocket("conn-x")
	require.NoError(t, te.presence.Register(stranger, "xavier", "", nil))

	// Unrouted sender.
	te.signals.Relay(stranger.ID(), offerTo(b.ID()))
	assert.Empty(t, b.signalMessages())

	// Routed sender, target outside the match.
	te.signals.Relay(a.ID(), offerTo(stranger.ID()))
	assert.Empty(t, stranger.signalMessages())
}

func TestTeardownDoesNotDisturbANewMatchOnSameConnection(t *testing.T) {
	te, a, b := boundPair(t)
	c := newFakeSocket("conn-c")
	require.NoError(t, te.presence.Register(c, "carol", "", nil))

	// a moves on to a new match with c; the old route is torn down.
	te.signals.Teardown("m1")
	te.signals.Bind("m2", a.ID(), true, c.ID(), false)

	te.signals.Relay(b.ID(), offerTo(a.ID()))
	assert.Empty(t, a.signalMessages(), "messages from the old match must not leak")

	te.signals.Relay(c.ID(), offerTo(a.ID()))
	assert.Len(t, a.signalMessages(), 1)
}

func TestRelayChatFollowsRouting(t *testing.T) {
	te, a, b := boundPair(t)
	stranger := newFakeSocket("conn-x")
	require.NoError(t, te.presence.Register(stranger, "xavier", "", nil))

	te.signals.RelayChat(a.ID(), models.ChatMessage{To: b.ID(), Text: "hey"})
	chats := b.eventsNamed(models.EventChat)
	require.Len(t, chats, 1)
	assert.Equal(t, "hey", chats[0].payload.(models.ChatMessage).Text)

	te.signals.RelayChat(a.ID(), models.ChatMessage{To: stranger.ID(), Text: "psst"})
	assert.Empty(t, stranger.eventsNamed(models.EventChat))
}

func TestRelayToUnregisteredTargetIsDropped(t *testing.T) {
	te, a, b := boundPair(t)

	// The target socket died but the route still exists for a moment.
	te.presence.Unregister(b.ID())
	te.signals.Relay(a.ID(), offerTo(b.ID()))

	assert.Empty(t, b.signalMessages())
}
