package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"vidmatch_server/models"
)

// waitingEntry is a connection that requested a match and has none yet.
type waitingEntry struct {
	participantID string
	connID        string
	enqueuedAt    time.Time
}

// Match is an active pairing held in memory by the engine.
type Match struct {
	MatchID   string
	User1ID   string
	User2ID   string
	ConnID1   string
	ConnID2   string
	IsFake    bool
	StartTime time.Time
	FakeUser  *models.FakeUser
}

// MatchService decides who is paired with whom and when. The waiting
// queue, active-match map and fallback timers are owned state mutated
// only under the engine lock, preserving a single-writer discipline.
type MatchService struct {
	Presence  *PresenceService
	Signals   *SignalService
	Recorder  MatchRecorder
	FakeUsers *FakeUserService

	// FallbackDelay is how long a requester waits for a real partner
	// before the synthetic fallback is considered.
	FallbackDelay time.Duration
	// SecondChance is the extra wait granted when the first fallback
	// defers; synthesis is unconditional once it elapses.
	SecondChance time.Duration
	// FakeMatchChance is the probability of synthesizing immediately
	// when FallbackDelay expires.
	FakeMatchChance float64

	mu      sync.Mutex
	waiting []waitingEntry
	active  map[string]*Match
	byConn  map[string]string
	timers  map[string]*time.Timer
}

func NewMatchService(presence *PresenceService, signals *SignalService, recorder MatchRecorder, fakeUsers *FakeUserService) *MatchService {
	return &MatchService{
		Presence:        presence,
		Signals:         signals,
		Recorder:        recorder,
		FakeUsers:       fakeUsers,
		FallbackDelay:   5 * time.Second,
		SecondChance:    5 * time.Second,
		FakeMatchChance: 0.8,
		active:          make(map[string]*Match),
		byConn:          make(map[string]string),
		timers:          make(map[string]*time.Timer),
	}
}

// FindMatch pairs the connection with the earliest eligible waiting
// entry, or enqueues it and arms the fallback timer. Calling it while
// already matched is a no-op; calling it while waiting collapses to a
// requeue.
func (ms *MatchService) FindMatch(connID string) {
	conn, ok := ms.Presence.Get(connID)
	if !ok {
		return
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, matched := ms.byConn[connID]; matched {
		return
	}
	ms.removeWaitingLocked(connID)
	ms.cancelTimerLocked(connID)

	if partner, found := ms.takeCounterpartLocked(conn); found {
		ms.bindLocked(conn, partner)
		return
	}

	ms.waiting = append(ms.waiting, waitingEntry{
		participantID: conn.ParticipantID,
		connID:        connID,
		enqueuedAt:    time.Now(),
	})
	ms.Presence.Emit(connID, models.EventMatchStatus, models.MatchStatusEvent{Status: "waiting"})
	ms.armFallbackLocked(connID, ms.FallbackDelay, false)
}

// takeCounterpartLocked scans the queue in enqueue order for the first
// eligible entry and removes it. Entries whose connection died are
// dropped on the way.
func (ms *MatchService) takeCounterpartLocked(conn Connection) (Connection, bool) {
	kept := ms.waiting[:0]
	var partner Connection
	found := false

	for _, entry := range ms.waiting {
		if found {
			kept = append(kept, entry)
			continue
		}
		candidate, alive := ms.Presence.Get(entry.connID)
		if !alive {
			continue
		}
		if !eligible(conn, candidate) {
			kept = append(kept, entry)
			continue
		}
		partner = candidate
		found = true
	}

	ms.waiting = kept
	return partner, found
}

// eligible reports whether two connections may be paired: distinct
// participants, and never a connection with its own duo partner.
func eligible(a, b Connection) bool {
	if a.ParticipantID == b.ParticipantID {
		return false
	}
	if a.DuoConnID == b.ConnID || b.DuoConnID == a.ConnID {
		return false
	}
	return true
}

// bindLocked creates a real match between the requester and a waiting
// partner and fans out all notifications. The requester asked second,
// so the requester side is polite.
func (ms *MatchService) bindLocked(requester, partner Connection) {
	m := &Match{
		MatchID:   uuid.NewString(),
		User1ID:   requester.ParticipantID,
		User2ID:   partner.ParticipantID,
		ConnID1:   requester.ConnID,
		ConnID2:   partner.ConnID,
		StartTime: time.Now(),
	}
	ms.active[m.MatchID] = m
	ms.byConn[requester.ConnID] = m.MatchID
	ms.byConn[partner.ConnID] = m.MatchID
	ms.cancelTimerLocked(partner.ConnID)

	ms.Signals.Bind(m.MatchID, requester.ConnID, true, partner.ConnID, false)

	ms.Presence.Emit(requester.ConnID, models.EventMatched, models.MatchedEvent{
		MatchID:   m.MatchID,
		PartnerID: partner.ParticipantID,
		StartTime: m.StartTime,
		Polite:    true,
	})
	ms.Presence.Emit(partner.ConnID, models.EventMatched, models.MatchedEvent{
		MatchID:   m.MatchID,
		PartnerID: requester.ParticipantID,
		StartTime: m.StartTime,
		Polite:    false,
	})

	ms.fanOutDuo(m.MatchID, requester, partner)
	ms.fanOutDuo(m.MatchID, partner, requester)

	go ms.Recorder.RecordStart(context.Background(), startRecord(m))
}

// fanOutDuo notifies member's duo connection about the counterpart of a
// pairing. Duo links are informational fan-out, never a matching unit.
func (ms *MatchService) fanOutDuo(matchID string, member, counterpart Connection) {
	if member.DuoConnID == "" {
		return
	}
	duoName, _ := ms.Presence.Lookup(counterpart.DuoConnID)
	ms.Presence.Emit(member.DuoConnID, models.EventPeer, models.PeerEvent{
		MatchID:  matchID,
		PairID:   counterpart.ConnID,
		PairName: counterpart.ParticipantID,
		DuoID:    counterpart.DuoConnID,
		DuoName:  duoName,
		Polite:   true,
	})
}

// armFallbackLocked schedules the fallback decision for a waiting
// connection. The timer re-checks liveness under the engine lock, so a
// fire after the connection matched or disconnected is a no-op.
func (ms *MatchService) armFallbackLocked(connID string, delay time.Duration, final bool) {
	ms.timers[connID] = time.AfterFunc(delay, func() {
		ms.fallbackFired(connID, final)
	})
}

func (ms *MatchService) fallbackFired(connID string, final bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.timers, connID)
	if !ms.isWaitingLocked(connID) {
		return
	}

	if !final && rand.Float64() >= ms.FakeMatchChance {
		// Keep trying for a real partner a little longer; synthesis is
		// unconditional when the second timer fires.
		ms.armFallbackLocked(connID, ms.SecondChance, true)
		return
	}

	ms.synthesizeLocked(connID)
}

// synthesizeLocked binds a waiting connection to a synthetic counterpart.
// The synthetic side has no live socket and receives nothing.
func (ms *MatchService) synthesizeLocked(connID string) {
	ms.removeWaitingLocked(connID)

	conn, ok := ms.Presence.Get(connID)
	if !ok {
		return
	}

	fake := ms.FakeUsers.Pick()
	m := &Match{
		MatchID:   uuid.NewString(),
		User1ID:   conn.ParticipantID,
		User2ID:   fake.ID,
		ConnID1:   connID,
		ConnID2:   "fake-" + fake.ID,
		IsFake:    true,
		StartTime: time.Now(),
		FakeUser:  &fake,
	}
	ms.active[m.MatchID] = m
	ms.byConn[connID] = m.MatchID

	ms.Presence.Emit(connID, models.EventMatched, models.MatchedEvent{
		MatchID:   m.MatchID,
		PartnerID: fake.ID,
		IsFake:    true,
		StartTime: m.StartTime,
		FakeUser:  &fake,
	})

	go ms.Recorder.RecordStart(context.Background(), startRecord(m))
}

// EndMatch terminates a match voluntarily. Unknown match ids are a
// silent no-op; callers may race disconnect and explicit end.
func (ms *MatchService) EndMatch(matchID string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.endMatchLocked(matchID)
}

func (ms *MatchService) endMatchLocked(matchID string) {
	m, ok := ms.active[matchID]
	if !ok {
		return
	}

	endTime := time.Now()
	duration := endTime.Sub(m.StartTime)

	delete(ms.active, matchID)
	delete(ms.byConn, m.ConnID1)
	if !m.IsFake {
		delete(ms.byConn, m.ConnID2)
	}
	ms.Signals.Teardown(matchID)

	ended := models.MatchEndedEvent{
		MatchID:  matchID,
		Duration: duration.Milliseconds(),
		IsFake:   m.IsFake,
	}
	ms.Presence.Emit(m.ConnID1, models.EventMatchEnded, ended)
	if !m.IsFake {
		ms.Presence.Emit(m.ConnID2, models.EventMatchEnded, ended)
	}

	go ms.Recorder.RecordEnd(context.Background(), matchID, endTime, duration)
}

// HandleDisconnect cancels the connection's fallback timers, purges its
// waiting entry and ends any active match referencing it, so no Match or
// WaitingEntry ever references a dead connection.
func (ms *MatchService) HandleDisconnect(connID string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.cancelTimerLocked(connID)
	ms.removeWaitingLocked(connID)

	matchID, ok := ms.byConn[connID]
	if !ok {
		return
	}
	if m := ms.active[matchID]; m != nil && !m.IsFake {
		survivor := m.ConnID1
		if survivor == connID {
			survivor = m.ConnID2
		}
		ms.Presence.Emit(survivor, models.EventStrangerLeft)
	}
	ms.endMatchLocked(matchID)
}

// Skip notifies the named peer connections that the user left and ends
// the skipper's active match.
func (ms *MatchService) Skip(connID string, targets []string) {
	for _, target := range targets {
		if target != "" {
			ms.Presence.Emit(target, models.EventStrangerLeft)
		}
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if matchID, ok := ms.byConn[connID]; ok {
		ms.endMatchLocked(matchID)
	}
}

// Stats reports the live queue depth and active match count.
func (ms *MatchService) Stats() (waiting, active int) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.waiting), len(ms.active)
}

func (ms *MatchService) isWaitingLocked(connID string) bool {
	for _, entry := range ms.waiting {
		if entry.connID == connID {
			return true
		}
	}
	return false
}

func (ms *MatchService) removeWaitingLocked(connID string) {
	kept := ms.waiting[:0]
	for _, entry := range ms.waiting {
		if entry.connID != connID {
			kept = append(kept, entry)
		}
	}
	ms.waiting = kept
}

func (ms *MatchService) cancelTimerLocked(connID string) {
	if timer, ok := ms.timers[connID]; ok {
		timer.Stop()
		delete(ms.timers, connID)
	}
}

func startRecord(m *Match) models.MatchRecord {
	return models.MatchRecord{
		MatchID:       m.MatchID,
		ParticipantID: m.User1ID,
		CounterpartID: m.User2ID,
		IsFake:        m.IsFake,
		StartTime:     m.StartTime.UTC().Format(time.RFC3339),
	}
}
