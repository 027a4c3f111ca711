package game

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// RoomStore is the process-wide registry of active rooms, keyed by id and by
// human-entry join code. It is the uniqueness authority for codes: a code is
// reserved before the room is published, so two concurrent creates can never
// collide.
type RoomStore struct {
	mu     sync.Mutex
	rooms  map[uuid.UUID]*Room
	byCode map[string]uuid.UUID
	rng    *rand.Rand

	pool   QuestionPool
	verify PassphraseVerifier
	sink   EventSink
}

// NewRoomStore builds an empty registry. rng drives join-code generation and
// seeds each room's own rng; a nil rng gets a crypto-seeded one.
func NewRoomStore(pool QuestionPool, verify PassphraseVerifier, sink EventSink, rng *rand.Rand) *RoomStore {
	if rng == nil {
		seed, err := NewSeed()
		if err != nil {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &RoomStore{
		rooms:  make(map[uuid.UUID]*Room),
		byCode: make(map[string]uuid.UUID),
		rng:    rng,
		pool:   pool,
		verify: verify,
		sink:   sink,
	}
}

// generateCodeLocked produces a join code unique among active rooms.
func (s *RoomStore) generateCodeLocked() string {
	for {
		var b strings.Builder
		for i := 0; i < codeLength; i++ {
			b.WriteByte(codeAlphabet[s.rng.Intn(len(codeAlphabet))])
		}
		code := b.String()
		if _, taken := s.byCode[code]; !taken {
			return code
		}
	}
}

// CreateRoom builds a room for the host, assigns it a unique join code and
// publishes it in the registry. The room's OnEmpty is wired to registry
// removal.
func (s *RoomStore) CreateRoom(cfg RoomConfig, hostID uuid.UUID, hostNickname string) (*Room, error) {
	room, err := NewRoom(cfg, hostID, hostNickname, s.pool, s.verify, rand.New(rand.NewSource(s.seed())))
	if err != nil {
		return nil, err
	}
	room.Sink = s.sink
	room.OnEmpty = func(id uuid.UUID) { s.Delete(id) }

	s.mu.Lock()
	room.Code = s.generateCodeLocked()
	s.rooms[room.ID] = room
	s.byCode[room.Code] = room.ID
	s.mu.Unlock()
	return room, nil
}

// seed derives a per-room rng seed from the store rng.
func (s *RoomStore) seed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int63()
}

// Get returns the room with the given id.
func (s *RoomStore) Get(id uuid.UUID) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	return room, ok
}

// GetByCode returns the room with the given join code (case-insensitive).
func (s *RoomStore) GetByCode(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byCode[strings.ToUpper(code)]
	if !ok {
		return nil, false
	}
	room, ok := s.rooms[id]
	return room, ok
}

// Delete removes a room and releases its join code.
func (s *RoomStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok := s.rooms[id]; ok {
		delete(s.byCode, room.Code)
		delete(s.rooms, id)
	}
}

// List returns snapshots of listable rooms: waiting or in-progress, and
// private rooms only when includePrivate is set. Snapshots are taken per
// room, so listing never blocks operations on other rooms.
func (s *RoomStore) List(includePrivate bool) []Snapshot {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	s.mu.Unlock()

	var out []Snapshot
	for _, room := range rooms {
		snap := room.Snapshot()
		if snap.Status != StatusWaiting && snap.Status != StatusInProgress {
			continue
		}
		if snap.Config.Private && !includePrivate {
			continue
		}
		out = append(out, snap)
	}
	return out
}
