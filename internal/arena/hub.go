// Package arena hosts human_vs_human debates over websockets. Each room
// wraps one debate session; its two sides are claimed by websocket
// connections and every accepted speech is broadcast to the room.
package arena

import (
	"sort"
	"sync"
	"time"

	"github.com/Iron-Ham/podium/internal/config"
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
	"github.com/Iron-Ham/podium/internal/logging"
)

// ErrRoomLimit is returned when the hub already holds its maximum rooms.
var ErrRoomLimit = errors.New("arena room limit reached")

// Hub owns the arena's rooms.
type Hub struct {
	maxRooms       int
	maxSpeechBytes int
	logger         *logging.Logger

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewHub creates an empty hub limited by cfg.
func NewHub(cfg *config.ArenaConfig, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Hub{
		maxRooms:       cfg.MaxRooms,
		maxSpeechBytes: cfg.MaxSpeechBytes,
		logger:         logger,
		rooms:          make(map[string]*Room),
	}
}

// SetLimits applies reloaded arena limits. Existing rooms keep the speech
// size they were created with.
func (h *Hub) SetLimits(cfg *config.ArenaConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.maxRooms = cfg.MaxRooms
	h.maxSpeechBytes = cfg.MaxSpeechBytes
}

// Create opens a room for a new debate. The mode is always
// human_vs_human.
func (h *Hub) Create(cfg debate.Config) (*Room, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.maxRooms > 0 && len(h.rooms) >= h.maxRooms {
		return nil, ErrRoomLimit
	}
	r, err := newRoom(cfg, h.maxSpeechBytes, h.logger)
	if err != nil {
		return nil, err
	}
	id := r.ID()
	r.release = func() { h.Remove(id) }
	h.rooms[id] = r
	h.logger.Info("room created", "room", r.ID(), "format", string(r.session.Format()))
	return r, nil
}

// Get returns the room with id.
func (h *Hub) Get(id string) (*Room, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	if !ok {
		return nil, errors.NewNotFoundError("debate", id)
	}
	return r, nil
}

// Remove closes and forgets a room. Rooms remove themselves when their
// debate completes or their last client leaves.
func (h *Hub) Remove(id string) bool {
	h.mu.Lock()
	r, ok := h.rooms[id]
	delete(h.rooms, id)
	h.mu.Unlock()
	if ok {
		r.Close()
	}
	return ok
}

// RoomInfo summarizes a room for listings.
type RoomInfo struct {
	ID       string        `json:"id"`
	Topic    string        `json:"topic"`
	Format   debate.Format `json:"format"`
	Speeches int           `json:"speeches"`
	Total    int           `json:"total_speeches"`
	Complete bool          `json:"complete"`
	SideA    bool          `json:"side_a_taken"`
	SideB    bool          `json:"side_b_taken"`
	Watchers int           `json:"watchers"`
	Created  time.Time     `json:"created_at"`
}

// List returns every room, oldest first.
func (h *Hub) List() []RoomInfo {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		occupied := r.Occupied()
		out = append(out, RoomInfo{
			ID:       r.ID(),
			Topic:    r.session.Topic(),
			Format:   r.session.Format(),
			Speeches: r.session.Len(),
			Total:    r.session.Policy().TotalSpeeches(),
			Complete: r.session.IsComplete(),
			SideA:    occupied[debate.SideA],
			SideB:    occupied[debate.SideB],
			Watchers: r.Watchers(),
			Created:  r.createdAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.Before(out[j].Created) })
	return out
}

// Close removes every room.
func (h *Hub) Close() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*Room)
	h.mu.Unlock()
	for _, r := range rooms {
		r.Close()
	}
}
