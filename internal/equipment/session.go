package equipment

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/equip-scan-mcp/internal/geometry"
)

// ErrRectNotFound is returned when a RectID does not name a live rectangle in
// the session.
var ErrRectNotFound = errors.New("rectangle not found")

// RectID is the stable identity of a rectangle within one session. IDs are
// assigned monotonically starting at 1 and are never reused, even after the
// rectangle is removed. It is the only key that correlates detection,
// extraction and recognition results; slice positions are never used for that.
type RectID int

// Rectangle is a Box with a stable identity.
type Rectangle struct {
	ID RectID `json:"id"`
	geometry.Box
}

// Session is the arena that owns the rectangles of one screenshot while a user
// reviews them. It is safe for concurrent use.
type Session struct {
	ID        uuid.UUID
	Category  Category
	ImagePath string

	mu    sync.RWMutex
	next  RectID
	boxes map[RectID]geometry.Box
	order []RectID
}

// NewSession creates an empty session for a screenshot.
func NewSession(category Category, imagePath string) *Session {
	return &Session{
		ID:        uuid.New(),
		Category:  category,
		ImagePath: imagePath,
		next:      1,
		boxes:     make(map[RectID]geometry.Box),
	}
}

// Add registers a box and returns its new rectangle.
func (s *Session) Add(b geometry.Box) Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(b)
}

// AddBoxes registers boxes in order, typically the ordered detector output.
func (s *Session) AddBoxes(boxes []geometry.Box) []Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()

	rects := make([]Rectangle, 0, len(boxes))
	for _, b := range boxes {
		rects = append(rects, s.addLocked(b))
	}
	return rects
}

func (s *Session) addLocked(b geometry.Box) Rectangle {
	id := s.next
	s.next++
	s.boxes[id] = b
	s.order = append(s.order, id)
	return Rectangle{ID: id, Box: b}
}

// Update replaces the box of an existing rectangle, keeping its id and position.
func (s *Session) Update(id RectID, b geometry.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boxes[id]; !ok {
		return fmt.Errorf("%w: %d", ErrRectNotFound, id)
	}
	s.boxes[id] = b
	return nil
}

// Remove deletes a rectangle. Its id is retired.
func (s *Session) Remove(id RectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.boxes[id]; !ok {
		return fmt.Errorf("%w: %d", ErrRectNotFound, id)
	}
	delete(s.boxes, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get looks up a rectangle by id.
func (s *Session) Get(id RectID) (Rectangle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.boxes[id]
	if !ok {
		return Rectangle{}, false
	}
	return Rectangle{ID: id, Box: b}, true
}

// Rectangles returns the live rectangles in display order.
func (s *Session) Rectangles() []Rectangle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rects := make([]Rectangle, 0, len(s.order))
	for _, id := range s.order {
		rects = append(rects, Rectangle{ID: id, Box: s.boxes[id]})
	}
	return rects
}

// Boxes returns a copy of the id to box mapping.
func (s *Session) Boxes() map[RectID]geometry.Box {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[RectID]geometry.Box, len(s.boxes))
	for id, b := range s.boxes {
		out[id] = b
	}
	return out
}

// Len returns the number of live rectangles.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
