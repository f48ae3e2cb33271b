package service

import (
	"errors"

	"slotshare/core/utils"
	"slotshare/modules/availability/entity"
)

var ErrSlotNotFound = errors.New("availability slot not found")

// SlotStore holds the user's availability slots in insertion order. It is
// not safe for concurrent use; Workspace serializes access.
type SlotStore struct {
	slots []entity.AvailabilitySlot
	newID func() string
}

func NewSlotStore() *SlotStore {
	return &SlotStore{newID: utils.GenerateID}
}

func (s *SlotStore) Create(interval entity.Interval) entity.AvailabilitySlot {
	slot := entity.AvailabilitySlot{
		ID:       s.newID(),
		Title:    entity.AvailableTitle,
		Interval: interval,
	}
	s.slots = append(s.slots, slot)
	return slot
}

func (s *SlotStore) indexOf(id string) int {
	for i := range s.slots {
		if s.slots[i].ID == id {
			return i
		}
	}
	return -1
}

// Update replaces a slot's interval in place, keeping its id and position.
func (s *SlotStore) Update(id string, interval entity.Interval) (entity.AvailabilitySlot, error) {
	i := s.indexOf(id)
	if i < 0 {
		return entity.AvailabilitySlot{}, ErrSlotNotFound
	}
	s.slots[i].Interval = interval
	return s.slots[i], nil
}

func (s *SlotStore) Remove(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrSlotNotFound
	}
	s.slots = append(s.slots[:i], s.slots[i+1:]...)
	return nil
}

func (s *SlotStore) RemoveAll() {
	s.slots = nil
}

// Replace swaps the whole collection, assigning fresh ids.
func (s *SlotStore) Replace(intervals []entity.Interval) []entity.AvailabilitySlot {
	s.slots = make([]entity.AvailabilitySlot, 0, len(intervals))
	for _, iv := range intervals {
		s.Create(iv)
	}
	return s.List()
}

func (s *SlotStore) Get(id string) (entity.AvailabilitySlot, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return entity.AvailabilitySlot{}, false
	}
	return s.slots[i], true
}

func (s *SlotStore) List() []entity.AvailabilitySlot {
	out := make([]entity.AvailabilitySlot, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s *SlotStore) Len() int {
	return len(s.slots)
}
