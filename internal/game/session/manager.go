package session

import (
	"fmt"
	"sync"
)

// Manager tracks all active characters and their party grouping. The engines
// inside each Character are single-owner; the Manager only guards the
// registry itself. All methods are safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	characters map[string]*Character      // character ID → active character
	partySets  map[string]map[string]bool // party ID → set of character IDs
	partyOf    map[string]string          // character ID → party ID
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		characters: make(map[string]*Character),
		partySets:  make(map[string]map[string]bool),
		partyOf:    make(map[string]string),
	}
}

// Activate registers a character as active.
//
// Postcondition: returns an error if the character ID is already active.
func (m *Manager) Activate(c *Character) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.characters[c.ID()]; exists {
		return fmt.Errorf("character %q already active", c.ID())
	}
	m.characters[c.ID()] = c
	return nil
}

// Deactivate removes a character and cleans up its party membership.
//
// Postcondition: returns an error if the character is not active.
func (m *Manager) Deactivate(characterID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.characters[characterID]; !exists {
		return fmt.Errorf("character %q not active", characterID)
	}
	m.leaveParty(characterID)
	delete(m.characters, characterID)
	return nil
}

// JoinParty moves a character into the given party, leaving any current one.
//
// Postcondition: returns the previous party ID ("" if none), or an error if
// the character is not active.
func (m *Manager) JoinParty(characterID, partyID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.characters[characterID]; !exists {
		return "", fmt.Errorf("character %q not active", characterID)
	}
	previous := m.partyOf[characterID]
	m.leaveParty(characterID)
	if m.partySets[partyID] == nil {
		m.partySets[partyID] = make(map[string]bool)
	}
	m.partySets[partyID][characterID] = true
	m.partyOf[characterID] = partyID
	return previous, nil
}

// LeaveParty removes a character from its party, if any.
func (m *Manager) LeaveParty(characterID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveParty(characterID)
}

// leaveParty removes the membership entry. Caller must hold mu.
func (m *Manager) leaveParty(characterID string) {
	partyID, ok := m.partyOf[characterID]
	if !ok {
		return
	}
	if set, ok := m.partySets[partyID]; ok {
		delete(set, characterID)
		if len(set) == 0 {
			delete(m.partySets, partyID)
		}
	}
	delete(m.partyOf, characterID)
}

// Character returns the active character for the given ID.
//
// Postcondition: returns (character, true) if active, or (nil, false).
func (m *Manager) Character(characterID string) (*Character, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.characters[characterID]
	return c, ok
}

// PartyOf returns the party ID the character belongs to, "" if none.
func (m *Manager) PartyOf(characterID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.partyOf[characterID]
}

// CharactersInParty returns the IDs of all active characters in the party.
//
// Postcondition: returns a slice of character IDs (may be empty).
func (m *Manager) CharactersInParty(partyID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.partySets[partyID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// ActiveCount returns the total number of active characters.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.characters)
}
