package funds

import (
	"fmt"
	"sync/atomic"
)

// Store holds the active catalogue. Readers take a snapshot with Load and use
// it for a whole evaluation; Swap replaces the table in one step.
type Store struct {
	current atomic.Pointer[Catalogue]
}

func NewStore(c *Catalogue) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

// Load returns the active catalogue, nil if none was ever stored.
func (s *Store) Load() *Catalogue {
	return s.current.Load()
}

// Swap installs c and returns the catalogue it replaced.
func (s *Store) Swap(c *Catalogue) *Catalogue {
	return s.current.Swap(c)
}

// ReloadFromFile parses path and installs it. On any error the active
// catalogue is left untouched.
func (s *Store) ReloadFromFile(path string) (*Catalogue, error) {
	c, err := LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reload catalogue: %w", err)
	}
	s.Swap(c)
	return c, nil
}
