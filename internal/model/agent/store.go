package agent

// Store exposes agent profile retrieval.
type Store interface {
	List() []Profile
	FindByName(name string) (Profile, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Profile
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied profiles.
func NewMemoryStore(items []Profile) *MemoryStore {
	return &MemoryStore{items: append([]Profile(nil), items...)}
}

// List returns the configured profiles.
func (s *MemoryStore) List() []Profile {
	return append([]Profile(nil), s.items...)
}

// FindByName looks up a profile by its exact name.
func (s *MemoryStore) FindByName(name string) (Profile, bool) {
	for _, item := range s.items {
		if item.Name == name {
			return item, true
		}
	}
	return Profile{}, false
}
