// Package fixture serves JSON:API collections loaded from a YAML file.
//
// The fixture file maps resource types to lists of records:
//
//	articles:
//	  - id: "1"
//	    title: Hello
//	    relationships:
//	      author: {type: people, id: "9"}
//	      comments: [{type: comments, id: "5"}]
//	people:
//	  - id: "9"
//	    name: Dan
//
// Every key other than id and relationships is an attribute.
package fixture

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/artpar/apiquery/pkg/jsonapi"
	"gopkg.in/yaml.v3"
)

// Store holds fixture resources by type.
type Store struct {
	mu        sync.RWMutex
	resources map[string][]jsonapi.Resource
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{resources: make(map[string][]jsonapi.Resource)}
}

// LoadFile reads a fixture file into a new store.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

// Parse decodes fixture YAML into a new store.
func Parse(data []byte) (*Store, error) {
	var raw map[string][]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	s := NewStore()
	for typ, items := range raw {
		for i, item := range items {
			if _, ok := item["id"]; !ok {
				return nil, fmt.Errorf("parse fixtures: %s[%d]: missing id", typ, i)
			}
		}
		s.resources[typ] = jsonapi.ResourcesFromMaps(typ, items)
	}
	return s, nil
}

// Put replaces the resources of one type.
func (s *Store) Put(resourceType string, resources ...jsonapi.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[resourceType] = resources
}

// Swap atomically replaces the store contents with other's.
func (s *Store) Swap(other *Store) {
	other.mu.RLock()
	resources := other.resources
	other.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = resources
}

// Types returns the stored resource types, sorted.
func (s *Store) Types() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	types := make([]string, 0, len(s.resources))
	for typ := range s.resources {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// List returns the resources of a type in file order.
func (s *Store) List(resourceType string) ([]jsonapi.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources, ok := s.resources[resourceType]
	if !ok {
		return nil, false
	}
	return append([]jsonapi.Resource(nil), resources...), true
}

// Get returns one resource by type and id.
func (s *Store) Get(resourceType, id string) (jsonapi.Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.resources[resourceType] {
		if r.ID == id {
			return r, true
		}
	}
	return jsonapi.Resource{}, false
}
