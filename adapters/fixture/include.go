package fixture

import (
	"fmt"
	"strings"

	"github.com/artpar/apiquery/pkg/jsonapi"
)

// resolveIncludes walks each dotted relationship path from the primary
// resources and collects the related resources found in the store. Primary
// resources are never repeated in included. A path segment naming a
// relationship that none of the resources at that level declares is
// rejected.
func resolveIncludes(store *Store, primary []jsonapi.Resource, paths []string) ([]jsonapi.Resource, error) {
	seen := make(map[jsonapi.ResourceIdentifier]bool, len(primary))
	for _, r := range primary {
		seen[r.Identifier()] = true
	}

	var included []jsonapi.Resource
	for _, path := range paths {
		level := primary
		for _, name := range strings.Split(path, ".") {
			declared := len(level) == 0
			var next []jsonapi.Resource

			for _, r := range level {
				if _, ok := r.Relationships[name]; ok {
					declared = true
				}
				for _, id := range r.Related(name) {
					related, ok := store.Get(id.Type, id.ID)
					if !ok {
						continue
					}
					next = append(next, related)
					if !seen[id] {
						seen[id] = true
						included = append(included, related)
					}
				}
			}

			if !declared {
				return nil, fmt.Errorf("unknown relationship %q in include path %q", name, path)
			}
			level = next
		}
	}
	return included, nil
}
