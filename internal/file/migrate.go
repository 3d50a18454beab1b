package file

import (
	"fmt"
	"slices"

	"github.com/tpsoftworks/todo/pkg/types"
)

// resolvePath returns the schemas from source through target, inclusive,
// in chain order. A source equal to target yields a single element.
//
// Returns ErrUnknownVersion if source is not in the chain, and
// ErrMigrationPath if target is missing or does not come after source.
func resolvePath(c []schema, source, target string) ([]schema, error) {
	from := slices.IndexFunc(c, func(s schema) bool { return s.tag == source })
	if from < 0 {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownVersion, source)
	}

	var path []schema
	reached := false
	for _, s := range c[from:] {
		path = append(path, s)
		if s.tag == target {
			reached = true
			break
		}
	}
	if !reached {
		// target is unknown, or sits before source in the chain.
		return nil, fmt.Errorf("%w: %s to %q", types.ErrMigrationPath, source, target)
	}
	for i := 1; i < len(path); i++ {
		if path[i].seq <= path[i-1].seq {
			return nil, fmt.Errorf("%w: %s does not follow %s", types.ErrMigrationPath, path[i].tag, path[i-1].tag)
		}
	}
	return path, nil
}

// migrate walks path pairwise, upgrading ds one version at a time.
// Paths of zero or one element return ds unchanged.
func migrate(ds dataset, path []schema) (dataset, error) {
	if len(path) <= 1 {
		return ds, nil
	}
	if path[0].tag != ds.version() {
		return nil, fmt.Errorf("%w: path starts at %s, data is %s", types.ErrMigrationPath, path[0].tag, ds.version())
	}

	cur := ds
	for _, next := range path[1:] {
		if next.upgrade == nil {
			return nil, fmt.Errorf("%w: %s has no upgrade from %s", types.ErrMigrationPath, next.tag, cur.version())
		}
		upgraded, err := next.upgrade(cur)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrMigrationPath, err)
		}
		cur = upgraded
	}
	return cur, nil
}
