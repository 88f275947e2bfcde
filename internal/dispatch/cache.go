package dispatch

import (
	"strconv"
	"strings"
	"sync"

	"github.com/vela-lang/vela/internal/typelattice"
)

// SiteCache memoizes Dispatch's result for one bytecode call site, keyed by
// the argument types actually observed there. It is invalidated wholesale
// whenever the lattice's mutation counter or the method table's version
// advances (§9 design note: a new
// `struct`/method definition can change which method is most specific for
// an existing call site, so the cache can't simply assume its old answer
// still holds once the lattice has moved on).
type SiteCache struct {
	mu             sync.Mutex
	latticeVersion uint64
	tableVersion   uint64
	entries        map[string]*Resolution
}

func NewSiteCache() *SiteCache {
	return &SiteCache{entries: make(map[string]*Resolution)}
}

// Lookup returns a cached resolution for name/argTypes if neither the
// lattice nor the method table has mutated since it was cached.
func (c *SiteCache) Lookup(lattice *typelattice.Lattice, mt *MethodTable, name string, argTypes []typelattice.ID) (*Resolution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	lv, tv := lattice.Version(), mt.Version()
	if lv != c.latticeVersion || tv != c.tableVersion {
		c.entries = make(map[string]*Resolution)
		c.latticeVersion, c.tableVersion = lv, tv
		return nil, false
	}
	r, ok := c.entries[cacheKey(name, argTypes)]
	return r, ok
}

// Store records a resolution for later Lookup calls against the same
// lattice and method-table versions.
func (c *SiteCache) Store(lattice *typelattice.Lattice, mt *MethodTable, name string, argTypes []typelattice.ID, r *Resolution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if lattice.Version() != c.latticeVersion || mt.Version() != c.tableVersion {
		c.entries = make(map[string]*Resolution)
		c.latticeVersion, c.tableVersion = lattice.Version(), mt.Version()
	}
	c.entries[cacheKey(name, argTypes)] = r
}

func cacheKey(name string, argTypes []typelattice.ID) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, t := range argTypes {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(t)))
	}
	sb.WriteByte(')')
	return sb.String()
}

// DispatchCached resolves name/argTypes through site, falling back to a
// full Dispatch on a cache miss or a stale lattice/method-table version.
func DispatchCached(site *SiteCache, mt *MethodTable, lattice *typelattice.Lattice, name string, argTypes []typelattice.ID) (*Resolution, error) {
	if r, ok := site.Lookup(lattice, mt, name, argTypes); ok {
		return r, nil
	}
	r, err := Dispatch(mt, lattice, name, argTypes)
	if err != nil {
		return nil, err
	}
	site.Store(lattice, mt, name, argTypes, r)
	return r, nil
}
