package fold

import (
	"fmt"

	"github.com/san-kum/fold/internal/vecmath"
)

// Block is one local 3x3 contribution of a constraint.
type Block struct {
	ConstraintID string
	Matrix       vecmath.Mat3
}

type Contact struct {
	ContactID string
	Blocks    []Block
}

// ContactIndices lists the base row of every block of a contact, in block order.
type ContactIndices struct {
	ContactID   string
	BaseIndices []int
}

// BlockCache maps constraint ids to diagonal slots. It is append-only: an id
// keeps its slot for the lifetime of the cache.
type BlockCache struct {
	slots map[string]int
	next  int
}

func NewBlockCache() *BlockCache {
	return &BlockCache{slots: make(map[string]int)}
}

// Lookup returns the base row assigned to id.
func (c *BlockCache) Lookup(id string) (int, bool) {
	slot, ok := c.slots[id]
	return slot * 3, ok
}

func (c *BlockCache) Len() int { return c.next }

func (c *BlockCache) resolve(id string) int {
	slot, ok := c.slots[id]
	if !ok {
		slot = c.next
		c.slots[id] = slot
		c.next++
	}
	return slot * 3
}

type AssemblyOptions struct {
	// Size is the minimum dimension of the assembled matrix.
	Size  int
	Cache *BlockCache
}

type ContactMatrix struct {
	Matrix   *vecmath.Dense
	Contacts []ContactIndices
	Cache    *BlockCache
}

// AssembleContactMatrix writes every block onto the diagonal slot owned by
// its constraint id. Blocks sharing an id within a call are summed; off-block
// entries stay zero. Input is validated before the cache is touched.
func AssembleContactMatrix(contacts []Contact, opts AssemblyOptions) (*ContactMatrix, error) {
	for _, c := range contacts {
		for i, b := range c.Blocks {
			if b.ConstraintID == "" {
				return nil, fmt.Errorf("%w: contact %q block %d has no constraint id", ErrInvalidInput, c.ContactID, i)
			}
			if !b.Matrix.IsFinite() {
				return nil, fmt.Errorf("%w: contact %q block %q has non-finite entries", ErrInvalidInput, c.ContactID, b.ConstraintID)
			}
		}
	}

	cache := opts.Cache
	if cache == nil {
		cache = NewBlockCache()
	}

	indices := make([]ContactIndices, 0, len(contacts))
	for _, c := range contacts {
		ci := ContactIndices{ContactID: c.ContactID, BaseIndices: make([]int, 0, len(c.Blocks))}
		for _, b := range c.Blocks {
			ci.BaseIndices = append(ci.BaseIndices, cache.resolve(b.ConstraintID))
		}
		indices = append(indices, ci)
	}

	size := cache.Len() * 3
	if opts.Size > size {
		size = opts.Size
	}
	m := vecmath.NewDense(size)
	for ci, c := range contacts {
		for bi, b := range c.Blocks {
			m.AddBlock(indices[ci].BaseIndices[bi], b.Matrix)
		}
	}

	return &ContactMatrix{Matrix: m, Contacts: indices, Cache: cache}, nil
}
