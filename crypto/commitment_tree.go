// commitment_tree.go implements the append-only Merkle tree accumulator for
// identity commitments. The tree has a fixed depth chosen at construction,
// supporting up to 2^depth leaves.
//
// All node combination uses the Poseidon field hash. Empty positions are
// backed by a precomputed zero-value ladder: Z[0] is the empty-leaf
// constant and Z[k] = H(Z[k-1], Z[k-1]). An odd trailing node pairs with
// the level's zero value, never with a copy of itself; self-duplication
// would make boundary proofs inconsistent once later inserts fill the
// padding slot.
package crypto

import (
	"errors"
	"sync"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// TreeDepth is the default depth of the commitment tree, supporting
// 2^20 registrations.
const TreeDepth = 20

// Commitment tree errors.
var (
	ErrTreeFull     = errors.New("commitment_tree: tree is full")
	ErrTreeBadIndex = errors.New("commitment_tree: index out of range")
	ErrTreeBadDepth = errors.New("commitment_tree: depth must be in [1, 32]")
)

// MerkleProof is an inclusion proof for a leaf. Siblings[k] is the sibling
// node at level k; Directions[k] is 0 when the path node is a left child at
// that level and 1 when it is a right child.
type MerkleProof struct {
	Index      uint64
	Siblings   []fr.Element
	Directions []byte
}

// CommitmentTree is an append-only Merkle tree accumulator over field
// elements. Each layer of intermediate hashes is cached so an insert only
// recomputes the path from the new leaf to the root.
type CommitmentTree struct {
	mu      sync.RWMutex
	depth   int
	zeros   []fr.Element   // zeros[k] = empty subtree hash at level k
	layers  [][]fr.Element // layers[0] = leaves, layers[depth][0] = root
	nextIdx uint64
	hasher  Hasher
}

// NewCommitmentTree creates an empty tree of the given depth using the
// supplied hash primitive.
func NewCommitmentTree(depth int, h Hasher) (*CommitmentTree, error) {
	if depth < 1 || depth > 32 {
		return nil, ErrTreeBadDepth
	}

	zeros := make([]fr.Element, depth+1)
	for k := 1; k <= depth; k++ {
		zeros[k] = h.Hash2(zeros[k-1], zeros[k-1])
	}

	layers := make([][]fr.Element, depth+1)
	for k := range layers {
		layers[k] = make([]fr.Element, 0, 64)
	}

	return &CommitmentTree{
		depth:  depth,
		zeros:  zeros,
		layers: layers,
		hasher: h,
	}, nil
}

// Depth returns the fixed tree depth.
func (ct *CommitmentTree) Depth() int {
	return ct.depth
}

// Root returns the current Merkle root. An empty tree has the root of a
// fully empty subtree at the top level.
func (ct *CommitmentTree) Root() fr.Element {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.rootLocked()
}

// Size returns the number of inserted leaves.
func (ct *CommitmentTree) Size() uint64 {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.nextIdx
}

// Leaf returns the leaf value at the given index.
func (ct *CommitmentTree) Leaf(index uint64) (fr.Element, error) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	if index >= ct.nextIdx {
		return fr.Element{}, ErrTreeBadIndex
	}
	return ct.layers[0][index], nil
}

// Insert appends a leaf and returns its index. The layer cache is updated
// incrementally: only the path from the new leaf to the root is rehashed.
func (ct *CommitmentTree) Insert(leaf fr.Element) (uint64, error) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.insertLocked(leaf)
}

// BatchInsert appends multiple leaves and returns the starting index.
// Either every leaf is inserted or none is.
func (ct *CommitmentTree) BatchInsert(leaves []fr.Element) (uint64, error) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	if ct.nextIdx+uint64(len(leaves)) > ct.capacity() {
		return 0, ErrTreeFull
	}
	start := ct.nextIdx
	for _, leaf := range leaves {
		if _, err := ct.insertLocked(leaf); err != nil {
			return 0, err
		}
	}
	return start, nil
}

// Proof generates the inclusion proof for the leaf at index. At each level
// the real sibling is used when present, otherwise the level's zero value.
func (ct *CommitmentTree) Proof(index uint64) (*MerkleProof, error) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	if index >= ct.nextIdx {
		return nil, ErrTreeBadIndex
	}

	proof := &MerkleProof{
		Index:      index,
		Siblings:   make([]fr.Element, ct.depth),
		Directions: make([]byte, ct.depth),
	}

	idx := index
	for level := 0; level < ct.depth; level++ {
		sib := idx ^ 1
		if sib < uint64(len(ct.layers[level])) {
			proof.Siblings[level] = ct.layers[level][sib]
		} else {
			proof.Siblings[level] = ct.zeros[level]
		}
		proof.Directions[level] = byte(idx & 1)
		idx >>= 1
	}
	return proof, nil
}

// VerifyProof checks that leaf at proof.Index hashes up to root.
func VerifyProof(h Hasher, leaf fr.Element, proof *MerkleProof, root fr.Element) bool {
	if proof == nil || len(proof.Siblings) != len(proof.Directions) {
		return false
	}

	current := leaf
	for level := range proof.Siblings {
		if proof.Directions[level] == 0 {
			current = h.Hash2(current, proof.Siblings[level])
		} else {
			current = h.Hash2(proof.Siblings[level], current)
		}
	}
	return current.Equal(&root)
}

func (ct *CommitmentTree) capacity() uint64 {
	return 1 << uint(ct.depth)
}

func (ct *CommitmentTree) rootLocked() fr.Element {
	if len(ct.layers[ct.depth]) == 0 {
		return ct.zeros[ct.depth]
	}
	return ct.layers[ct.depth][0]
}

// insertLocked appends the leaf and rehashes its path to the root.
func (ct *CommitmentTree) insertLocked(leaf fr.Element) (uint64, error) {
	if ct.nextIdx >= ct.capacity() {
		return 0, ErrTreeFull
	}

	idx := ct.nextIdx
	ct.layers[0] = append(ct.layers[0], leaf)
	ct.nextIdx++

	pos := idx
	for level := 0; level < ct.depth; level++ {
		parent := pos >> 1
		left := ct.layers[level][pos&^1]
		right := ct.zeros[level]
		if rightIdx := pos | 1; rightIdx < uint64(len(ct.layers[level])) {
			right = ct.layers[level][rightIdx]
		}
		node := ct.hasher.Hash2(left, right)

		if parent < uint64(len(ct.layers[level+1])) {
			ct.layers[level+1][parent] = node
		} else {
			ct.layers[level+1] = append(ct.layers[level+1], node)
		}
		pos = parent
	}
	return idx, nil
}
