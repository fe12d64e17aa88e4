package tetris

import "math/rand"

// Bag is a seeded 7-bag randomizer. Each refill holds one of every piece
// type in shuffled order and is consumed front to back.
type Bag struct {
	rng   *rand.Rand
	queue []PieceType
}

// NewBag creates a bag whose sequence is fully determined by seed.
func NewBag(seed int64) *Bag {
	return &Bag{rng: rand.New(rand.NewSource(seed))}
}

// Next pops the next piece type, refilling the bag when it is empty.
func (b *Bag) Next() PieceType {
	if len(b.queue) == 0 {
		b.refill()
	}
	t := b.queue[0]
	b.queue = b.queue[1:]
	return t
}

// Remaining returns how many pieces are left before the next refill.
func (b *Bag) Remaining() int {
	return len(b.queue)
}

// refill appends a Fisher-Yates shuffled permutation of all seven types.
func (b *Bag) refill() {
	perm := AllPieces
	for i := len(perm) - 1; i > 0; i-- {
		j := b.rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	b.queue = append(b.queue[:0], perm[:]...)
}
