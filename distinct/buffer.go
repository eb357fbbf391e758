package distinct

// sampleBuffer is the duplicate-free sample of elements an Estimator
// retains. The Estimator keeps its size at or below the configured capacity
// by thinning whenever an insertion fills it.
type sampleBuffer[T comparable] struct {
	members map[T]struct{}
}

func newSampleBuffer[T comparable](capacity int) *sampleBuffer[T] {
	return &sampleBuffer[T]{members: make(map[T]struct{}, capacity)}
}

func (b *sampleBuffer[T]) contains(v T) bool {
	_, ok := b.members[v]
	return ok
}

func (b *sampleBuffer[T]) insert(v T) {
	b.members[v] = struct{}{}
}

func (b *sampleBuffer[T]) remove(v T) {
	delete(b.members, v)
}

func (b *sampleBuffer[T]) size() int {
	return len(b.members)
}

// thin keeps every held element independently with probability 1/2, one
// fair flip per element. The expected size afterwards is half the size
// before, but the actual size is random and occasionally does not shrink
// at all (probability 2^-size).
func (b *sampleBuffer[T]) thin(src Source) {
	for v := range b.members {
		if !src.Flip() {
			delete(b.members, v)
		}
	}
}
