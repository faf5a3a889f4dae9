package drawcontext

import "github.com/valdi-render/scenepipe/pkg/geometry"

// LazyPath caches a built path keyed by the size it was built against,
// avoiding rebuilding it on every draw when a layer's frame hasn't
// changed. It must be rebuilt whenever the owning layer's border radius
// changes, via SetNeedsUpdate.
type LazyPath struct {
	path  geometry.Path
	size  geometry.Size
	stale bool
}

// SetNeedsUpdate forces the next Update call to rebuild the path
// regardless of size.
func (l *LazyPath) SetNeedsUpdate() {
	l.size = geometry.Size{}
	l.stale = true
}

// Update reports whether the cached path is stale for size and, if so,
// resets it so the caller can rebuild it via Path().
func (l *LazyPath) Update(size geometry.Size) bool {
	if !l.stale && size == l.size {
		return false
	}
	l.stale = false
	l.size = size
	l.path = *geometry.NewPath()
	return true
}

// Path returns the cached path for in-place rebuilding.
func (l *LazyPath) Path() *geometry.Path { return &l.path }
