package dedup

// Observer is notified of every content-set lookup made by a Session.
// Implementations shared between sessions must be safe for concurrent use.
type Observer interface {
	// Hit is called when an existing canonical handle is returned.
	Hit(shape Shape)

	// Miss is called when new content is registered.
	Miss(shape Shape)
}

// NoopObserver ignores all notifications. It is the default when no
// WithObserver option is given.
type NoopObserver struct{}

// Hit does nothing.
func (NoopObserver) Hit(Shape) {}

// Miss does nothing.
func (NoopObserver) Miss(Shape) {}
