package postprocess

// Observer is a registration returned by Observable.Add.
type Observer[T any] struct {
	callback func(T)
	removed  bool
}

// Observable is an ordered list of callbacks notified synchronously.
//
// Observable is not safe for concurrent use; it belongs to the goroutine
// driving the frame.
type Observable[T any] struct {
	observers []*Observer[T]
}

// Add registers fn and returns its registration. A nil fn is ignored and
// returns nil.
func (o *Observable[T]) Add(fn func(T)) *Observer[T] {
	if fn == nil {
		return nil
	}
	obs := &Observer[T]{callback: fn}
	o.observers = append(o.observers, obs)
	return obs
}

// Remove unregisters obs. It reports whether obs was registered.
func (o *Observable[T]) Remove(obs *Observer[T]) bool {
	if obs == nil {
		return false
	}
	for i, cur := range o.observers {
		if cur == obs {
			obs.removed = true
			o.observers = append(o.observers[:i:i], o.observers[i+1:]...)
			return true
		}
	}
	return false
}

// Notify calls every registered callback in registration order. Observers
// removed during notification are skipped; observers added during
// notification run from the next Notify on.
func (o *Observable[T]) Notify(v T) {
	snapshot := append([]*Observer[T](nil), o.observers...)
	for _, obs := range snapshot {
		if !obs.removed {
			obs.callback(v)
		}
	}
}

// Len returns the number of registered observers.
func (o *Observable[T]) Len() int { return len(o.observers) }

// HasObservers reports whether any observer is registered.
func (o *Observable[T]) HasObservers() bool { return len(o.observers) > 0 }

// Clear unregisters every observer.
func (o *Observable[T]) Clear() {
	for _, obs := range o.observers {
		obs.removed = true
	}
	o.observers = nil
}
