package eventfsm

// Order is the precedence of a handler. Lower orders run earlier.
type Order uint8

// DefaultOrder is the order used by the convenience registration methods.
const DefaultOrder Order = 100

// Handler runs after a transition attempt has been decided. Success handlers
// observe the committed state; error handlers observe an unchanged state.
// A returned error is logged and does not stop the remaining handlers.
type Handler[S, E comparable] func(c Context[S, E]) error

type handlerEntry[S, E comparable] struct {
	order   Order
	key     uint64
	handler Handler[S, E]
}

// handlerList is kept sorted by ascending order; equal orders keep insertion
// order. Lists are copy-on-write.
type handlerList[S, E comparable] []handlerEntry[S, E]

// insert returns a new list with h placed after every entry whose order is <= h.order.
func (l handlerList[S, E]) insert(h handlerEntry[S, E]) handlerList[S, E] {
	index := len(l)
	for i := len(l) - 1; i >= 0; i-- {
		if l[i].order <= h.order {
			break
		}
		index = i
	}

	next := make(handlerList[S, E], 0, len(l)+1)
	next = append(next, l[:index]...)
	next = append(next, h)
	return append(next, l[index:]...)
}

// remove returns a new list without the entry for key.
func (l handlerList[S, E]) remove(key uint64) (handlerList[S, E], bool) {
	for i, h := range l {
		if h.key != key {
			continue
		}
		next := make(handlerList[S, E], 0, len(l)-1)
		next = append(next, l[:i]...)
		return append(next, l[i+1:]...), true
	}
	return l, false
}

func mergeHandlers[S, E comparable](a, b handlerList[S, E]) handlerList[S, E] {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	merged := make(handlerList[S, E], 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].order < b[j].order || (a[i].order == b[j].order && a[i].key < b[j].key) {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	return append(merged, b[j:]...)
}

// handlerRegistry holds the success handlers per event reference.
type handlerRegistry[S, E comparable] struct {
	handlers map[Ref[E]]handlerList[S, E]
}

func newHandlerRegistry[S, E comparable]() *handlerRegistry[S, E] {
	return &handlerRegistry[S, E]{handlers: make(map[Ref[E]]handlerList[S, E])}
}

func (r *handlerRegistry[S, E]) add(event Ref[E], h handlerEntry[S, E]) {
	r.handlers[event] = r.handlers[event].insert(h)
}

func (r *handlerRegistry[S, E]) remove(event Ref[E], key uint64) bool {
	list, ok := r.handlers[event].remove(key)
	if !ok {
		return false
	}
	if len(list) == 0 {
		delete(r.handlers, event)
	} else {
		r.handlers[event] = list
	}
	return true
}

// lookup returns the handlers for event and AnyEvent in dispatch order.
func (r *handlerRegistry[S, E]) lookup(event E) handlerList[S, E] {
	return mergeHandlers(r.handlers[Is(event)], r.handlers[AnyEvent[E]()])
}
