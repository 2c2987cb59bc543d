package eventfsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orders(l handlerList[int, string]) []Order {
	out := make([]Order, len(l))
	for i, h := range l {
		out[i] = h.order
	}
	return out
}

func keys(l handlerList[int, string]) []uint64 {
	out := make([]uint64, len(l))
	for i, h := range l {
		out[i] = h.key
	}
	return out
}

func TestHandlerList_Insert(t *testing.T) {
	var l handlerList[int, string]
	for i, o := range []Order{100, 50, 100, 10, 255, 50, 0} {
		l = l.insert(handlerEntry[int, string]{order: o, key: uint64(i + 1)})
	}

	assert.Equal(t, []Order{0, 10, 50, 50, 100, 100, 255}, orders(l))
	assert.Equal(t, []uint64{7, 4, 2, 6, 1, 3, 5}, keys(l), "equal orders keep insertion order")
}

func TestHandlerList_InsertIsCopyOnWrite(t *testing.T) {
	var l handlerList[int, string]
	l = l.insert(handlerEntry[int, string]{order: 10, key: 1})
	l = l.insert(handlerEntry[int, string]{order: 30, key: 2})
	snapshot := l

	l = l.insert(handlerEntry[int, string]{order: 20, key: 3})

	assert.Equal(t, []uint64{1, 2}, keys(snapshot))
	assert.Equal(t, []uint64{1, 3, 2}, keys(l))
}

func TestHandlerList_Remove(t *testing.T) {
	var l handlerList[int, string]
	for i := 1; i <= 3; i++ {
		l = l.insert(handlerEntry[int, string]{order: DefaultOrder, key: uint64(i)})
	}
	snapshot := l

	l, ok := l.remove(2)
	require.True(t, ok)
	assert.Equal(t, []uint64{1, 3}, keys(l))
	assert.Equal(t, []uint64{1, 2, 3}, keys(snapshot))

	_, ok = l.remove(2)
	assert.False(t, ok)
}

func TestMergeHandlers(t *testing.T) {
	a := handlerList[int, string]{{order: 10, key: 1}, {order: 100, key: 4}}
	b := handlerList[int, string]{{order: 10, key: 2}, {order: 50, key: 3}, {order: 100, key: 5}}

	merged := mergeHandlers(a, b)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, keys(merged))

	assert.Equal(t, keys(a), keys(mergeHandlers(a, nil)))
	assert.Equal(t, keys(b), keys(mergeHandlers(nil, b)))
}

func TestHandlerRegistry(t *testing.T) {
	r := newHandlerRegistry[int, string]()
	r.add(Is("go"), handlerEntry[int, string]{order: 50, key: 1})
	r.add(AnyEvent[string](), handlerEntry[int, string]{order: 10, key: 2})
	r.add(Is("stop"), handlerEntry[int, string]{order: 0, key: 3})

	assert.Equal(t, []uint64{2, 1}, keys(r.lookup("go")))
	assert.Equal(t, []uint64{3, 2}, keys(r.lookup("stop")))
	assert.Equal(t, []uint64{2}, keys(r.lookup("other")))

	assert.True(t, r.remove(Is("go"), 1))
	assert.False(t, r.remove(Is("go"), 1))
	assert.NotContains(t, r.handlers, Is("go"))
}
