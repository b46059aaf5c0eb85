package obj

import "strconv"

// Handle is a generation-checked reference into a session's object arena.
// A handle to a destroyed object never resolves, even after its slot is reused.
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) Valid() bool {
	return h.index > 0
}

func (h Handle) String() string {
	return strconv.FormatUint(uint64(h.index), 10) + "v" + strconv.FormatUint(uint64(h.gen), 10)
}

type slot struct {
	gen uint32
	obj *GameObject
}

// arena is indexed from 1 so the zero Handle is never valid.
type arena struct {
	slots []slot
	free  []uint32
	live  int
}

func (a *arena) insert(g *GameObject) Handle {
	var index uint32
	if n := len(a.free); n > 0 {
		index = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot{})
		index = uint32(len(a.slots))
	}
	s := &a.slots[index-1]
	s.obj = g
	a.live++
	return Handle{index: index, gen: s.gen}
}

func (a *arena) get(h Handle) (*GameObject, bool) {
	if !h.Valid() || int(h.index) > len(a.slots) {
		return nil, false
	}
	s := a.slots[h.index-1]
	if s.gen != h.gen || s.obj == nil {
		return nil, false
	}
	return s.obj, true
}

func (a *arena) remove(h Handle) bool {
	if _, ok := a.get(h); !ok {
		return false
	}
	s := &a.slots[h.index-1]
	s.obj = nil
	s.gen++
	a.free = append(a.free, h.index)
	a.live--
	return true
}

// each visits live objects in slot order.
func (a *arena) each(fn func(*GameObject)) {
	for _, s := range a.slots {
		if s.obj != nil {
			fn(s.obj)
		}
	}
}
