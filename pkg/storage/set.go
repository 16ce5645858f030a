package storage

import "container/list"

// orderedSet is a set of record ids that enumerates in insertion order.
// Add, remove and membership are O(1).
type orderedSet struct {
	order *list.List
	elems map[int64]*list.Element
}

func newOrderedSet() *orderedSet {
	return &orderedSet{
		order: list.New(),
		elems: make(map[int64]*list.Element),
	}
}

func (s *orderedSet) add(id int64) bool {
	if _, ok := s.elems[id]; ok {
		return false
	}
	s.elems[id] = s.order.PushBack(id)
	return true
}

func (s *orderedSet) remove(id int64) bool {
	e, ok := s.elems[id]
	if !ok {
		return false
	}
	s.order.Remove(e)
	delete(s.elems, id)
	return true
}

func (s *orderedSet) len() int {
	return len(s.elems)
}

func (s *orderedSet) ids() []int64 {
	ids := make([]int64, 0, len(s.elems))
	for e := s.order.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(int64))
	}
	return ids
}

func (s *orderedSet) reset() {
	s.order.Init()
	s.elems = make(map[int64]*list.Element)
}
