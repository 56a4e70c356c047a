// Package store holds the signed in user's classes and homework as last delivered by the live feeds.
package store

import (
	"sync"

	"github.com/Abraham77967/Taskmate-Web/core/class"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
)

type (
	classTable struct {
		list []class.Class
		idx  map[string]int
	}

	homeworkTable struct {
		list []homework.Homework
		idx  map[string]int
	}

	// EntityStore is the only owner of entity data. Collections are only ever replaced as a whole.
	EntityStore struct {
		mutex    sync.RWMutex
		classes  classTable
		homework homeworkTable
	}
)

func New() *EntityStore {
	return &EntityStore{
		classes:  classTable{idx: make(map[string]int)},
		homework: homeworkTable{idx: make(map[string]int)},
	}
}

// ReplaceClasses supersedes every class with the given snapshot.
func (s *EntityStore) ReplaceClasses(classes []class.Class) {
	list := make([]class.Class, len(classes))
	for i, cls := range classes {
		list[i] = cloneClass(cls)
	}
	idx := make(map[string]int, len(list))
	for i, cls := range list {
		idx[cls.ID] = i
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.classes = classTable{list: list, idx: idx}
}

// ReplaceHomework supersedes every homework with the given snapshot.
func (s *EntityStore) ReplaceHomework(list []homework.Homework) {
	cp := make([]homework.Homework, len(list))
	copy(cp, list)
	idx := make(map[string]int, len(cp))
	for i, hw := range cp {
		idx[hw.ID] = i
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.homework = homeworkTable{list: cp, idx: idx}
}

// Clear empties both collections.
func (s *EntityStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.classes = classTable{idx: make(map[string]int)}
	s.homework = homeworkTable{idx: make(map[string]int)}
}

func (s *EntityStore) Class(id string) (class.Class, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if i, ok := s.classes.idx[id]; ok {
		return cloneClass(s.classes.list[i]), true
	}
	return class.Class{}, false
}

func (s *EntityStore) Homework(id string) (homework.Homework, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if i, ok := s.homework.idx[id]; ok {
		return s.homework.list[i], true
	}
	return homework.Homework{}, false
}

// Classes returns a copy of the classes, in delivery order.
func (s *EntityStore) Classes() []class.Class {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	res := make([]class.Class, len(s.classes.list))
	for i, cls := range s.classes.list {
		res[i] = cloneClass(cls)
	}
	return res
}

// HomeworkList returns a copy of the homework, in delivery order.
func (s *EntityStore) HomeworkList() []homework.Homework {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	res := make([]homework.Homework, len(s.homework.list))
	copy(res, s.homework.list)
	return res
}

// Counts returns the size of both collections.
func (s *EntityStore) Counts() (nClasses, nHomework int) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.classes.list), len(s.homework.list)
}

// cloneClass copies cls so the store and its callers never share a Weekdays array.
func cloneClass(cls class.Class) class.Class {
	if cls.Weekdays != nil {
		cls.Weekdays = append([]string(nil), cls.Weekdays...)
	}
	return cls
}
