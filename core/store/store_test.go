package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Abraham77967/Taskmate-Web/core/class"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
)

func TestEntityStore_replaceSupersedes(t *testing.T) {
	s := New()

	s.ReplaceClasses([]class.Class{{ID: "c1", Name: "Algebra"}, {ID: "c2", Name: "Biology"}})
	s.ReplaceClasses([]class.Class{{ID: "c3", Name: "Chemistry"}})

	_, ok := s.Class("c1")
	assert.False(t, ok, "c1 should be gone after replacement")
	cls, ok := s.Class("c3")
	assert.True(t, ok)
	assert.Equal(t, "Chemistry", cls.Name)
	assert.Len(t, s.Classes(), 1)
}

func TestEntityStore_keepsDeliveryOrder(t *testing.T) {
	s := New()
	s.ReplaceHomework([]homework.Homework{{ID: "h3"}, {ID: "h1"}, {ID: "h2"}})

	ids := make([]string, 0, 3)
	for _, hw := range s.HomeworkList() {
		ids = append(ids, hw.ID)
	}
	assert.Equal(t, []string{"h3", "h1", "h2"}, ids)

	hw, ok := s.Homework("h1")
	assert.True(t, ok)
	assert.Equal(t, "h1", hw.ID)
}

func TestEntityStore_collectionsAreIndependent(t *testing.T) {
	s := New()
	s.ReplaceClasses([]class.Class{{ID: "c1"}})
	s.ReplaceHomework([]homework.Homework{{ID: "h1", ClassID: "c1"}})
	s.ReplaceClasses(nil)

	nCls, nHw := s.Counts()
	assert.Equal(t, 0, nCls)
	assert.Equal(t, 1, nHw)
}

func TestEntityStore_returnsCopies(t *testing.T) {
	s := New()
	input := []class.Class{{ID: "c1", Name: "Algebra"}}
	s.ReplaceClasses(input)
	input[0].Name = "mutated"

	classes := s.Classes()
	classes[0].Name = "mutated again"

	cls, _ := s.Class("c1")
	assert.Equal(t, "Algebra", cls.Name)
}

func TestEntityStore_weekdaysAreNotShared(t *testing.T) {
	s := New()
	input := []class.Class{{ID: "c1", Weekdays: []string{"monday", "wednesday"}}}
	s.ReplaceClasses(input)
	input[0].Weekdays[0] = "sunday"

	s.Classes()[0].Weekdays[0] = "friday"
	cls, _ := s.Class("c1")
	cls.Weekdays[1] = "saturday"

	cls, _ = s.Class("c1")
	assert.Equal(t, []string{"monday", "wednesday"}, cls.Weekdays)
	assert.Equal(t, []string{"monday", "wednesday"}, s.Classes()[0].Weekdays)
}

func TestEntityStore_clear(t *testing.T) {
	s := New()
	s.ReplaceClasses([]class.Class{{ID: "c1"}})
	s.ReplaceHomework([]homework.Homework{{ID: "h1"}})
	s.Clear()

	assert.Empty(t, s.Classes())
	assert.Empty(t, s.HomeworkList())
	_, ok := s.Homework("h1")
	assert.False(t, ok)
}
