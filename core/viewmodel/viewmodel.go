// Package viewmodel derives the filtered, sorted and aggregated views shown to the user.
// Every view is recomputed from the EntityStore on each call; nothing is cached across snapshots.
package viewmodel

import (
	"sort"
	"time"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/class"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
	"github.com/Abraham77967/Taskmate-Web/core/store"
	"github.com/Abraham77967/Taskmate-Web/core/timeutil"
)

const (
	DefaultUpcomingLimit      = 5
	DefaultRecentClassesLimit = 3
)

// Filter narrows the homework list. Empty fields pass everything.
type Filter struct {
	ClassID string          `query:"class_id"`
	Status  homework.Status `query:"status"`
}

func (f Filter) Matches(hw homework.Homework) bool {
	if f.ClassID != "" && hw.ClassID != f.ClassID {
		return false
	}
	if f.Status != "" && hw.Status != f.Status {
		return false
	}
	return true
}

func (f Filter) IsEmpty() bool { return f.ClassID == "" && f.Status == "" }

type ViewModel struct {
	store              *store.EntityStore
	upcomingLimit      int
	recentClassesLimit int
	loc                *time.Location
}

// New builds a ViewModel over s. Form dates are rendered in loc (UTC when nil).
func New(s *store.EntityStore, conf core.DashboardConfig, loc *time.Location) *ViewModel {
	if loc == nil {
		loc = time.UTC
	}
	vm := &ViewModel{
		store:              s,
		upcomingLimit:      conf.UpcomingLimit,
		recentClassesLimit: conf.RecentClassesLimit,
		loc:                loc,
	}
	if vm.upcomingLimit <= 0 {
		vm.upcomingLimit = DefaultUpcomingLimit
	}
	if vm.recentClassesLimit <= 0 {
		vm.recentClassesLimit = DefaultRecentClassesLimit
	}
	return vm
}

// FilteredHomework applies the class filter, then the status filter, and sorts by due date.
// Homework due at the same instant keeps its store order.
func (vm *ViewModel) FilteredHomework(f Filter) []homework.Homework {
	return filterHomework(vm.store.HomeworkList(), f)
}

func filterHomework(all []homework.Homework, f Filter) []homework.Homework {
	res := make([]homework.Homework, 0, len(all))
	for _, hw := range all {
		if f.Matches(hw) {
			res = append(res, hw)
		}
	}
	sortByDueDate(res)
	return res
}

// UpcomingHomework returns up to limit uncompleted homework due at or after now, soonest first.
// A limit <= 0 uses the configured default.
func (vm *ViewModel) UpcomingHomework(now time.Time, limit int) []homework.Homework {
	if limit <= 0 {
		limit = vm.upcomingLimit
	}
	all := vm.store.HomeworkList()
	res := make([]homework.Homework, 0, len(all))
	for _, hw := range all {
		if !hw.IsCompleted && !hw.DueDate.Before(now) {
			res = append(res, hw)
		}
	}
	sortByDueDate(res)
	if len(res) > limit {
		res = res[:limit]
	}
	return res
}

// RecentClasses returns the first limit classes in store order.
func (vm *ViewModel) RecentClasses(limit int) []class.Class {
	if limit <= 0 {
		limit = vm.recentClassesLimit
	}
	classes := vm.store.Classes()
	if len(classes) > limit {
		classes = classes[:limit]
	}
	return classes
}

// ResolveClassFor looks up the class hw belongs to. It is absent when the class was deleted.
func (vm *ViewModel) ResolveClassFor(hw homework.Homework) (class.Class, bool) {
	if hw.ClassID == "" {
		return class.Class{}, false
	}
	return vm.store.Class(hw.ClassID)
}

// Dashboard is the summary shown on the home view.
type Dashboard struct {
	Upcoming      []UpcomingItem `json:"upcoming"`
	RecentClasses []ClassItem    `json:"recent_classes"`
}

func (vm *ViewModel) Dashboard(now time.Time) Dashboard {
	return Dashboard{
		Upcoming:      vm.UpcomingItems(now, 0),
		RecentClasses: vm.classItems(vm.RecentClasses(0)),
	}
}

func sortByDueDate(list []homework.Homework) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DueDate.Before(list[j].DueDate)
	})
}

// ClassItems returns every class with its display facts, in store order.
func (vm *ViewModel) ClassItems() []ClassItem {
	return vm.classItems(vm.store.Classes())
}

func (vm *ViewModel) classItems(classes []class.Class) []ClassItem {
	items := make([]ClassItem, 0, len(classes))
	for _, cls := range classes {
		items = append(items, newClassItem(cls))
	}
	return items
}

// ClassOptions lists the classes as picker options for filters and forms.
func (vm *ViewModel) ClassOptions() []Option {
	classes := vm.store.Classes()
	opts := make([]Option, 0, len(classes))
	for _, cls := range classes {
		opts = append(opts, Option{Value: cls.ID, Label: cls.Name})
	}
	return opts
}

// HomeworkItems is FilteredHomework with display facts computed for now.
func (vm *ViewModel) HomeworkItems(f Filter, now time.Time) HomeworkList {
	all := vm.store.HomeworkList()
	filtered := filterHomework(all, f)

	items := make([]HomeworkItem, 0, len(filtered))
	for _, hw := range filtered {
		items = append(items, HomeworkItem{
			Homework:     hw,
			Class:        vm.classRef(hw),
			IsOverdue:    timeutil.IsOverdue(hw.DueDate, hw.IsCompleted, now),
			DueLabel:     timeutil.RelativeDueLabel(hw.DueDate, now),
			DaysUntilDue: timeutil.DaysUntil(hw.DueDate, now),
		})
	}
	return HomeworkList{Items: items, Total: len(all)}
}

// UpcomingItems is UpcomingHomework with display facts computed for now.
func (vm *ViewModel) UpcomingItems(now time.Time, limit int) []UpcomingItem {
	upcoming := vm.UpcomingHomework(now, limit)
	items := make([]UpcomingItem, 0, len(upcoming))
	for _, hw := range upcoming {
		days := timeutil.DaysUntil(hw.DueDate, now)
		items = append(items, UpcomingItem{
			Homework:     hw,
			Class:        vm.classRef(hw),
			DaysUntilDue: days,
			DueInLabel:   timeutil.DueInLabel(days),
		})
	}
	return items
}

// EditForm returns the values to prefill the edit form of a homework.
func (vm *ViewModel) EditForm(id string) (HomeworkForm, bool) {
	hw, ok := vm.store.Homework(id)
	if !ok {
		return HomeworkForm{}, false
	}
	return HomeworkForm{
		ID:          hw.ID,
		Title:       hw.Title,
		Description: hw.Description,
		ClassID:     hw.ClassID,
		DueDate:     timeutil.FormatDateForInput(hw.DueDate.In(vm.loc)),
		Priority:    hw.Priority,
		Status:      hw.Status,
	}, true
}

func (vm *ViewModel) classRef(hw homework.Homework) *ClassRef {
	cls, ok := vm.ResolveClassFor(hw)
	if !ok {
		return nil
	}
	return &ClassRef{ID: cls.ID, Name: cls.Name, Color: cls.Color}
}
