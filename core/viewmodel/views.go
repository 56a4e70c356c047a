package viewmodel

import (
	"github.com/Abraham77967/Taskmate-Web/core/class"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
	"github.com/Abraham77967/Taskmate-Web/core/timeutil"
)

type (
	// ClassRef is the part of a class shown next to its homework.
	ClassRef struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	HomeworkItem struct {
		homework.Homework
		Class        *ClassRef `json:"class"` // nil when the class was deleted
		IsOverdue    bool      `json:"isOverdue"`
		DueLabel     string    `json:"dueLabel"`
		DaysUntilDue int       `json:"daysUntilDue"`
	}

	// HomeworkList is a filtered homework page. Total counts all homework, filtered or not.
	HomeworkList struct {
		Items []HomeworkItem `json:"items"`
		Total int            `json:"total"`
	}

	UpcomingItem struct {
		homework.Homework
		Class        *ClassRef `json:"class"`
		DaysUntilDue int       `json:"daysUntilDue"`
		DueInLabel   string    `json:"dueInLabel"`
	}

	ClassItem struct {
		class.Class
		TimeRange     string   `json:"timeRange"`
		WeekdayLabels []string `json:"weekdayLabels"`
	}

	Option struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}

	// HomeworkForm holds the edit form values. DueDate is YYYY-MM-DD.
	HomeworkForm struct {
		ID          string            `json:"id"`
		Title       string            `json:"title"`
		Description string            `json:"description"`
		ClassID     string            `json:"classId"`
		DueDate     string            `json:"dueDate"`
		Priority    homework.Priority `json:"priority"`
		Status      homework.Status   `json:"status"`
	}
)

func newClassItem(cls class.Class) ClassItem {
	labels := make([]string, 0, len(cls.Weekdays))
	for _, day := range cls.Weekdays {
		labels = append(labels, timeutil.WeekdayShortLabel(day))
	}
	return ClassItem{
		Class:         cls,
		TimeRange:     timeutil.FormatClockRange(cls.StartTime, cls.EndTime),
		WeekdayLabels: labels,
	}
}
