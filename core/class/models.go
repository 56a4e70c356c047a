package class

import (
	"time"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/timeutil"
)

// Document fields
const (
	fieldName      = "name"
	fieldLocation  = "location"
	fieldProfessor = "professor"
	fieldStartTime = "startTime"
	fieldEndTime   = "endTime"
	fieldColor     = "color"
	fieldWeekdays  = "weekdays"
)

// Class is a recurring course the user attends.
type Class struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Location  string             `json:"location"`
	Professor string             `json:"professor"`
	StartTime timeutil.ClockTime `json:"startTime"`
	EndTime   timeutil.ClockTime `json:"endTime"`
	Color     string             `json:"color"`
	Weekdays  []string           `json:"weekdays"`
	CreatedAt time.Time          `json:"createdAt"` // server-assigned
	UpdatedAt time.Time          `json:"updatedAt"` // server-assigned
}

// NewClass contains information needed to create a new Class.
// Clock times are "HH:MM" strings, as submitted by time inputs.
type NewClass struct {
	Name      string   `json:"name" validate:"required,notblank"`
	Location  string   `json:"location"`
	Professor string   `json:"professor"`
	StartTime string   `json:"startTime" validate:"required,clocktime"`
	EndTime   string   `json:"endTime" validate:"required,clocktime"`
	Color     string   `json:"color"`
	Weekdays  []string `json:"weekdays" validate:"required,min=1,dive,weekday"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Location = core.CleanString(nc.Location)
	nc.Professor = core.CleanString(nc.Professor)
	nc.Color = core.CleanString(nc.Color)
	for i, day := range nc.Weekdays {
		nc.Weekdays[i] = core.CleanString(day, true /* lower */)
	}
	nc.Weekdays = dedupWeekdays(nc.Weekdays)
	return core.ValidateStruct(nc)
}

// fields converts a validated NewClass into document fields.
func (nc NewClass) fields() core.Fields {
	return core.Fields{
		fieldName:      nc.Name,
		fieldLocation:  nc.Location,
		fieldProfessor: nc.Professor,
		fieldStartTime: timeutil.MustParseClockTime(nc.StartTime),
		fieldEndTime:   timeutil.MustParseClockTime(nc.EndTime),
		fieldColor:     nc.Color,
		fieldWeekdays:  nc.Weekdays,
	}
}

// FromDocuments decodes a snapshot, skipping documents that cannot be decoded.
func FromDocuments(docs []core.Document) ([]Class, []error) {
	classes := make([]Class, 0, len(docs))
	var errs []error
	for _, doc := range docs {
		var cls Class
		if err := doc.DataTo(&cls); err != nil {
			errs = append(errs, err)
			continue
		}
		classes = append(classes, cls)
	}
	return classes, errs
}

// dedupWeekdays drops repeated days, keeping the first occurrence.
func dedupWeekdays(days []string) []string {
	if days == nil {
		return nil
	}
	seen := make(map[string]bool, len(days))
	res := make([]string, 0, len(days))
	for _, day := range days {
		if seen[day] {
			continue
		}
		seen[day] = true
		res = append(res, day)
	}
	return res
}
