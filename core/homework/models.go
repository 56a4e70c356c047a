package homework

import (
	"time"

	"github.com/Abraham77967/Taskmate-Web/core"
)

type (
	Priority string
	Status   string
)

// Priorities
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Statuses
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Document fields
const (
	fieldTitle        = "title"
	fieldDescription  = "description"
	fieldClassID      = "classId"
	fieldDueDate      = "dueDate"
	fieldPriority     = "priority"
	fieldStatus       = "status"
	fieldIsCompleted  = "isCompleted"
	fieldReopenStatus = "reopenStatus"
)

var (
	AllPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}
	AllStatuses   = []Status{StatusPending, StatusInProgress, StatusCompleted}
)

// Homework is an assignment due for a class.
// ClassID is a weak reference: the class may have been deleted since.
type Homework struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	ClassID      string    `json:"classId"`
	DueDate      time.Time `json:"dueDate"`
	Priority     Priority  `json:"priority"`
	Status       Status    `json:"status"`
	IsCompleted  bool      `json:"isCompleted"`            // always Status == StatusCompleted on writes we issue
	ReopenStatus Status    `json:"reopenStatus,omitempty"` // status a toggle restores when reopening
	CreatedAt    time.Time `json:"createdAt"`              // server-assigned
	UpdatedAt    time.Time `json:"updatedAt"`              // server-assigned
}

// NewHomework contains information needed to create a new Homework. It always starts pending.
type NewHomework struct {
	Title       string    `json:"title" validate:"required,notblank"`
	Description string    `json:"description"`
	ClassID     string    `json:"classId" validate:"required"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
	Priority    Priority  `json:"priority" validate:"required,oneof=low medium high"`
}

func (nh *NewHomework) Validate() error {
	nh.Title = core.CleanString(nh.Title)
	nh.Description = core.CleanString(nh.Description)
	nh.ClassID = core.CleanString(nh.ClassID)
	nh.Priority = Priority(core.CleanString(string(nh.Priority), true /* lower */))
	return core.ValidateStruct(nh)
}

func (nh NewHomework) fields() core.Fields {
	return core.Fields{
		fieldTitle:       nh.Title,
		fieldDescription: nh.Description,
		fieldClassID:     nh.ClassID,
		fieldDueDate:     nh.DueDate.UTC(),
		fieldPriority:    nh.Priority,
		fieldStatus:      StatusPending,
		fieldIsCompleted: false,
	}
}

// UpdateHomework is a full edit of a Homework; IsCompleted is derived from Status.
type UpdateHomework struct {
	Title       string    `json:"title" validate:"required,notblank"`
	Description string    `json:"description"`
	ClassID     string    `json:"classId" validate:"required"`
	DueDate     time.Time `json:"dueDate" validate:"required"`
	Priority    Priority  `json:"priority" validate:"required,oneof=low medium high"`
	Status      Status    `json:"status" validate:"required,oneof=pending in_progress completed"`
}

func (uh *UpdateHomework) Validate() error {
	uh.Title = core.CleanString(uh.Title)
	uh.Description = core.CleanString(uh.Description)
	uh.ClassID = core.CleanString(uh.ClassID)
	uh.Priority = Priority(core.CleanString(string(uh.Priority), true /* lower */))
	uh.Status = Status(core.CleanString(string(uh.Status), true /* lower */))
	return core.ValidateStruct(uh)
}

// fields keeps the stored reopen status while the homework stays completed.
func (uh UpdateHomework) fields() core.Fields {
	fields := core.Fields{
		fieldTitle:       uh.Title,
		fieldDescription: uh.Description,
		fieldClassID:     uh.ClassID,
		fieldDueDate:     uh.DueDate.UTC(),
		fieldPriority:    uh.Priority,
		fieldStatus:      uh.Status,
		fieldIsCompleted: uh.Status == StatusCompleted,
	}
	if uh.Status != StatusCompleted {
		fields[fieldReopenStatus] = ""
	}
	return fields
}

// Toggled returns the status a completion toggle moves hw to and the reopen status to store with it.
// Completing remembers the current status and reopening restores it, so toggling twice changes nothing.
func Toggled(hw Homework) (status, reopen Status) {
	if !hw.IsCompleted {
		reopen = hw.Status
		if reopen != StatusInProgress {
			reopen = StatusPending
		}
		return StatusCompleted, reopen
	}
	if hw.ReopenStatus == StatusInProgress {
		return StatusInProgress, ""
	}
	return StatusPending, ""
}

// FromDocuments decodes a snapshot, skipping documents that cannot be decoded.
func FromDocuments(docs []core.Document) ([]Homework, []error) {
	list := make([]Homework, 0, len(docs))
	var errs []error
	for _, doc := range docs {
		var hw Homework
		if err := doc.DataTo(&hw); err != nil {
			errs = append(errs, err)
			continue
		}
		list = append(list, hw)
	}
	return list, errs
}
