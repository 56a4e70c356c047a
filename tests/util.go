package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/class"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
	"github.com/Abraham77967/Taskmate-Web/storage/memstore"
)

// Now is the fixed clock used across tests: Monday 2024-03-04 10:00 UTC.
var Now = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

func Clock() time.Time { return Now }

// Days returns Now shifted by n days.
func Days(n int) time.Time { return Now.AddDate(0, 0, n) }

// LogEntry is one call recorded by Logger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger is a core.Logger that records entries instead of printing them.
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

// Count returns how many entries were logged at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

func NewMemStore(t *testing.T) (*memstore.DB, core.RemoteStore) {
	db, err := memstore.Open()
	if err != nil {
		t.Fatalf("memstore.Open() failed: %v", err)
	}
	return db, memstore.NewRemoteStore(db)
}

func NewClassInput(name string, weekdays ...string) class.NewClass {
	if len(weekdays) == 0 {
		weekdays = []string{"monday", "wednesday"}
	}
	return class.NewClass{
		Name:      name,
		Location:  "Room 101",
		Professor: "Dr. Smith",
		StartTime: "09:00",
		EndTime:   "10:15",
		Color:     "#4f46e5",
		Weekdays:  weekdays,
	}
}

func NewHomeworkInput(title, classID string, due time.Time) homework.NewHomework {
	return homework.NewHomework{
		Title:    title,
		ClassID:  classID,
		DueDate:  due,
		Priority: homework.PriorityMedium,
	}
}

// CreateClass writes a class straight to the remote store and returns its ID.
func CreateClass(t *testing.T, remote core.RemoteStore, userID, name string) string {
	id, err := class.NewService(remote).Create(context.Background(), userID, NewClassInput(name))
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return id
}

// CreateHomework writes a pending homework straight to the remote store and returns its ID.
func CreateHomework(t *testing.T, remote core.RemoteStore, userID, title, classID string, due time.Time) string {
	id, err := homework.NewService(remote).Create(context.Background(), userID, NewHomeworkInput(title, classID, due))
	if err != nil {
		t.Fatalf("createHomework() failed: %v", err)
	}
	return id
}

// Identity builds a test identity for userID.
func Identity(userID string) core.Identity {
	return core.Identity{
		ID:          userID,
		DisplayName: fmt.Sprintf("User %s", userID),
		Email:       fmt.Sprintf("%s@taskmate.test", userID),
	}
}
