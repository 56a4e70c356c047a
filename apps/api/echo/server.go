package echoapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Abraham77967/Taskmate-Web/core"
	"github.com/Abraham77967/Taskmate-Web/core/class"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
	"github.com/Abraham77967/Taskmate-Web/core/livesync"
	"github.com/Abraham77967/Taskmate-Web/core/session"
	"github.com/Abraham77967/Taskmate-Web/core/viewmodel"
)

type (
	// Tracker is the part of tracker.Tracker the API serves.
	Tracker interface {
		SignIn(ctx context.Context, creds session.Credentials) error
		CurrentUser() (core.Identity, bool)
		SyncState() livesync.State
		WaitReady(ctx context.Context) error
		Now() time.Time

		Dashboard(now time.Time) viewmodel.Dashboard
		Homework(f viewmodel.Filter, now time.Time) viewmodel.HomeworkList
		Classes() []viewmodel.ClassItem
		ClassOptions() []viewmodel.Option
		EditForm(id string) (viewmodel.HomeworkForm, error)

		AddClass(ctx context.Context, nc class.NewClass) (string, error)
		ReplaceClass(ctx context.Context, id string, nc class.NewClass) error
		DeleteClass(ctx context.Context, id string) error
		AddHomework(ctx context.Context, nh homework.NewHomework) (string, error)
		EditHomework(ctx context.Context, id string, uh homework.UpdateHomework) error
		ToggleHomework(ctx context.Context, id string) error
		DeleteHomework(ctx context.Context, id string) error
	}

	Options struct {
		Address        string
		AppName        string
		Debug          bool
		TestMode       bool
		DisableReqLogs bool
		ReadyTimeout   time.Duration // wait for a switched session's data; 5s when zero
		Tracker        Tracker
		Auth           Authenticator
		Logger         core.Logger
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.opts.Debug || s.opts.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger)
	s.app.Debug = s.opts.Debug
	s.app.HideBanner = s.opts.TestMode

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	gate := newSessionGate(s.opts.Tracker, s.opts.Auth)
	if s.opts.ReadyTimeout > 0 {
		gate.readyTimeout = s.opts.ReadyTimeout
	}

	registerAuthAPI(v1, gate, s.opts.Tracker, s.opts.Auth)
	registerTrackerAPI(v1.Group("", middleware.JWTWithConfig(appJWTConfig(s.opts.Auth)), gate.middleware), s.opts.Tracker)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
		s.app.Logger.Fatal(err)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	name := s.opts.AppName
	if name == "" {
		name = "TaskMate"
	}
	return ctx.String(http.StatusOK, "Welcome to "+name+" API!")
}
