package echoapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abraham77967/Taskmate-Web/core/class"
	"github.com/Abraham77967/Taskmate-Web/core/homework"
	"github.com/Abraham77967/Taskmate-Web/core/viewmodel"
	testutil "github.com/Abraham77967/Taskmate-Web/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func TestHome(t *testing.T) {
	f := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	f.srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to TaskMate API!", rec.Body.String())
}

func TestAuthAPI(t *testing.T) {
	f := setup(t)

	t.Run("missing token", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/dashboard", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var got httpErr
		unmarshallObj(t, rec, &got)
		assert.Equal(t, errMissingToken, got)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/v1/dashboard", "not.a.token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	tests := []struct {
		name     string
		body     LoginRequest
		wantCode int
	}{
		{"wrong password", LoginRequest{Username: username, Password: "nope"}, http.StatusBadRequest},
		{"unknown user", LoginRequest{Username: "bob", Password: password}, http.StatusBadRequest},
		{"missing password", LoginRequest{Username: username}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/v1/auth/signin", "", marshallObj(t, tc.body))
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}

	token := f.signIn(t)

	rec := f.do(http.MethodGet, "/v1/auth/me", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		User      struct{ ID string } `json:"user"`
		SyncState string              `json:"sync_state"`
	}
	unmarshallObj(t, rec, &me)
	assert.Equal(t, "u1", me.User.ID)
	assert.Equal(t, "attached", me.SyncState)

	rec = f.do(http.MethodPost, "/v1/auth/signout", token)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/v1/auth/me", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "signed out tokens cannot resume")
}

func TestAuthAPI_signOutRevokesOnlyItsToken(t *testing.T) {
	f := setup(t)
	first := f.signIn(t)
	second := f.signIn(t)
	require.NotEqual(t, first, second)

	rec := f.do(http.MethodPost, "/v1/auth/signout", first)
	require.Equal(t, http.StatusNoContent, rec.Code)

	for _, path := range []string{"/v1/auth/me", "/v1/dashboard", "/v1/classes"} {
		rec = f.do(http.MethodGet, path, first)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec = f.do(http.MethodPost, "/v1/auth/signout", first)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "signing out twice")

	rec = f.do(http.MethodGet, "/v1/auth/me", second)
	assert.Equal(t, http.StatusOK, rec.Code, "other sessions of the account stay valid")

	rec = f.do(http.MethodPost, "/v1/auth/signout", second)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(http.MethodGet, "/v1/auth/me", second)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTrackerAPI_sessionSwitch(t *testing.T) {
	f := setup(t)
	adaToken := f.signIn(t)
	bobToken := f.signInAs(t, otherUsername, otherPassword)

	rec := f.do(http.MethodPost, "/v1/classes", adaToken, marshallObj(t, testutil.NewClassInput("Algebra")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var classes []viewmodel.ClassItem
	rec = f.do(http.MethodGet, "/v1/classes", bobToken)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshallObj(t, rec, &classes)
	assert.Empty(t, classes)

	rec = f.do(http.MethodGet, "/v1/classes", adaToken)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshallObj(t, rec, &classes)
	assert.Len(t, classes, 1)
}

func TestTrackerAPI_concurrentSubjects(t *testing.T) {
	f := setup(t)
	adaToken := f.signIn(t)
	bobToken := f.signInAs(t, otherUsername, otherPassword)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		body := marshallObj(t, testutil.NewClassInput(fmt.Sprintf("Class %d", i)))
		wg.Add(2)
		go func() {
			defer wg.Done()
			rec := f.do(http.MethodPost, "/v1/classes", adaToken, body)
			assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		}()
		go func() {
			defer wg.Done()
			rec := f.do(http.MethodGet, "/v1/classes", bobToken)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()), "bob never sees ada's classes")
		}()
	}
	wg.Wait()

	var classes []viewmodel.ClassItem
	rec := f.do(http.MethodGet, "/v1/classes", adaToken)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshallObj(t, rec, &classes)
	assert.Len(t, classes, n)

	rec = f.do(http.MethodGet, "/v1/classes", bobToken)
	unmarshallObj(t, rec, &classes)
	assert.Empty(t, classes)
}

func TestTrackerAPI(t *testing.T) {
	f := setup(t)
	token := f.signIn(t)

	// classes
	rec := f.do(http.MethodPost, "/v1/classes", token, marshallObj(t, class.NewClass{Name: "Algebra"}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fldErrs map[string]string
	unmarshallObj(t, rec, &fldErrs)
	assert.Contains(t, fldErrs, "weekdays")
	assert.Contains(t, fldErrs, "startTime")
	assert.NotContains(t, fldErrs, "name")

	rec = f.do(http.MethodPost, "/v1/classes", token, marshallObj(t, testutil.NewClassInput("Algebra")))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created CreatedResponse
	unmarshallObj(t, rec, &created)
	clsID := created.ID

	rec = f.do(http.MethodGet, "/v1/classes", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var classes []viewmodel.ClassItem
	unmarshallObj(t, rec, &classes)
	require.Len(t, classes, 1)
	assert.Equal(t, "9:00 AM - 10:15 AM", classes[0].TimeRange)
	assert.Equal(t, []string{"Mon", "Wed"}, classes[0].WeekdayLabels)

	rec = f.do(http.MethodGet, "/v1/classes/options", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var opts []viewmodel.Option
	unmarshallObj(t, rec, &opts)
	assert.Equal(t, []viewmodel.Option{{Value: clsID, Label: "Algebra"}}, opts)

	// homework
	hwReq := HomeworkRequest{Title: "Worksheet", ClassID: clsID, DueDate: "someday", Priority: "high"}
	rec = f.do(http.MethodPost, "/v1/homework", token, marshallObj(t, hwReq))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	unmarshallObj(t, rec, &fldErrs)
	assert.Contains(t, fldErrs, "dueDate")

	hwReq.DueDate = "2024-03-07"
	rec = f.do(http.MethodPost, "/v1/homework", token, marshallObj(t, hwReq))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	unmarshallObj(t, rec, &created)
	hwID := created.ID

	rec = f.do(http.MethodGet, "/v1/homework?status=pending&class_id="+clsID, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list viewmodel.HomeworkList
	unmarshallObj(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, hwID, list.Items[0].ID)
	assert.Equal(t, "Thursday", list.Items[0].DueLabel)
	assert.Equal(t, 3, list.Items[0].DaysUntilDue)
	require.NotNil(t, list.Items[0].Class)
	assert.Equal(t, "Algebra", list.Items[0].Class.Name)

	rec = f.do(http.MethodGet, "/v1/homework?status=someday", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/v1/dashboard", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash viewmodel.Dashboard
	unmarshallObj(t, rec, &dash)
	require.Len(t, dash.Upcoming, 1)
	assert.Equal(t, "Due in 3 days", dash.Upcoming[0].DueInLabel)
	assert.Len(t, dash.RecentClasses, 1)

	// toggle & edit
	rec = f.do(http.MethodPost, "/v1/homework/"+hwID+"/toggle", token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodGet, "/v1/homework/"+hwID+"/form", token)
	require.Equal(t, http.StatusOK, rec.Code)
	var form viewmodel.HomeworkForm
	unmarshallObj(t, rec, &form)
	assert.Equal(t, homework.StatusCompleted, form.Status)
	assert.Equal(t, "2024-03-07", form.DueDate)

	hwReq.Status = string(homework.StatusInProgress)
	rec = f.do(http.MethodPut, "/v1/homework/"+hwID, token, marshallObj(t, hwReq))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = f.do(http.MethodGet, "/v1/homework?status=in_progress", token)
	unmarshallObj(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.False(t, list.Items[0].IsCompleted)

	rec = f.do(http.MethodPost, "/v1/homework/missing/toggle", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.do(http.MethodPut, "/v1/classes/missing", token, marshallObj(t, testutil.NewClassInput("Algebra")))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// deletes
	rec = f.do(http.MethodDelete, "/v1/classes/"+clsID, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(http.MethodGet, "/v1/homework", token)
	unmarshallObj(t, rec, &list)
	require.Len(t, list.Items, 1)
	assert.Nil(t, list.Items[0].Class, "homework outlives its class")

	rec = f.do(http.MethodDelete, "/v1/homework/"+hwID, token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(http.MethodGet, "/v1/homework", token)
	unmarshallObj(t, rec, &list)
	assert.Empty(t, list.Items)
}

func TestTrackerAPI_remoteWriteFailure(t *testing.T) {
	f := setup(t)
	token := f.signIn(t)
	f.db.FailWrites(errors.New("unavailable"))

	rec := f.do(http.MethodPost, "/v1/classes", token, marshallObj(t, testutil.NewClassInput("Algebra")))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var got httpErr
	unmarshallObj(t, rec, &got)
	assert.Equal(t, "remote store unavailable", got.Error)
	assert.Equal(t, 1, f.logger.Count("warn"))
}
