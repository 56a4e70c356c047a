package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/Abraham77967/Taskmate-Web/core"
)

func TestRollbarLogger_printsWithoutIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST", TestMode: true})

	usr := core.Identity{ID: "u1", DisplayName: "Ada", Email: "ada@taskmate.test"}
	logger.Warn("live feed failed", errors.New("boom"), map[string]interface{}{"kind": core.KindClasses}, usr)

	out := buf.String()
	assert.Contains(t, out, "[WARN] live feed failed")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "kind:classes")
	assert.Contains(t, out, "ada@taskmate.test", "identity is printed too")
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := RollbarLogger{std: log.New(&bytes.Buffer{}, "", 0)}
	err := errors.New("boom")
	usr := core.Identity{ID: "u1"}

	args := logger.prepare("msg", []interface{}{err, usr, &usr})
	assert.Equal(t, []interface{}{"msg", err}, args)
}
