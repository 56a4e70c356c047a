package homework

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Abraham77967/Taskmate-Web/core"
)

var (
	// errors
	ErrNotFound = errors.New("homework not found")
)

type (
	// Service issues homework writes to the RemoteStore.
	// Every write keeps isCompleted equal to (status == completed).
	Service interface {
		Create(ctx context.Context, userID string, nh NewHomework) (string, error)
		Update(ctx context.Context, userID, id string, uh UpdateHomework) error
		// ToggleCompletion flips hw between pending and completed in a single update.
		ToggleCompletion(ctx context.Context, userID string, hw Homework) error
		Delete(ctx context.Context, userID, id string) error
	}

	service struct {
		remote core.RemoteStore
	}
)

var _ Service = (*service)(nil)

func NewService(remote core.RemoteStore) Service {
	return &service{remote: remote}
}

func (svc *service) Create(ctx context.Context, userID string, nh NewHomework) (string, error) {
	if err := nh.Validate(); err != nil {
		return "", err
	}
	id, err := svc.remote.Create(ctx, userID, core.KindHomework, nh.fields())
	if err != nil {
		return "", core.NewRemoteWriteError("create", core.KindHomework, err)
	}
	return id, nil
}

func (svc *service) Update(ctx context.Context, userID, id string, uh UpdateHomework) error {
	if err := uh.Validate(); err != nil {
		return err
	}
	return svc.update(ctx, userID, id, uh.fields())
}

func (svc *service) ToggleCompletion(ctx context.Context, userID string, hw Homework) error {
	if hw.ID == "" {
		return ErrNotFound
	}
	status, reopen := Toggled(hw)
	return svc.update(ctx, userID, hw.ID, core.Fields{
		fieldIsCompleted:  status == StatusCompleted,
		fieldStatus:       status,
		fieldReopenStatus: reopen,
	})
}

func (svc *service) Delete(ctx context.Context, userID, id string) error {
	if err := svc.remote.Delete(ctx, userID, core.KindHomework, id); err != nil {
		return core.NewRemoteWriteError("delete", core.KindHomework, err)
	}
	return nil
}

func (svc *service) update(ctx context.Context, userID, id string, fields core.Fields) error {
	if err := svc.remote.Update(ctx, userID, core.KindHomework, id, fields); err != nil {
		if errors.Is(err, core.ErrDocumentNotFound) {
			return ErrNotFound
		}
		return core.NewRemoteWriteError("update", core.KindHomework, err)
	}
	return nil
}
