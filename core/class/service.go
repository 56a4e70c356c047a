package class

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Abraham77967/Taskmate-Web/core"
)

var (
	// errors
	ErrNotFound = errors.New("class not found")
)

type (
	// Service issues class writes to the RemoteStore. Nothing is mutated locally:
	// the change becomes visible once the classes feed delivers the next snapshot.
	Service interface {
		Create(ctx context.Context, userID string, nc NewClass) (string, error)
		// Replace overwrites every editable field of an existing class.
		Replace(ctx context.Context, userID, id string, nc NewClass) error
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

func (svc *service) Create(ctx context.Context, userID string, nc NewClass) (string, error) {
	if err := nc.Validate(); err != nil {
		return "", err
	}
	id, err := svc.remote.Create(ctx, userID, core.KindClasses, nc.fields())
	if err != nil {
		return "", core.NewRemoteWriteError("create", core.KindClasses, err)
	}
	return id, nil
}

func (svc *service) Replace(ctx context.Context, userID, id string, nc NewClass) error {
	if err := nc.Validate(); err != nil {
		return err
	}
	if err := svc.remote.Update(ctx, userID, core.KindClasses, id, nc.fields()); err != nil {
		if errors.Is(err, core.ErrDocumentNotFound) {
			return ErrNotFound
		}
		return core.NewRemoteWriteError("update", core.KindClasses, err)
	}
	return nil
}

func (svc *service) Delete(ctx context.Context, userID, id string) error {
	if err := svc.remote.Delete(ctx, userID, core.KindClasses, id); err != nil {
		return core.NewRemoteWriteError("delete", core.KindClasses, err)
	}
	return nil
}
