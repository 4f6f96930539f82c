// Package action is the boundary the admin UI calls. Every operation
// validates its input before touching a store, and returns a Result
// instead of propagating errors.
package action

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/jwhitfield/atelier/internal/auth"
	"github.com/jwhitfield/atelier/internal/fault"
	"github.com/jwhitfield/atelier/internal/media"
	"github.com/jwhitfield/atelier/internal/model"
)

type Facade struct {
	auth   *auth.Service
	media  *media.Manager
	logger *slog.Logger
}

func NewFacade(authSvc *auth.Service, mediaMgr *media.Manager, logger *slog.Logger) *Facade {
	return &Facade{auth: authSvc, media: mediaMgr, logger: logger}
}

type LoginData struct {
	Token string `json:"token"`
}

type MessageData struct {
	Message string `json:"message"`
}

type UploadData struct {
	URL string `json:"url"`
}

type ItemData struct {
	Item model.MediaItem `json:"item"`
}

type CollectionData struct {
	Items []model.MediaItem `json:"items"`
}

// fail logs the full error and returns the sanitized result.
func fail[T any](f *Facade, op string, err error) Result[T] {
	f.logger.Error(op, "error", err)
	return Fail[T](err)
}

func (f *Facade) Login(ctx context.Context, code string) Result[LoginData] {
	code = strings.TrimSpace(code)
	if code == "" {
		return Fail[LoginData](fault.Validationf("code is required"))
	}

	token, err := f.auth.Login(ctx, code)
	if err != nil {
		return fail[LoginData](f, "login", err)
	}
	return OK(LoginData{Token: token})
}

func (f *Facade) Logout(ctx context.Context, token string) Result[MessageData] {
	if err := f.auth.Logout(ctx, token); err != nil {
		return fail[MessageData](f, "logout", err)
	}
	return OK(MessageData{Message: "logged out"})
}

func (f *Facade) UploadImage(ctx context.Context, kind model.ParentKind, parentID int64, body io.Reader, filename, contentType string) Result[UploadData] {
	if !kind.Valid() {
		return Fail[UploadData](fault.Validationf("unknown parent kind %q", kind))
	}
	if parentID <= 0 {
		return Fail[UploadData](fault.Validationf("parent id is required"))
	}
	if body == nil {
		return Fail[UploadData](fault.Validationf("file is required"))
	}

	url, err := f.media.Upload(ctx, kind, parentID, body, filename, contentType)
	if err != nil {
		return fail[UploadData](f, "upload image", err)
	}
	return OK(UploadData{URL: url})
}

func (f *Facade) AddItem(ctx context.Context, kind model.ParentKind, parentID int64, url, caption string) Result[ItemData] {
	if !kind.Valid() {
		return Fail[ItemData](fault.Validationf("unknown parent kind %q", kind))
	}
	if parentID <= 0 {
		return Fail[ItemData](fault.Validationf("parent id is required"))
	}
	if strings.TrimSpace(url) == "" {
		return Fail[ItemData](fault.Validationf("url is required"))
	}

	item, err := f.media.Append(ctx, kind, parentID, strings.TrimSpace(url), caption)
	if err != nil {
		return fail[ItemData](f, "add item", err)
	}
	return OK(ItemData{Item: *item})
}

func (f *Facade) ReorderItems(ctx context.Context, kind model.ParentKind, parentID int64, ids []int64) Result[CollectionData] {
	if !kind.Valid() {
		return Fail[CollectionData](fault.Validationf("unknown parent kind %q", kind))
	}
	if parentID <= 0 {
		return Fail[CollectionData](fault.Validationf("parent id is required"))
	}
	if len(ids) == 0 {
		return Fail[CollectionData](fault.Validationf("item ids are required"))
	}

	items, err := f.media.Reorder(ctx, kind, parentID, ids)
	if err != nil {
		return fail[CollectionData](f, "reorder items", err)
	}
	return OK(CollectionData{Items: items})
}

func (f *Facade) DeleteItem(ctx context.Context, id int64) Result[MessageData] {
	if id <= 0 {
		return Fail[MessageData](fault.Validationf("item id is required"))
	}

	if err := f.media.DeleteItem(ctx, id); err != nil {
		return fail[MessageData](f, "delete item", err)
	}
	return OK(MessageData{Message: "deleted"})
}
