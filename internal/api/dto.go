package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/lumenbrowser/lumen/internal/downloads"
	"github.com/lumenbrowser/lumen/internal/user"
)

// OpenUserRequest is the body for opening a profile.
type OpenUserRequest struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Validate validates the open request.
func (r OpenUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Type,
			validation.In(string(user.TypeNormal), string(user.TypeIncognito))),
	)
}

// UserResponse describes one open profile.
type UserResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

func userResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:     u.ID,
		Type:   string(u.Type),
		Name:   u.Name(),
		Avatar: u.Avatar(),
	}
}

// AddHistoryRequest is the body for recording a visit.
type AddHistoryRequest struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	FaviconURL string `json:"faviconUrl"`
}

// Validate validates the history draft.
func (r AddHistoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, is.RequestURI),
	)
}

// AddBookmarkRequest is the body for creating a bookmark or folder.
type AddBookmarkRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	ParentID string `json:"parentId"`
	IsFolder bool   `json:"isFolder"`
}

// Validate validates the bookmark draft. Folders carry no URL.
func (r AddBookmarkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.URL,
			validation.Required.When(!r.IsFolder),
			validation.Empty.When(r.IsFolder),
			is.RequestURI),
	)
}

// UpdateBookmarkRequest is the PATCH body for a bookmark; nil fields are
// left untouched.
type UpdateBookmarkRequest struct {
	URL      *string `json:"url"`
	Title    *string `json:"title"`
	ParentID *string `json:"parentId"`
}

// AddDownloadRequest is the body for creating a download record.
type AddDownloadRequest struct {
	URL        string `json:"url"`
	Filename   string `json:"filename"`
	SavePath   string `json:"savePath"`
	TotalBytes int64  `json:"totalBytes"`
}

// Validate validates the download draft.
func (r AddDownloadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, is.RequestURI),
		validation.Field(&r.Filename, validation.Required),
	)
}

// UpdateDownloadRequest is the PATCH body for a download; nil fields are
// left untouched.
type UpdateDownloadRequest struct {
	State         *string `json:"state"`
	SavePath      *string `json:"savePath"`
	ReceivedBytes *int64  `json:"receivedBytes"`
	TotalBytes    *int64  `json:"totalBytes"`
}

// Validate validates the download patch.
func (r UpdateDownloadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.State,
			validation.In(
				string(downloads.StateProgressing),
				string(downloads.StateCompleted),
				string(downloads.StateCancelled),
				string(downloads.StateInterrupted))),
	)
}

// RemovedResponse reports whether a remove hit an existing record.
type RemovedResponse struct {
	Removed bool `json:"removed"`
}
