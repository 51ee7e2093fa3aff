// Package views models the two browser screens as explicit state machines.
// A screen is always in exactly one state; transitions are plain functions
// from one state value to the next.
package views

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/fathima-sithara/music-share/internal/models"
	utils "github.com/fathima-sithara/music-share/internal/utils"
)

const (
	MsgInvalidFile = "Please select a valid MP3/Audio file."
	MsgMissingID   = "Upload succeeded but no file ID was returned."
	MsgUploadFail  = "Upload failed. Server might be sleeping (Wait 30s) or Error."
)

// FileInfo is what the browser tells us about a picked file.
type FileInfo struct {
	Name        string
	ContentType string
	Size        int64
}

// UploadState is one of Idle, Selected, Uploading or Shared.
type UploadState interface {
	uploadState()
}

type Idle struct {
	Err string
}

type Selected struct {
	File FileInfo
	Err  string
}

type Uploading struct {
	File FileInfo
}

type Shared struct {
	FileID string
	Link   string
}

func (Idle) uploadState()      {}
func (Selected) uploadState()  {}
func (Uploading) uploadState() {}
func (Shared) uploadState()    {}

var ErrNotSelected = errors.New("no file selected")

// Uploader sends one file to the API.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (*models.UploadResult, error)
}

func NewUpload() UploadState { return Idle{} }

// Select applies the picker's result. Only audio types get through; anything
// else leaves the screen with no selection and an error.
func Select(s UploadState, f *FileInfo) UploadState {
	if Busy(s) {
		return s
	}
	if f == nil || !utils.IsAudio(f.ContentType) {
		return Idle{Err: MsgInvalidFile}
	}
	return Selected{File: *f}
}

func Busy(s UploadState) bool {
	_, ok := s.(Uploading)
	return ok
}

// CanSubmit drives the upload button.
func CanSubmit(s UploadState) bool {
	sel, ok := s.(Selected)
	return ok && utils.IsAudio(sel.File.ContentType)
}

func Begin(s UploadState) (UploadState, error) {
	if !CanSubmit(s) {
		return s, ErrNotSelected
	}
	return Uploading{File: s.(Selected).File}, nil
}

// Succeed finishes an upload. A response without an id is treated as a
// failure so the user can retry.
func Succeed(s UploadState, origin, fileID string) UploadState {
	up, ok := s.(Uploading)
	if !ok {
		return s
	}
	if fileID == "" {
		return Selected{File: up.File, Err: MsgMissingID}
	}
	return Shared{FileID: fileID, Link: ShareLink(origin, fileID)}
}

func Fail(s UploadState, msg string) UploadState {
	up, ok := s.(Uploading)
	if !ok {
		return s
	}
	return Selected{File: up.File, Err: msg}
}

// Reset is the "upload another file" action.
func Reset() UploadState { return Idle{} }

func ShareLink(origin, fileID string) string {
	return strings.TrimSuffix(origin, "/") + "/share/" + fileID
}

// Upload runs Begin, the API call and the matching completion in one go. If
// ctx ends first the upload is abandoned and the selection is kept.
func Upload(ctx context.Context, s UploadState, up Uploader, origin string, body io.Reader) UploadState {
	cur, err := Begin(s)
	if err != nil {
		return s
	}
	file := cur.(Uploading).File

	res, err := up.Upload(ctx, file.Name, file.ContentType, body)
	switch {
	case err != nil && ctx.Err() != nil:
		return Selected{File: file}
	case err != nil:
		return Fail(cur, MsgUploadFail)
	case res == nil:
		return Succeed(cur, origin, "")
	default:
		return Succeed(cur, origin, res.FileID)
	}
}
