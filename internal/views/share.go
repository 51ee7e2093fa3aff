package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/fathima-sithara/music-share/internal/models"
)

const MsgDownloadFail = "Error starting download"

// ShareState is one of Loading, Ready or Missing.
type ShareState interface {
	shareState()
}

type Loading struct {
	ID string
}

type Ready struct {
	ID    string
	File  models.FileRecord
	Alert string // transient, shown once
}

// Missing covers both unknown ids and failed lookups.
type Missing struct {
	ID string
}

func (Loading) shareState() {}
func (Ready) shareState()   {}
func (Missing) shareState() {}

type Fetcher interface {
	GetFile(ctx context.Context, id string) (*models.FileRecord, error)
}

type Resolver interface {
	ResolveDownload(ctx context.Context, id string) (string, error)
}

// ShareIDFromPath pulls <id> out of "/share/<id>".
func ShareIDFromPath(p string) string {
	rest, ok := strings.CutPrefix(p, "/share/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	return id
}

func NewShare(id string) ShareState { return Loading{ID: id} }

// Load resolves a Loading screen into Ready or Missing.
func Load(ctx context.Context, s ShareState, f Fetcher) ShareState {
	l, ok := s.(Loading)
	if !ok {
		return s
	}
	if l.ID == "" {
		return Missing{}
	}
	rec, err := f.GetFile(ctx, l.ID)
	if err != nil || rec == nil {
		return Missing{ID: l.ID}
	}
	return Ready{ID: l.ID, File: *rec}
}

// Download asks for a forced-download URL. The screen stays Ready either way;
// a failure only sets the alert.
func Download(ctx context.Context, s Ready, r Resolver) (string, Ready) {
	s.Alert = ""
	u, err := r.ResolveDownload(ctx, s.ID)
	if err != nil || u == "" {
		s.Alert = MsgDownloadFail
		return "", s
	}
	return u, s
}

// SizeMB renders a byte count the way the share card shows it.
func SizeMB(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
}
