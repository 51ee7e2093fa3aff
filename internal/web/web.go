// Package web serves the upload and share screens. Each request drives the
// matching state machine in package views one step and renders the result.
package web

import (
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/fathima-sithara/music-share/internal/views"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// API is everything the screens need from the backend.
type API interface {
	views.Uploader
	views.Fetcher
	views.Resolver
}

type Options struct {
	// PublicOrigin overrides the origin used in share links, e.g. when the
	// site sits behind a proxy. Empty means use the request's own origin.
	PublicOrigin string
	BodyLimit    int
	AccessLog    bool
}

type Server struct {
	api  API
	tmpl *template.Template
	log  *zap.SugaredLogger
	opts Options
}

func NewServer(api API, log *zap.SugaredLogger, opts Options) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{api: api, tmpl: tmpl, log: log, opts: opts}, nil
}

// App builds the fiber app with every route mounted.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "music-share-web",
		BodyLimit:    s.opts.BodyLimit,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	})
	app.Use(recover.New())
	if s.opts.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/", s.UploadPage)
	app.Post("/", s.UploadSubmit)
	app.Get("/share/:id", s.SharePage)
	app.Post("/share/:id/download", s.ShareDownload)
	return app
}

type uploadPage struct {
	Title    string
	FileName string
	Err      string
	Link     string
	// Picked is true only when the file input holds a file. A rendered page
	// never does, so the button starts disabled and the script enables it.
	Picked     bool
	Busy       bool
	InvalidMsg string
}

type sharePage struct {
	Title    string
	ID       string
	Loading  bool
	Missing  bool
	Filename string
	Size     string
	Alert    string
}

func newUploadPage(st views.UploadState) uploadPage {
	p := uploadPage{
		Title:      "Music Sharing App",
		Busy:       views.Busy(st),
		InvalidMsg: views.MsgInvalidFile,
	}
	switch v := st.(type) {
	case views.Idle:
		p.Err = v.Err
	case views.Selected:
		p.FileName, p.Err = v.File.Name, v.Err
	case views.Uploading:
		p.FileName = v.File.Name
	case views.Shared:
		p.Link = v.Link
	}
	return p
}

func newSharePage(st views.ShareState) sharePage {
	p := sharePage{Title: "Music Sharing App"}
	switch v := st.(type) {
	case views.Loading:
		p.ID, p.Loading = v.ID, true
	case views.Missing:
		p.ID, p.Missing = v.ID, true
	case views.Ready:
		p.ID = v.ID
		p.Title = v.File.Filename
		p.Filename = v.File.Filename
		p.Size = views.SizeMB(v.File.Size)
		p.Alert = v.Alert
	}
	return p
}

func (s *Server) render(c *fiber.Ctx, status int, name string, data interface{}) error {
	c.Status(status).Type("html", "utf-8")
	if err := s.tmpl.ExecuteTemplate(c, name, data); err != nil {
		s.log.Errorw("render failed", "template", name, "err", err)
		return fiber.ErrInternalServerError
	}
	return nil
}

func (s *Server) origin(c *fiber.Ctx) string {
	if s.opts.PublicOrigin != "" {
		return strings.TrimSuffix(s.opts.PublicOrigin, "/")
	}
	return c.BaseURL()
}

// GET /
func (s *Server) UploadPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "upload.html", newUploadPage(views.NewUpload()))
}

// POST / (multipart 'file')
func (s *Server) UploadSubmit(c *fiber.Ctx) error {
	var info *views.FileInfo
	fh, err := c.FormFile("file")
	if err == nil {
		ct := fh.Header.Get("Content-Type")
		info = &views.FileInfo{Name: fh.Filename, ContentType: ct, Size: fh.Size}
	}

	st := views.Select(views.NewUpload(), info)
	if !views.CanSubmit(st) {
		return s.render(c, fiber.StatusBadRequest, "upload.html", newUploadPage(st))
	}

	f, err := fh.Open()
	if err != nil {
		s.log.Errorw("open uploaded part", "err", err)
		return s.render(c, fiber.StatusInternalServerError, "upload.html",
			newUploadPage(views.Selected{File: *info, Err: views.MsgUploadFail}))
	}
	defer f.Close()

	st = views.Upload(c.UserContext(), st, s.api, s.origin(c), f)
	if sel, ok := st.(views.Selected); ok && sel.Err != "" {
		s.log.Warnw("upload did not complete", "filename", info.Name, "reason", sel.Err)
		return s.render(c, fiber.StatusBadGateway, "upload.html", newUploadPage(st))
	}
	return s.render(c, fiber.StatusOK, "upload.html", newUploadPage(st))
}

// GET /share/:id
func (s *Server) SharePage(c *fiber.Ctx) error {
	st := views.Load(c.UserContext(), views.NewShare(c.Params("id")), s.api)
	if _, ok := st.(views.Missing); ok {
		return s.render(c, fiber.StatusNotFound, "share.html", newSharePage(st))
	}
	return s.render(c, fiber.StatusOK, "share.html", newSharePage(st))
}

// POST /share/:id/download -> 302 to the forced-download url
func (s *Server) ShareDownload(c *fiber.Ctx) error {
	st := views.Load(c.UserContext(), views.NewShare(c.Params("id")), s.api)
	ready, ok := st.(views.Ready)
	if !ok {
		return s.render(c, fiber.StatusNotFound, "share.html", newSharePage(st))
	}
	u, next := views.Download(c.UserContext(), ready, s.api)
	if u == "" {
		return s.render(c, fiber.StatusOK, "share.html", newSharePage(next))
	}
	return c.Redirect(u, fiber.StatusFound)
}
