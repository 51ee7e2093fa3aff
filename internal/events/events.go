package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fathima-sithara/music-share/internal/config"
	"github.com/fathima-sithara/music-share/internal/models"
)

const TypeFileUploaded = "file.uploaded"

// FileUploaded is emitted once per successful upload.
type FileUploaded struct {
	Type        string    `json:"type"`
	FileID      string    `json:"file_id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Locator     string    `json:"locator"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewFileUploaded(f *models.FileRecord) FileUploaded {
	return FileUploaded{
		Type:        TypeFileUploaded,
		FileID:      f.ID.Hex(),
		Filename:    f.Filename,
		Size:        f.Size,
		ContentType: f.ContentType,
		Locator:     f.PublicID,
		CreatedAt:   f.CreatedAt,
	}
}

type Publisher interface {
	PublishFileUploaded(ctx context.Context, ev FileUploaded) error
	Close() error
}

// New returns the publisher selected by events.driver.
func New(ec config.EventsConf) (Publisher, error) {
	switch ec.Driver {
	case "", "none":
		return NoopPublisher{}, nil
	case "kafka":
		if len(ec.Brokers) == 0 {
			return nil, fmt.Errorf("events: kafka driver needs brokers")
		}
		return NewKafkaPublisher(ec.Brokers, ec.Topic), nil
	case "nats":
		p, err := NewNatsPublisher(ec.NatsURL, ec.Topic)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("events: unknown driver %q", ec.Driver)
	}
}

type NoopPublisher struct{}

func (NoopPublisher) PublishFileUploaded(context.Context, FileUploaded) error { return nil }
func (NoopPublisher) Close() error                                            { return nil }

func encode(ev FileUploaded) ([]byte, error) {
	if ev.Type == "" {
		ev.Type = TypeFileUploaded
	}
	return json.Marshal(ev)
}
