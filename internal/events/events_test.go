package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fathima-sithara/music-share/internal/config"
	"github.com/fathima-sithara/music-share/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewFileUploadedEncoding(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	ev := NewFileUploaded(&models.FileRecord{
		ID:          id,
		Filename:    "song.mp3",
		Size:        3145728,
		ContentType: "audio/mpeg",
		PublicID:    "music-share-app/abc_song.mp3",
		CreatedAt:   created,
	})

	b, err := encode(ev)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if m["type"] != TypeFileUploaded {
		t.Errorf("type = %v", m["type"])
	}
	if m["file_id"] != id.Hex() {
		t.Errorf("file_id = %v, want %s", m["file_id"], id.Hex())
	}
	if m["size"] != float64(3145728) {
		t.Errorf("size = %v", m["size"])
	}
	if m["created_at"] != "2026-10-19T12:00:00Z" {
		t.Errorf("created_at = %v", m["created_at"])
	}
}

func TestNewSelectsDriver(t *testing.T) {
	p, err := New(config.EventsConf{Driver: "none", Topic: "t"})
	if err != nil {
		t.Fatalf("New(none): %v", err)
	}
	if err := p.PublishFileUploaded(context.Background(), FileUploaded{}); err != nil {
		t.Errorf("noop publish: %v", err)
	}

	k, err := New(config.EventsConf{Driver: "kafka", Topic: "t", Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("New(kafka): %v", err)
	}
	if _, ok := k.(*KafkaPublisher); !ok {
		t.Errorf("New(kafka) = %T", k)
	}
	_ = k.Close()

	if _, err := New(config.EventsConf{Driver: "kafka", Topic: "t"}); err == nil {
		t.Error("expected error for kafka without brokers")
	}
	if _, err := New(config.EventsConf{Driver: "sqs", Topic: "t"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestKafkaWriterFlushesPromptly(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "music-share.file-uploaded")
	defer p.Close()

	if p.writer.BatchTimeout <= 0 || p.writer.BatchTimeout > 50*time.Millisecond {
		t.Errorf("BatchTimeout = %v, want a few milliseconds", p.writer.BatchTimeout)
	}
	if p.writer.Topic != "music-share.file-uploaded" {
		t.Errorf("Topic = %q", p.writer.Topic)
	}
}
