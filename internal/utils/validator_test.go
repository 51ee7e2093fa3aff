package utils

import (
	"errors"
	"testing"
)

func TestIsAudio(t *testing.T) {
	tests := []struct {
		ct   string
		want bool
	}{
		{"audio/mpeg", true},
		{"audio/wav", true},
		{"AUDIO/FLAC", true},
		{"video/mp4", false},
		{"application/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAudio(tt.ct); got != tt.want {
			t.Errorf("IsAudio(%q) = %v, want %v", tt.ct, got, tt.want)
		}
	}
}

func TestValidateAudioFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		ct       string
		size     int64
		want     error
	}{
		{"ok", "song.mp3", "audio/mpeg", 3145728, nil},
		{"empty name", "  ", "audio/mpeg", 10, ErrInvalidFile},
		{"negative size", "a.mp3", "audio/mpeg", -1, ErrInvalidFile},
		{"pdf", "doc.pdf", "application/pdf", 10, ErrNotAudio},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAudioFile(tt.filename, tt.ct, tt.size)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}
