package storage

import (
	"bytes"
	"errors"
	"testing"
)

// Minimal valid PNG header plus IHDR start, enough for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestReadAndSniffDetectsPNG(t *testing.T) {
	data, mime, err := ReadAndSniff(bytes.NewReader(pngHeader), 1024)
	if err != nil {
		t.Fatalf("ReadAndSniff: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
	if !bytes.Equal(data, pngHeader) {
		t.Errorf("data was altered during sniffing")
	}
}

func TestReadAndSniffIgnoresDeclaredType(t *testing.T) {
	// A text payload is sniffed as text regardless of any claimed type
	_, mime, err := ReadAndSniff(bytes.NewReader([]byte("not really an image")), 1024)
	if err != nil {
		t.Fatalf("ReadAndSniff: %v", err)
	}
	if mime != "text/plain" {
		t.Errorf("mime = %q, want text/plain", mime)
	}
}

func TestReadAndSniffRejectsEmpty(t *testing.T) {
	_, _, err := ReadAndSniff(bytes.NewReader(nil), 1024)
	if !errors.Is(err, ErrEmptyFile) {
		t.Errorf("err = %v, want ErrEmptyFile", err)
	}
}

func TestReadAndSniffRejectsOversized(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 33)
	_, _, err := ReadAndSniff(bytes.NewReader(payload), 32)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("err = %v, want ErrFileTooLarge", err)
	}

	// Exactly at the limit is fine
	if _, _, err := ReadAndSniff(bytes.NewReader(payload[:32]), 32); err != nil {
		t.Errorf("exact-size payload rejected: %v", err)
	}
}
