package shadow

import (
	"errors"
	"testing"

	"github.com/okkema/linkshade/internal/metadata"
	"github.com/okkema/linkshade/internal/steg"
	"github.com/okkema/linkshade/pkg/chat"
)

func resolvedFile(name, mime string) metadata.FileMetadata {
	return metadata.FileMetadata{
		Name:         name,
		ViewURL:      "https://drive.google.com/file/d/" + name + "/view",
		MIMEType:     mime,
		ModifiedTime: "2026-08-30T12:00:00.000Z",
	}
}

func TestBuildEmbedsEmptyInput(t *testing.T) {
	embeds, err := BuildEmbeds(nil, "123")
	if err != nil {
		t.Fatalf("BuildEmbeds() error: %v", err)
	}
	if embeds != nil {
		t.Errorf("embeds = %v, want nil (no shadow content needed)", embeds)
	}
}

func TestBuildEmbedsCorrelationOnFirstOnly(t *testing.T) {
	files := []metadata.FileMetadata{
		resolvedFile("report.pdf", "application/pdf"),
		resolvedFile("notes", "application/vnd.google-apps.document"),
	}

	embeds, err := BuildEmbeds(files, "9000000001")
	if err != nil {
		t.Fatalf("BuildEmbeds() error: %v", err)
	}
	if len(embeds) != 2 {
		t.Fatalf("len(embeds) = %d, want 2", len(embeds))
	}

	decoded, err := steg.Decode(embeds[0].Title)
	if err != nil {
		t.Fatalf("first title does not decode: %v", err)
	}
	if decoded != "9000000001" {
		t.Errorf("decoded correlation id = %q, want %q", decoded, "9000000001")
	}
	if steg.Strip(embeds[0].Title) != "report.pdf" {
		t.Errorf("visible title = %q, want %q", steg.Strip(embeds[0].Title), "report.pdf")
	}

	if steg.Index(embeds[1].Title) != -1 {
		t.Errorf("second title %q carries a hidden payload", embeds[1].Title)
	}
	if embeds[1].Title != "notes" {
		t.Errorf("second title = %q, want %q", embeds[1].Title, "notes")
	}
}

func TestBuildEmbedsFields(t *testing.T) {
	files := []metadata.FileMetadata{resolvedFile("sheet", "application/vnd.google-apps.spreadsheet")}

	embeds, err := BuildEmbeds(files, "1")
	if err != nil {
		t.Fatalf("BuildEmbeds() error: %v", err)
	}

	e := embeds[0]
	if e.URL != files[0].ViewURL {
		t.Errorf("URL = %q, want %q", e.URL, files[0].ViewURL)
	}
	if e.Color != 0x0F9D58 {
		t.Errorf("Color = %#x, want %#x", e.Color, 0x0F9D58)
	}
	if e.Timestamp != "2026-08-30T12:00:00Z" {
		t.Errorf("Timestamp = %q, want normalized RFC3339", e.Timestamp)
	}
	if e.Kind != chat.EmbedRich {
		t.Errorf("Kind = %q, want %q", e.Kind, chat.EmbedRich)
	}
}

func TestBuildEmbedsDefaultColor(t *testing.T) {
	embeds, err := BuildEmbeds([]metadata.FileMetadata{resolvedFile("x", "video/mp4")}, "1")
	if err != nil {
		t.Fatalf("BuildEmbeds() error: %v", err)
	}
	if embeds[0].Color != defaultColor {
		t.Errorf("Color = %#x, want default %#x", embeds[0].Color, defaultColor)
	}
}

func TestBuildEmbedsMissingFieldFatal(t *testing.T) {
	tests := []struct {
		name string
		file metadata.FileMetadata
	}{
		{"missing name", metadata.FileMetadata{ViewURL: "u", MIMEType: "m", ModifiedTime: "2026-08-30T12:00:00Z"}},
		{"missing view url", metadata.FileMetadata{Name: "n", MIMEType: "m", ModifiedTime: "2026-08-30T12:00:00Z"}},
		{"missing mime type", metadata.FileMetadata{Name: "n", ViewURL: "u", ModifiedTime: "2026-08-30T12:00:00Z"}},
		{"missing modified time", metadata.FileMetadata{Name: "n", ViewURL: "u", MIMEType: "m"}},
		{"malformed modified time", metadata.FileMetadata{Name: "n", ViewURL: "u", MIMEType: "m", ModifiedTime: "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildEmbeds([]metadata.FileMetadata{tt.file}, "1")
			if !errors.Is(err, ErrMissingField) {
				t.Errorf("error = %v, want ErrMissingField", err)
			}
		})
	}
}
