package post

import (
	"testing"
	"time"

	"discord-blog/models"
)

func TestEmbed(t *testing.T) {
	tests := []struct {
		media models.Media
		want  string
	}{
		{
			models.Media{Filename: "cat.PNG", ThumbFilename: "cat.800px.jpg"},
			"[![cat.PNG]({attach}cat.800px.jpg)]({static}cat.PNG)",
		},
		{
			models.Media{Filename: "clip.mp4", ThumbFilename: "clip.800px.jpg"},
			"<div class='video-thumb' markdown='1'>[![clip.mp4]({attach}clip.800px.jpg)]({static}clip.mp4)</div>",
		},
		{
			models.Media{Filename: "notes.pdf", ThumbFilename: "notes.pdf"},
			"[notes.pdf]({static}notes.pdf)",
		},
		{
			models.Media{Filename: "photo.jpg"},
			"[photo.jpg]({static}photo.jpg)",
		},
	}
	for _, tt := range tests {
		if got := Embed(tt.media); got != tt.want {
			t.Errorf("Embed(%+v) = %q, want %q", tt.media, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	p := &models.Post{
		Title:  "Hello",
		Author: "Sam",
		Date:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Body:   "Body text",
		Media: []models.Media{
			{Filename: "a.png", ThumbFilename: "a.png"},
			{Filename: "b.txt"},
		},
	}
	got, err := Render(p)
	if err != nil {
		t.Fatal(err)
	}
	want := "Title: Hello\nAuthor: Sam\nDate: 2024-01-02 03:04:05\n\nBody text\n\n" +
		"[![a.png]({attach}a.png)]({static}a.png)\n[b.txt]({static}b.txt)"
	if string(got) != want {
		t.Errorf("Render =\n%s\nwant\n%s", got, want)
	}
}

func TestParseSource(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	p := &models.Post{
		Title:  "Hello: world",
		Author: "Sam",
		Date:   time.Date(2024, 1, 2, 3, 4, 5, 0, loc),
		Body:   "Body\n\nmore",
		Media:  []models.Media{{Filename: "a.png", ThumbFilename: "a.png"}},
	}
	data, err := Render(p)
	if err != nil {
		t.Fatal(err)
	}
	data = append(data, "\n[b.txt]({static}b.txt)"...)

	got, err := ParseSource(data, loc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != p.Title || got.Author != p.Author || !got.Date.Equal(p.Date) {
		t.Errorf("headers = %q %q %v", got.Title, got.Author, got.Date)
	}
	wantBody := "Body\n\nmore\n\n[![a.png]({attach}a.png)]({static}a.png)\n[b.txt]({static}b.txt)"
	if got.Body != wantBody {
		t.Errorf("body = %q", got.Body)
	}
}

func TestParseSourceErrors(t *testing.T) {
	for _, src := range []string{
		"Title: x\nAuthor: y\n\nno date",
		"Title: x\nDate: yesterday\n\nbody",
		"not a header\n\nbody",
	} {
		if _, err := ParseSource([]byte(src), time.UTC); err == nil {
			t.Errorf("ParseSource(%q) succeeded", src)
		}
	}
}
