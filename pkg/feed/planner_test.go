package feed

import (
	"path/filepath"
	"testing"
)

func plainPost(id string, ts int64, pictures ...string) Post {
	if pictures == nil {
		pictures = []string{}
	}
	return Post{
		ID:        id,
		Timestamp: ts,
		Kind:      KindPlain,
		Item:      Inner{Pictures: pictures},
	}
}

func TestPlanExpandsPictures(t *testing.T) {
	posts := []Post{
		plainPost("1", 1700000000, "https://i0.example.com/a.jpg", "https://i0.example.com/b.jpg"),
	}

	tasks := Plan(posts, Policy{}, "/archive")

	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}

	wantDir := filepath.Join("/archive", posts[0].DirName())
	if tasks[0].Dest != filepath.Join(wantDir, "a.jpg") {
		t.Errorf("Unexpected destination: %s", tasks[0].Dest)
	}
	if tasks[1].URL != "https://i0.example.com/b.jpg" {
		t.Errorf("Unexpected URL: %s", tasks[1].URL)
	}
}

func TestPlanSkipPolicies(t *testing.T) {
	video := Post{
		ID:        "2",
		Timestamp: 1700000000,
		Kind:      KindVideoSubmission,
		Item:      Inner{Pictures: []string{"https://i0.example.com/cover.jpg"}},
	}
	forward := Post{
		ID:        "3",
		Timestamp: 1700000000,
		Kind:      KindForward,
		Item:      Inner{Pictures: []string{"https://i0.example.com/fwd.jpg"}},
	}
	textOnly := plainPost("4", 1700000000)
	withPics := plainPost("5", 1700000000, "https://i0.example.com/p.jpg")

	posts := []Post{video, forward, textOnly, withPics}

	tasks := Plan(posts, Policy{SkipRepostsAndCovers: true, SkipTextOnly: true}, "/archive")
	if len(tasks) != 1 {
		t.Fatalf("Expected 1 task under strict policy, got %d", len(tasks))
	}
	if tasks[0].URL != "https://i0.example.com/p.jpg" {
		t.Errorf("Unexpected task URL: %s", tasks[0].URL)
	}

	tasks = Plan(posts, Policy{}, "/archive")
	if len(tasks) != 3 {
		t.Errorf("Expected 3 tasks under permissive policy, got %d", len(tasks))
	}
}

func TestPlanSkipsEmptyURLs(t *testing.T) {
	// A video submission with no cover still carries one empty element
	video := Post{
		ID:        "6",
		Timestamp: 1700000000,
		Kind:      KindVideoSubmission,
		Item:      Inner{Pictures: []string{""}},
	}

	tasks := Plan([]Post{video}, Policy{}, "/archive")
	if len(tasks) != 0 {
		t.Errorf("Expected no tasks for empty cover URL, got %d", len(tasks))
	}
}

func TestPlanEmptyInput(t *testing.T) {
	tasks := Plan(nil, Policy{}, "/archive")
	if len(tasks) != 0 {
		t.Errorf("Expected no tasks for nil input, got %d", len(tasks))
	}
}

func TestBasename(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://i0.example.com/album/photo.jpg", "photo.jpg"},
		{"https://i0.example.com/photo.jpg?size=large", "photo.jpg"},
		{"https://i0.example.com/photo.png#section", "photo.png"},
		{"https://i0.example.com/photo.webp?x=1#y", "photo.webp"},
	}

	for _, tt := range tests {
		if got := Basename(tt.url); got != tt.want {
			t.Errorf("Basename(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
