package feed

import (
	"testing"

	"bilifetch/pkg/bilibili"
)

func testDesc(id uint64, ts int64) bilibili.CardDesc {
	return bilibili.CardDesc{
		UID:       42,
		DynamicID: id,
		Timestamp: ts,
	}
}

func TestNormalizePlainPost(t *testing.T) {
	card := `{
		"item": {
			"description": "hello world",
			"pictures": [
				{"img_src": "https://i0.example.com/a.jpg"},
				{"img_src": "https://i0.example.com/b.jpg"}
			]
		}
	}`

	post := Normalize(testDesc(100, 1700000000), card)

	if post.ID != "100" {
		t.Errorf("Expected id 100, got %s", post.ID)
	}
	if post.Kind != KindPlain {
		t.Errorf("Expected plain kind, got %s", post.Kind)
	}
	if post.Item.Description == nil || *post.Item.Description != "hello world" {
		t.Errorf("Expected description 'hello world', got %v", post.Item.Description)
	}
	if post.Item.Content != nil {
		t.Errorf("Expected nil content, got %v", *post.Item.Content)
	}
	if len(post.Item.Pictures) != 2 {
		t.Fatalf("Expected 2 pictures, got %d", len(post.Item.Pictures))
	}
	if post.Item.Pictures[0] != "https://i0.example.com/a.jpg" {
		t.Errorf("Unexpected first picture: %s", post.Item.Pictures[0])
	}
}

func TestNormalizeNestedItem(t *testing.T) {
	// The payload may nest its item several levels deep
	card := `{"item": {"item": {"content": "nested text"}}}`

	post := Normalize(testDesc(101, 1700000000), card)

	if post.Item.Content == nil || *post.Item.Content != "nested text" {
		t.Errorf("Expected content 'nested text', got %v", post.Item.Content)
	}
	if post.Item.Pictures == nil {
		t.Error("Pictures must never be nil")
	}
	if len(post.Item.Pictures) != 0 {
		t.Errorf("Expected no pictures, got %d", len(post.Item.Pictures))
	}
}

func TestNormalizeVideoSubmission(t *testing.T) {
	card := `{
		"videos": 1,
		"aid": 9876,
		"title": "my video",
		"desc": "about the video",
		"dynamic": "watch this",
		"short_link": "https://b23.tv/xyz",
		"tname": "music",
		"stat": {"view": 1000},
		"pic": "https://i0.example.com/cover.jpg"
	}`

	post := Normalize(testDesc(102, 1700000000), card)

	if post.Kind != KindVideoSubmission {
		t.Fatalf("Expected video kind, got %s", post.Kind)
	}
	if post.Item.Title != "my video" {
		t.Errorf("Expected title 'my video', got %s", post.Item.Title)
	}
	if post.Item.VideoID != 9876 {
		t.Errorf("Expected video id 9876, got %d", post.Item.VideoID)
	}
	if post.Item.Category != "music" {
		t.Errorf("Expected category 'music', got %s", post.Item.Category)
	}
	// A video submission always yields exactly one picture, the cover
	if len(post.Item.Pictures) != 1 {
		t.Fatalf("Expected 1 picture, got %d", len(post.Item.Pictures))
	}
	if post.Item.Pictures[0] != "https://i0.example.com/cover.jpg" {
		t.Errorf("Unexpected cover URL: %s", post.Item.Pictures[0])
	}
}

func TestNormalizeForward(t *testing.T) {
	card := `{
		"item": {"content": "check this out"},
		"origin": "{\"item\": {\"description\": \"original post\"}, \"user\": {\"name\": \"author\"}}"
	}`

	post := Normalize(testDesc(103, 1700000000), card)

	if post.Kind != KindForward {
		t.Fatalf("Expected forward kind, got %s", post.Kind)
	}
	if post.Origin == nil {
		t.Fatal("Expected origin to be resolved")
	}
	if post.Origin.Description == nil || *post.Origin.Description != "original post" {
		t.Errorf("Expected origin description 'original post', got %v", post.Origin.Description)
	}
	if post.OriginAuthor != "author" {
		t.Errorf("Expected origin author 'author', got %s", post.OriginAuthor)
	}
}

func TestNormalizeForwardOfDeletedPost(t *testing.T) {
	card := `{
		"item": {"content": "forwarding"},
		"origin": "源动态不见了"
	}`

	post := Normalize(testDesc(104, 1700000000), card)

	// Still a forward, but with nothing to resolve
	if post.Kind != KindForward {
		t.Errorf("Expected forward kind, got %s", post.Kind)
	}
	if post.Origin != nil {
		t.Errorf("Expected nil origin for deleted original, got %v", post.Origin)
	}
	if post.OriginAuthor != "" {
		t.Errorf("Expected empty origin author, got %s", post.OriginAuthor)
	}
}

func TestNormalizeForwardedVideo(t *testing.T) {
	card := `{
		"item": {"content": "great video"},
		"origin": "{\"videos\": 1, \"title\": \"origin video\", \"pic\": \"https://i0.example.com/o.jpg\"}"
	}`

	post := Normalize(testDesc(105, 1700000000), card)

	if post.Kind != KindForward {
		t.Fatalf("Expected forward kind, got %s", post.Kind)
	}
	if post.Origin == nil {
		t.Fatal("Expected origin to be resolved")
	}
	if post.Origin.Title != "origin video" {
		t.Errorf("Expected origin title 'origin video', got %s", post.Origin.Title)
	}
	if len(post.Origin.Pictures) != 1 || post.Origin.Pictures[0] != "https://i0.example.com/o.jpg" {
		t.Errorf("Unexpected origin pictures: %v", post.Origin.Pictures)
	}
}

func TestNormalizeMalformedCard(t *testing.T) {
	for _, card := range []string{
		"",
		"not json at all",
		"[1,2,3]",
		`{"item": "not an object"}`,
	} {
		post := Normalize(testDesc(106, 1700000000), card)

		if post.ID != "106" {
			t.Errorf("card %q: expected id preserved, got %s", card, post.ID)
		}
		if post.Kind != KindPlain {
			t.Errorf("card %q: expected plain kind, got %s", card, post.Kind)
		}
		if post.Item.Pictures == nil {
			t.Errorf("card %q: pictures must never be nil", card)
		}
	}
}

func TestNormalizeEmptyOriginIsNotForward(t *testing.T) {
	card := `{"item": {"content": "plain"}, "origin": ""}`

	post := Normalize(testDesc(107, 1700000000), card)

	if post.Kind != KindPlain {
		t.Errorf("Expected plain kind for empty origin, got %s", post.Kind)
	}
}

func TestDirName(t *testing.T) {
	post := Post{ID: "555", Timestamp: 0}
	got := post.DirName()

	// Formatted in local time, so only check the shape and suffix
	if len(got) != len("2006-01-02_150405_555") {
		t.Errorf("Unexpected directory name length: %s", got)
	}
	if got[len(got)-4:] != "_555" {
		t.Errorf("Expected id suffix, got %s", got)
	}
}
