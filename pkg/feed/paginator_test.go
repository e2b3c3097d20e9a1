package feed

import (
	"fmt"
	"testing"

	"bilifetch/pkg/bilibili"
)

// mockPageFetcher replays a fixed page sequence keyed by offset
type mockPageFetcher struct {
	pages      map[uint64]*bilibili.DynamicsPage
	fetchCount int
	err        error
}

func (m *mockPageFetcher) FetchDynamicsPage(hostUID uint64, offset uint64) (*bilibili.DynamicsPage, error) {
	m.fetchCount++
	if m.err != nil {
		return nil, m.err
	}
	page, ok := m.pages[offset]
	if !ok {
		return nil, fmt.Errorf("no page at offset %d", offset)
	}
	return page, nil
}

func makeCard(id uint64, content string) bilibili.DynamicCard {
	return bilibili.DynamicCard{
		Desc: bilibili.CardDesc{DynamicID: id, Timestamp: 1700000000},
		Card: fmt.Sprintf(`{"item": {"content": "%s"}}`, content),
	}
}

func TestFetchAllWalksToExhaustion(t *testing.T) {
	fetcher := &mockPageFetcher{
		pages: map[uint64]*bilibili.DynamicsPage{
			0: {
				HasMore:    1,
				NextOffset: 200,
				Cards:      []bilibili.DynamicCard{makeCard(1, "first"), makeCard(2, "second")},
			},
			200: {
				HasMore:    1,
				NextOffset: 100,
				Cards:      []bilibili.DynamicCard{makeCard(3, "third")},
			},
			100: {
				HasMore:    0,
				NextOffset: 0,
				Cards:      []bilibili.DynamicCard{makeCard(4, "fourth")},
			},
		},
	}

	paginator := NewPaginator(fetcher, nil, nil)
	posts, err := paginator.FetchAll(42)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if fetcher.fetchCount != 3 {
		t.Errorf("Expected 3 page fetches, got %d", fetcher.fetchCount)
	}

	// Terminal page cards are included, in page order
	if len(posts) != 4 {
		t.Fatalf("Expected 4 posts, got %d", len(posts))
	}
	for i, wantID := range []string{"1", "2", "3", "4"} {
		if posts[i].ID != wantID {
			t.Errorf("Post %d: expected id %s, got %s", i, wantID, posts[i].ID)
		}
	}
}

func TestFetchAllSinglePage(t *testing.T) {
	fetcher := &mockPageFetcher{
		pages: map[uint64]*bilibili.DynamicsPage{
			0: {
				HasMore: 0,
				Cards:   []bilibili.DynamicCard{makeCard(1, "only")},
			},
		},
	}

	paginator := NewPaginator(fetcher, nil, nil)
	posts, err := paginator.FetchAll(42)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if fetcher.fetchCount != 1 {
		t.Errorf("Expected 1 page fetch, got %d", fetcher.fetchCount)
	}
	if len(posts) != 1 {
		t.Errorf("Expected 1 post, got %d", len(posts))
	}
}

func TestFetchAllAbortsOnError(t *testing.T) {
	fetcher := &mockPageFetcher{
		err: fmt.Errorf("connection reset"),
	}

	paginator := NewPaginator(fetcher, nil, nil)
	posts, err := paginator.FetchAll(42)

	// A failed page means no result at all, never a silent truncation
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if posts != nil {
		t.Errorf("Expected nil posts on error, got %d", len(posts))
	}
}

func TestFetchAllEmptyFeed(t *testing.T) {
	fetcher := &mockPageFetcher{
		pages: map[uint64]*bilibili.DynamicsPage{
			0: {HasMore: 0, Cards: nil},
		},
	}

	paginator := NewPaginator(fetcher, nil, nil)
	posts, err := paginator.FetchAll(42)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("Expected empty result, got %d posts", len(posts))
	}
}
