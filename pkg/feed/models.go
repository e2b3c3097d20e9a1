package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind is the post variant tag. It determines which Inner fields are
// meaningful for the post's item.
type Kind string

const (
	// KindPlain is a text post with an optional picture list
	KindPlain Kind = "plain"
	// KindVideoSubmission is a video upload; its single picture is the cover
	KindVideoSubmission Kind = "video"
	// KindForward is a repost of another post
	KindForward Kind = "forward"
)

// Post is the canonical normalized record for one feed entry
type Post struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Kind      Kind   `json:"kind"`
	Item      Inner  `json:"item"`

	// Origin is the reposted post's content, present only for forwards
	// whose original is still resolvable. A forward of a deleted post has
	// Kind == KindForward with Origin nil.
	Origin       *Inner `json:"origin,omitempty"`
	OriginAuthor string `json:"origin_author,omitempty"`
}

// Inner is the content payload of a post. Which fields are populated
// depends on the owning post's Kind: plain posts carry Description,
// Content and Pictures; video submissions carry Title through VideoID
// plus a single cover URL in Pictures.
type Inner struct {
	// Plain shape. Pointers distinguish absent text from empty text; the
	// store only writes side files for non-nil values.
	Description *string `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`

	// Video submission shape
	Title     string          `json:"title,omitempty"`
	Desc      string          `json:"desc,omitempty"`
	Dynamic   string          `json:"dynamic,omitempty"`
	ShortLink string          `json:"short_link,omitempty"`
	Stat      json.RawMessage `json:"stat,omitempty"`
	Category  string          `json:"category,omitempty"`
	VideoID   int64           `json:"video_id,omitempty"`

	// Pictures is always present, never nil; an empty slice encodes a
	// post with no media.
	Pictures []string `json:"pictures"`
}

// DownloadTask is one planned image download
type DownloadTask struct {
	URL  string
	Dest string
}

// Policy controls which posts are expanded into download tasks
type Policy struct {
	// SkipRepostsAndCovers excludes forwards and video submissions from
	// media planning entirely (their text is still persisted).
	SkipRepostsAndCovers bool
	// SkipTextOnly excludes posts whose own picture list is empty.
	SkipTextOnly bool
}

// DirName returns the post's storage directory name, keyed by formatted
// timestamp plus id. The id suffix keeps two posts published in the same
// second from merging into one directory.
func (p Post) DirName() string {
	return fmt.Sprintf("%s_%s", time.Unix(p.Timestamp, 0).Format("2006-01-02_150405"), p.ID)
}
