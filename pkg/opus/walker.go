// Package opus walks a user's opus feed and flattens the structured
// module documents into the same canonical post records the dynamics
// crawl produces, so storage and media planning treat both sources
// identically.
package opus

import (
	"fmt"
	"strings"

	"bilifetch/pkg/bilibili"
	"bilifetch/pkg/feed"
	"bilifetch/pkg/logger"
	"bilifetch/pkg/ratelimit"
)

// OpusFetcher fetches opus feed pages and per-item detail documents
type OpusFetcher interface {
	FetchOpusFeedPage(hostUID uint64, offset string) (*bilibili.OpusFeedPage, error)
	FetchOpusDetail(opusID string) (*bilibili.OpusItem, error)
}

// Walker crawls a user's opus feed to exhaustion
type Walker struct {
	client  OpusFetcher
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewWalker creates a walker. The limiter may be nil to disable rate
// limiting (tests).
func NewWalker(client OpusFetcher, limiter ratelimit.Limiter, log logger.Logger) *Walker {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Walker{
		client:  client,
		limiter: limiter,
		logger:  log,
	}
}

// FetchAll walks the opus feed and resolves every listed document into a
// post. A feed page error aborts the crawl; a single document's detail
// error only drops that document.
func (w *Walker) FetchAll(hostUID uint64) ([]feed.Post, error) {
	var posts []feed.Post
	offset := ""
	pageNum := 0

	for {
		if w.limiter != nil && !w.limiter.Allow() {
			w.limiter.Wait()
		}

		page, err := w.client.FetchOpusFeedPage(hostUID, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch opus feed page %d: %w", pageNum+1, err)
		}
		pageNum++

		for _, item := range page.Items {
			post, err := w.fetchOne(item.OpusID)
			if err != nil {
				w.logger.WarnWithFields("skipping opus document", map[string]interface{}{
					"opus_id": item.OpusID,
					"error":   err.Error(),
				})
				continue
			}
			posts = append(posts, post)
		}

		w.logger.InfoWithFields("opus feed page fetched", map[string]interface{}{
			"host_uid": hostUID,
			"page":     pageNum,
			"items":    len(page.Items),
			"has_more": page.HasMore,
		})

		if !page.HasMore || page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	w.logger.InfoWithFields("opus crawl complete", map[string]interface{}{
		"host_uid": hostUID,
		"pages":    pageNum,
		"posts":    len(posts),
	})

	return posts, nil
}

// fetchOne resolves a single opus document into a post
func (w *Walker) fetchOne(opusID string) (feed.Post, error) {
	if w.limiter != nil && !w.limiter.Allow() {
		w.limiter.Wait()
	}

	item, err := w.client.FetchOpusDetail(opusID)
	if err != nil {
		return feed.Post{}, err
	}

	return w.Flatten(item), nil
}

// Flatten converts a structured opus document into a canonical post. The
// title module becomes the description, text paragraphs are concatenated
// into the content, and pic paragraphs contribute their image URLs in
// document order. Unknown paragraph types are logged and skipped.
func (w *Walker) Flatten(item *bilibili.OpusItem) feed.Post {
	post := feed.Post{
		ID:   item.IDStr,
		Kind: feed.KindPlain,
		Item: feed.Inner{Pictures: []string{}},
	}

	var content strings.Builder

	for _, module := range item.Modules {
		switch module.ModuleType {
		case bilibili.ModuleTypeAuthor:
			if module.ModuleAuthor != nil {
				post.Timestamp = module.ModuleAuthor.PubTs
			}
		case bilibili.ModuleTypeTitle:
			if module.ModuleTitle != nil {
				title := module.ModuleTitle.Text
				post.Item.Description = &title
			}
		case bilibili.ModuleTypeContent:
			if module.ModuleContent != nil {
				w.flattenParagraphs(&post, &content, module.ModuleContent.Paragraphs, item.IDStr)
			}
		default:
			w.logger.DebugWithFields("skipping unknown opus module", map[string]interface{}{
				"opus_id":     item.IDStr,
				"module_type": module.ModuleType,
			})
		}
	}

	if content.Len() > 0 {
		text := content.String()
		post.Item.Content = &text
	}

	return post
}

// flattenParagraphs appends paragraph text and image URLs to the post
func (w *Walker) flattenParagraphs(post *feed.Post, content *strings.Builder, paragraphs []bilibili.OpusParagraph, opusID string) {
	for _, para := range paragraphs {
		switch para.ParaType {
		case bilibili.ParaTypeText:
			if para.Text == nil {
				continue
			}
			for _, node := range para.Text.Nodes {
				content.WriteString(node.Word.Words)
			}
			content.WriteString("\n")
		case bilibili.ParaTypePic:
			if para.Pic == nil {
				continue
			}
			for _, pic := range para.Pic.Pics {
				if pic.URL != "" {
					post.Item.Pictures = append(post.Item.Pictures, pic.URL)
				}
			}
		default:
			w.logger.DebugWithFields("skipping unknown paragraph type", map[string]interface{}{
				"opus_id":   opusID,
				"para_type": para.ParaType,
			})
		}
	}
}
