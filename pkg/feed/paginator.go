package feed

import (
	"fmt"

	"bilifetch/pkg/bilibili"
	"bilifetch/pkg/logger"
	"bilifetch/pkg/ratelimit"
)

// PageFetcher fetches one page of a user's dynamics history
type PageFetcher interface {
	FetchDynamicsPage(hostUID uint64, offset uint64) (*bilibili.DynamicsPage, error)
}

// Paginator walks a user's dynamics history to exhaustion, normalizing
// every card in page order.
type Paginator struct {
	client  PageFetcher
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewPaginator creates a paginator. The limiter may be nil to disable
// rate limiting (tests).
func NewPaginator(client PageFetcher, limiter ratelimit.Limiter, log logger.Logger) *Paginator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Paginator{
		client:  client,
		limiter: limiter,
		logger:  log,
	}
}

// FetchAll retrieves the user's complete dynamics history. Page order and
// within-page order are preserved in the result. Any transport or API
// error aborts the crawl: a truncated result must never be mistaken for a
// complete export.
func (p *Paginator) FetchAll(hostUID uint64) ([]Post, error) {
	var posts []Post
	offset := uint64(0)
	pageNum := 0

	for {
		if p.limiter != nil && !p.limiter.Allow() {
			p.logger.WarnWithFields("rate limit reached, waiting", map[string]interface{}{
				"host_uid": hostUID,
				"page":     pageNum + 1,
			})
			p.limiter.Wait()
		}

		page, err := p.client.FetchDynamicsPage(hostUID, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch dynamics page %d: %w", pageNum+1, err)
		}
		pageNum++

		for _, card := range page.Cards {
			posts = append(posts, Normalize(card.Desc, card.Card))
		}

		p.logger.InfoWithFields("dynamics page fetched", map[string]interface{}{
			"host_uid": hostUID,
			"page":     pageNum,
			"cards":    len(page.Cards),
			"has_more": page.HasMore == 1,
		})

		if page.HasMore != 1 {
			// The terminal page's cursor is meaningless; drop it.
			break
		}
		offset = page.NextOffset
	}

	p.logger.InfoWithFields("dynamics crawl complete", map[string]interface{}{
		"host_uid": hostUID,
		"pages":    pageNum,
		"posts":    len(posts),
	})

	return posts, nil
}
