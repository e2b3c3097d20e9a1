// Package archiver orchestrates a full export run: crawl the feed,
// persist the snapshot and per-post files, then fetch media through the
// worker pool.
package archiver

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"bilifetch/internal/downloader"
	"bilifetch/pkg/bilibili"
	"bilifetch/pkg/config"
	"bilifetch/pkg/feed"
	"bilifetch/pkg/logger"
	"bilifetch/pkg/opus"
	"bilifetch/pkg/ratelimit"
	"bilifetch/pkg/storage"
	"bilifetch/pkg/ui"
)

// Archiver drives the export of one user's feed to disk
type Archiver struct {
	client      *bilibili.Client
	rateLimiter ratelimit.Limiter
	config      *config.Config
	logger      logger.Logger
}

// New creates a new Archiver instance
func New(cfg *config.Config) (*Archiver, error) {
	log := logger.GetLogger()

	client := bilibili.NewClientWithSession(cfg, log)

	var rateLimiter ratelimit.Limiter
	if cfg.RateLimit.RequestsPerMinute > 0 {
		rateLimiter = ratelimit.NewTokenBucket(
			cfg.RateLimit.RequestsPerMinute,
			time.Minute,
		)
	} else {
		rateLimiter = ratelimit.NewTokenBucket(60, time.Minute)
	}

	return &Archiver{
		client:      client,
		rateLimiter: rateLimiter,
		config:      cfg,
		logger:      log,
	}, nil
}

// getOutputDir determines the output directory for a user id
func (a *Archiver) getOutputDir(hostUID uint64) string {
	if a.config.Output.CreateUserFolders {
		return filepath.Join(a.config.Output.BaseDirectory, strconv.FormatUint(hostUID, 10))
	}
	return a.config.Output.BaseDirectory
}

// ArchiveDynamics exports a user's complete dynamics history
func (a *Archiver) ArchiveDynamics(hostUID uint64) error {
	a.client.SetHeader("Referer", bilibili.GetSpaceRefererURL(hostUID))

	store, err := storage.NewStore(a.getOutputDir(hostUID), a.logger)
	if err != nil {
		return err
	}

	posts, err := a.resolvePosts(store, func() ([]feed.Post, error) {
		paginator := feed.NewPaginator(a.client, a.rateLimiter, a.logger)
		return paginator.FetchAll(hostUID)
	})
	if err != nil {
		return err
	}

	return a.export(store, posts)
}

// ArchiveOpus exports a user's complete opus feed
func (a *Archiver) ArchiveOpus(hostUID uint64) error {
	a.client.SetHeader("Referer", bilibili.GetSpaceRefererURL(hostUID))

	store, err := storage.NewStore(a.getOutputDir(hostUID), a.logger)
	if err != nil {
		return err
	}

	posts, err := a.resolvePosts(store, func() ([]feed.Post, error) {
		walker := opus.NewWalker(a.client, a.rateLimiter, a.logger)
		return walker.FetchAll(hostUID)
	})
	if err != nil {
		return err
	}

	return a.export(store, posts)
}

// resolvePosts either replays the stored snapshot or runs a fresh crawl
// and saves its result. A snapshot save failure is fatal: continuing
// would download media for an export that cannot be replayed.
func (a *Archiver) resolvePosts(store *storage.Store, crawl func() ([]feed.Post, error)) ([]feed.Post, error) {
	if a.config.Download.FromSnapshot {
		posts, err := store.LoadSnapshot()
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
		ui.PrintInfo("Snapshot loaded", fmt.Sprintf("%d posts", len(posts)))
		return posts, nil
	}

	posts, err := crawl()
	if err != nil {
		return nil, err
	}

	if err := store.SaveSnapshot(posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// export writes every post's side files and then fetches its media
func (a *Archiver) export(store *storage.Store, posts []feed.Post) error {
	failedFiles := 0
	for _, post := range posts {
		if err := store.WritePostFiles(post); err != nil {
			failedFiles++
			a.logger.ErrorWithFields("failed to write post files", map[string]interface{}{
				"post_id": post.ID,
				"error":   err.Error(),
			})
		}
	}
	if failedFiles > 0 {
		ui.PrintWarning("Failed to write files for %d posts", failedFiles)
	}

	ui.PrintInfo("Posts archived", strconv.Itoa(len(posts)))

	if !a.config.Download.MediaEnabled {
		a.logger.Info("media download disabled, skipping")
		return nil
	}

	policy := feed.Policy{
		SkipRepostsAndCovers: a.config.Download.SkipRepostsAndCovers,
		SkipTextOnly:         a.config.Download.SkipTextOnly,
	}
	tasks := feed.Plan(posts, policy, store.DynamicDir())
	if len(tasks) == 0 {
		ui.PrintInfo("Media downloads", "nothing to fetch")
		return nil
	}

	pool := downloader.NewWorkerPool(
		a.config.Download.ConcurrentDownloads,
		a.client,
		store,
		nil, // image CDN fetches are not rate limited
		a.logger,
	)
	attempted, failed := pool.Run(tasks)

	a.logger.InfoWithFields("media downloads complete", map[string]interface{}{
		"planned":   len(tasks),
		"attempted": attempted,
		"failed":    failed,
	})

	if failed > 0 {
		ui.PrintWarning("%d of %d downloads failed", failed, attempted)
	} else {
		ui.PrintSuccess(fmt.Sprintf("Downloaded %d files (%d already present)", attempted, len(tasks)-attempted))
	}

	return nil
}
