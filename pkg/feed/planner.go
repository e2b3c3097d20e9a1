package feed

import (
	"path"
	"path/filepath"
	"strings"
)

// Plan expands posts into a flat list of download tasks under the given
// policy. It is pure: directory creation is the store's responsibility.
// Each task's destination is the post's directory under baseDir joined
// with the basename of the image URL.
func Plan(posts []Post, policy Policy, baseDir string) []DownloadTask {
	var tasks []DownloadTask

	for _, post := range posts {
		if policy.SkipRepostsAndCovers && (post.Kind == KindForward || post.Kind == KindVideoSubmission) {
			continue
		}
		if policy.SkipTextOnly && len(post.Item.Pictures) == 0 {
			continue
		}

		dir := filepath.Join(baseDir, post.DirName())
		for _, url := range post.Item.Pictures {
			if url == "" {
				continue
			}
			tasks = append(tasks, DownloadTask{
				URL:  url,
				Dest: filepath.Join(dir, Basename(url)),
			})
		}
	}

	return tasks
}

// Basename returns the final path segment of an image URL, with any query
// or fragment stripped
func Basename(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return path.Base(rawURL)
}
