package repository

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// fallbackPrefix marks working-copy names derived from the URL hash.
const fallbackPrefix = "repo-"

// safeSegment matches directory names that are safe to create under the
// working-copy root on every supported platform.
var safeSegment = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// WorkingCopyName derives the working-copy directory name for url.
//
// The name is the last path segment with a trailing ".git" removed in any
// letter case: "https://example.com/foo/bar.git" and ".../bar.GIT" both map
// to "bar". URLs with a scheme,
// scp-like "user@host:org/repo.git" addresses and plain filesystem paths
// are understood. When no usable segment can be found the name is
// "repo-" followed by the first 12 hex digits of the SHA-256 of url, so
// the same url always yields the same name.
func WorkingCopyName(rawURL string) string {
	seg := lastSegment(strings.TrimSpace(rawURL))
	if len(seg) >= len(".git") && strings.EqualFold(seg[len(seg)-len(".git"):], ".git") {
		seg = seg[:len(seg)-len(".git")]
	}
	if seg == "" || seg == "." || seg == ".." || !safeSegment.MatchString(seg) {
		return fallbackName(rawURL)
	}
	return seg
}

// WorkingCopyPath returns the working-copy directory for url under root.
func WorkingCopyPath(root, rawURL string) string {
	return filepath.Join(root, WorkingCopyName(rawURL))
}

// lastSegment extracts the final path element of a repository address.
func lastSegment(raw string) string {
	if raw == "" {
		return ""
	}

	p := raw
	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		p = u.Path
	case isSCPLike(raw):
		p = raw[strings.Index(raw, ":")+1:]
	}

	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// isSCPLike reports whether raw has the "[user@]host:path" form git accepts
// for SSH remotes. Windows drive letters ("C:\...") are not scp-like.
func isSCPLike(raw string) bool {
	colon := strings.Index(raw, ":")
	if colon <= 0 {
		return false
	}
	if slash := strings.IndexAny(raw, "/\\"); slash >= 0 && slash < colon {
		return false
	}
	return colon > 1
}

func fallbackName(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return fallbackPrefix + hex.EncodeToString(sum[:])[:12]
}
