package source

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var objectNameRe = regexp.MustCompile(`^(?:[0-9a-f]{40}|[0-9a-f]{64})$`)

// Checkout is a git working tree of the native library sources.
type Checkout struct {
	Dir string
	// Git is the git binary; "git" when empty.
	Git string
}

// Revision returns the commit checked out in c.Dir. It fails unless c.Dir is
// the top level of its own repository, so a missing submodule nested in
// another checkout is never mistaken for the library sources.
func (c Checkout) Revision(ctx context.Context) (string, error) {
	git := c.Git
	if git == "" {
		git = "git"
	}
	want, err := filepath.Abs(c.Dir)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(want); err == nil {
		want = resolved
	}

	var out bytes.Buffer
	r := Runner{Dir: c.Dir}
	if err := r.Run(ctx, []string{git, "rev-parse", "--show-toplevel", "HEAD"}, &out); err != nil {
		return "", fmt.Errorf("resolving revision of %s: %w", c.Dir, err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		return "", fmt.Errorf("resolving revision of %s: unexpected git output %q", c.Dir, out.String())
	}
	top, rev := lines[0], lines[1]
	if resolved, err := filepath.EvalSymlinks(top); err == nil {
		top = resolved
	}
	if filepath.Clean(top) != filepath.Clean(want) {
		return "", fmt.Errorf("%s is not a checkout: it belongs to the repository at %s", c.Dir, top)
	}
	if !objectNameRe.MatchString(rev) {
		return "", fmt.Errorf("resolving revision of %s: malformed object name %q", c.Dir, rev)
	}
	return rev, nil
}
