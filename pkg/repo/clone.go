// Package repo resolves config-level RepoSpecs into uniform ResolvedRepos,
// cloning remote repos into the store (shallow, then full fallback) and
// reading their manifests, all against go-git/go-git/v5.
package repo

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/prek-go/prek/pkg/store"
)

// gitEnvAllowList are the GIT_* variables preserved in the clone
// subprocess environment; every other GIT_* is stripped.
var gitEnvAllowList = map[string]bool{
	"GIT_EXEC_PATH": true, "GIT_SSH": true, "GIT_SSH_COMMAND": true,
	"GIT_SSL_CAINFO": true, "GIT_SSL_NO_VERIFY": true, "GIT_CONFIG_COUNT": true,
	"GIT_HTTP_PROXY_AUTHMETHOD": true, "GIT_ALLOW_PROTOCOL": true, "GIT_ASKPASS": true,
}

// CloneEnv returns a filtered child environment for git subprocesses:
// GIT_* stripped except the allow-list, plus GIT_TERMINAL_PROMPT=0 and a
// skip-post-checkout sentinel. The clone/fetch functions in this file run
// in-process through go-git and do not use it.
func CloneEnv() []string {
	var out []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "GIT_") && !gitEnvAllowList[name] {
			continue
		}
		out = append(out, kv)
	}
	out = append(out, "GIT_TERMINAL_PROMPT=0", "PREK_SKIP_POST_CHECKOUT=1")
	return out
}

// CloneRepo is idempotent: dir is store.RepoCloneDir(url, rev), already a
// deterministic hash of (url, rev). Clone proceeds shallow (depth=1 fetch of
// rev) and falls back to a full clone+checkout if the remote rejects
// fetching by SHA.
func CloneRepo(ctx context.Context, s *store.Store, url, rev string) (string, error) {
	dir := s.RepoCloneDir(url, rev)
	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}

	if err := shallowClone(ctx, dir, url, rev); err != nil {
		_ = os.RemoveAll(dir)
		if err := fullClone(ctx, dir, url, rev); err != nil {
			_ = os.RemoveAll(dir)
			return "", fmt.Errorf("failed to clone %s@%s: %w", url, rev, err)
		}
	}

	if err := store.WriteRepoMarker(dir, store.RepoMarker{URL: url, Rev: rev}); err != nil {
		return "", err
	}
	return dir, nil
}

// shallowClone does init -> set origin -> fetch --depth=1 <rev> -> checkout
// FETCH_HEAD -> recursive submodule init.
func shallowClone(ctx context.Context, dir, url, rev string) error {
	gitRepo, err := git.PlainInit(dir, false)
	if err != nil {
		return err
	}
	remote, err := gitRepo.CreateRemote(&gitconfig.RemoteConfig{Name: "origin", URLs: []string{url}})
	if err != nil {
		return err
	}
	if err := remote.FetchContext(ctx, &git.FetchOptions{
		RefSpecs: []gitconfig.RefSpec{gitconfig.RefSpec(fmt.Sprintf("+%s:refs/prek-fetch-head", rev))},
		Depth:    1,
		Tags:     git.NoTags,
	}); err != nil {
		return err
	}

	wt, err := gitRepo.Worktree()
	if err != nil {
		return err
	}
	head, err := gitRepo.Reference(plumbing.ReferenceName("refs/prek-fetch-head"), true)
	if err != nil {
		return err
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: head.Hash()}); err != nil {
		return err
	}
	return initSubmodules(wt)
}

// fullClone is the fallback: a full clone (all history, all tags) followed
// by checkoutRevision, used when the server rejects shallow fetch-by-SHA.
func fullClone(ctx context.Context, dir, url, rev string) error {
	gitRepo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		return err
	}
	wt, err := gitRepo.Worktree()
	if err != nil {
		return err
	}
	if err := checkoutRevision(gitRepo, wt, rev); err != nil {
		return err
	}
	return initSubmodules(wt)
}

func initSubmodules(wt *git.Worktree) error {
	subs, err := wt.Submodules()
	if err != nil {
		return nil //nolint:nilerr // repos without submodules are the common case
	}
	return subs.Update(&git.SubmoduleUpdateOptions{Init: true, RecurseSubmodules: git.DefaultSubmoduleRecursionDepth})
}

// checkoutRevision tries, in order: commit hash, tag ref, remote branch
// ref, local branch ref.
func checkoutRevision(gitRepo *git.Repository, wt *git.Worktree, rev string) error {
	if isValidCommitHash(rev) {
		if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(rev)}); err == nil {
			return nil
		}
	}
	candidates := []plumbing.ReferenceName{
		plumbing.NewTagReferenceName(rev),
		plumbing.NewRemoteReferenceName("origin", rev),
		plumbing.NewBranchReferenceName(rev),
	}
	for _, name := range candidates {
		if ref, err := gitRepo.Reference(name, true); err == nil {
			if err := wt.Checkout(&git.CheckoutOptions{Hash: ref.Hash()}); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("could not resolve revision %q", rev)
}

func isValidCommitHash(s string) bool {
	if len(s) != 40 && len(s) != 7 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
