package session

import "github.com/fakeyudi/gitsim/internal/vcs"

// Predicate is a read-only check against a state, used to verify lesson
// tasks. Predicates must not modify the state.
type Predicate func(*State) bool

// HasCommitCount is satisfied once the repository holds at least n commits.
func HasCommitCount(n int) Predicate {
	return func(s *State) bool { return s.Repo.Graph.Len() >= n }
}

// RepoInitialized is satisfied once git init has run.
func RepoInitialized() Predicate {
	return func(s *State) bool { return s.Repo.Initialized }
}

// OnBranch is satisfied when HEAD is attached to name.
func OnBranch(name string) Predicate {
	return func(s *State) bool { return s.Repo.CurrentBranch() == name }
}

// BranchExists is satisfied when a local branch called name exists.
func BranchExists(name string) Predicate {
	return func(s *State) bool {
		_, ok := s.Repo.Branches[name]
		return ok
	}
}

// FileExists is satisfied when path exists; relative paths are taken from
// the user's home directory.
func FileExists(path string) Predicate {
	return func(s *State) bool { return s.FS.Exists(s.FS.Home(), path) }
}

// Staged is satisfied when path (relative to the repository root) is in the
// index.
func Staged(path string) Predicate {
	return func(s *State) bool {
		_, ok := s.Repo.Index[path]
		return ok
	}
}

// IsClean is satisfied when nothing is staged, modified or untracked.
func IsClean() Predicate {
	return func(s *State) bool {
		if !s.Repo.Initialized || len(s.Repo.Index) > 0 {
			return false
		}
		wt, err := s.Worktree()
		if err != nil {
			return false
		}
		return vcs.ComputeChanges(s.Repo, wt).IsEmpty() && len(vcs.Untracked(s.Repo, wt)) == 0
	}
}

// HasMergeCommit is satisfied when HEAD is a merge commit.
func HasMergeCommit() Predicate {
	return func(s *State) bool {
		c, ok := s.Repo.HeadCommit()
		return ok && c.IsMerge()
	}
}

// PushedTo is satisfied when remote's copy of branch matches the local one.
func PushedTo(remote, branch string) Predicate {
	return func(s *State) bool {
		rm, ok := s.Repo.Remotes[remote]
		local := s.Repo.Branches[branch]
		return ok && local != "" && rm.Branches[branch] == local
	}
}

// All combines predicates; it is satisfied when every one is.
func All(preds ...Predicate) Predicate {
	return func(s *State) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}
