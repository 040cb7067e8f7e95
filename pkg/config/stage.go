package config

// Stage is the git hook point (or "manual") a run targets.
type Stage string

const (
	StagePreCommit        Stage = "pre-commit"
	StagePreMergeCommit   Stage = "pre-merge-commit"
	StagePrePush          Stage = "pre-push"
	StagePreRebase        Stage = "pre-rebase"
	StageCommitMsg        Stage = "commit-msg"
	StagePrepareCommitMsg Stage = "prepare-commit-msg"
	StagePostCheckout     Stage = "post-checkout"
	StagePostCommit       Stage = "post-commit"
	StagePostMerge        Stage = "post-merge"
	StagePostRewrite      Stage = "post-rewrite"
	StageManual           Stage = "manual"
)

// AllStages is the closed enumeration of stages, in no particular order.
var AllStages = []Stage{
	StagePreCommit, StagePreMergeCommit, StagePrePush, StagePreRebase,
	StageCommitMsg, StagePrepareCommitMsg, StagePostCheckout, StagePostCommit,
	StagePostMerge, StagePostRewrite, StageManual,
}

// fileOperatingStages is the subset of stages that select files.
var fileOperatingStages = map[Stage]bool{
	StagePreCommit:        true,
	StagePreMergeCommit:   true,
	StagePrePush:          true,
	StagePrepareCommitMsg: true,
	StageCommitMsg:        true,
	StageManual:           true,
}

// OperatesOnFiles reports whether this stage's hooks receive a file list.
func (s Stage) OperatesOnFiles() bool {
	return fileOperatingStages[s]
}

// IsValid reports whether s is a member of the closed stage enumeration.
func (s Stage) IsValid() bool {
	for _, v := range AllStages {
		if v == s {
			return true
		}
	}
	return false
}

// NormalizeStages treats an empty or full-set stage list as "all stages".
// Returns the set to store on the built Hook.
func NormalizeStages(raw []string) ([]Stage, error) {
	if len(raw) == 0 {
		return nil, nil // nil means "all" to hookdef.Hook.RunsOnStage
	}
	seen := make(map[Stage]bool, len(raw))
	out := make([]Stage, 0, len(raw))
	for _, r := range raw {
		s := Stage(r)
		if !s.IsValid() {
			return nil, &UnknownStageError{Stage: r}
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) == len(AllStages) {
		return nil, nil
	}
	return out, nil
}

// UnknownStageError reports a stage name outside the closed enumeration.
type UnknownStageError struct{ Stage string }

func (e *UnknownStageError) Error() string {
	return "unknown stage: " + e.Stage
}
