package wizard_models

// Step is the 1-based wizard position.
type Step int

const (
	StepTypeSelection Step = 1
	StepUserInfo      Step = 2
	StepComposition   Step = 3
)

// WizardMode selects the step layout. Live mode merges user info and
// composition into step 2 and regenerates the draft on every change.
type WizardMode string

const (
	WizardModeClassic WizardMode = "classic"
	WizardModeLive    WizardMode = "live"
)

func (m WizardMode) IsValid() bool {
	return m == WizardModeClassic || m == WizardModeLive
}

// MaxStep is the last step before submission.
func (m WizardMode) MaxStep() Step {
	if m == WizardModeLive {
		return 2
	}
	return 3
}

type Stage string

const (
	StageTypeSelection Stage = "type_selection"
	StageUserInfo      Stage = "user_info"
	StageComposition   Stage = "composition"
	StageSubmitted     Stage = "submitted"
)

// RegenerationPolicy decides what live regeneration does after a manual edit.
type RegenerationPolicy string

const (
	RegenerationPreserveEdits RegenerationPolicy = "preserve_edits"
	RegenerationOverwrite     RegenerationPolicy = "overwrite"
)

func (p RegenerationPolicy) IsValid() bool {
	return p == RegenerationPreserveEdits || p == RegenerationOverwrite
}
