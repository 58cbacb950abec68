package domain

// ChangeKind classifies a change for display. It does not alter how the
// change is applied.
type ChangeKind string

const (
	KindCreate ChangeKind = "create"
	KindUpdate ChangeKind = "update"
	KindInsert ChangeKind = "insert"
)

// Part is one selectable slice of the SDK integration.
type Part string

const (
	PartBase Part = "base"
	PartPush Part = "push"
	PartPx   Part = "px"
)

// AllParts lists parts in planning order.
var AllParts = []Part{PartBase, PartPush, PartPx}

// ParsePart converts a string into a known Part.
func ParsePart(s string) (Part, error) {
	for _, p := range AllParts {
		if string(p) == s {
			return p, nil
		}
	}
	return "", &UnknownValueError{Kind: "part", Value: s, Err: ErrUnknownPart}
}

// Change is a proposed edit to one file.
//
// A change with a non-empty Patch was derived from a diff between
// OriginalContent and NewContent of the same FilePath. A change with an
// empty Patch is advisory: ManualSnippet tells a human what to do.
type Change struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary"`
	FilePath        string     `json:"filePath"`
	Kind            ChangeKind `json:"kind"`
	Patch           string     `json:"patch"`
	OriginalContent string     `json:"originalContent,omitempty"`
	NewContent      string     `json:"newContent,omitempty"`
	Confidence      float64    `json:"confidence"`
	Module          Part       `json:"module"`
	ManualSnippet   string     `json:"manualSnippet,omitempty"`
}

// IsAdvisory reports whether the change carries no automatic patch.
func (c Change) IsAdvisory() bool { return c.Patch == "" }

// HasFallback reports whether the change can be applied by full-content
// replacement when its patch does not apply.
func (c Change) HasFallback() bool { return c.NewContent != "" }

// Confidence levels assigned by rule modules. Advisory only.
const (
	ConfidenceAdvisory = 0.0
	ConfidenceCreate   = 0.8
	ConfidenceInsert   = 0.9
	ConfidenceUpdate   = 0.95
)

// ApplyResult reports the outcome for one change in an apply batch.
type ApplyResult struct {
	ChangeID string `json:"changeId"`
	Applied  bool   `json:"applied"`
	Message  string `json:"message"`
}

// Apply result messages.
const (
	MsgDryRun      = "Dry run"
	MsgNoPatch     = "No patch available"
	MsgApplied     = "Applied"
	MsgAppliedFull = "Applied full content"
	MsgPatchFailed = "Failed to apply patch."
)

// ApplyOutcome groups results the way the UI reports them.
type ApplyOutcome string

const (
	OutcomeApplied ApplyOutcome = "applied"
	OutcomeSkipped ApplyOutcome = "skipped"
	OutcomeFailed  ApplyOutcome = "failed"
)

// Outcome classifies the result into applied, skipped (no patch or dry run)
// or failed (patch mismatch).
func (r ApplyResult) Outcome() ApplyOutcome {
	switch {
	case r.Applied:
		return OutcomeApplied
	case r.Message == MsgNoPatch || r.Message == MsgDryRun:
		return OutcomeSkipped
	default:
		return OutcomeFailed
	}
}

// ChangeIDs returns the ids of changes in order.
func ChangeIDs(changes []Change) []string {
	ids := make([]string, len(changes))
	for i, c := range changes {
		ids[i] = c.ID
	}
	return ids
}

// SelectChanges keeps the changes whose id is in ids, preserving plan order.
// Every occurrence of a selected id is kept.
func SelectChanges(changes []Change, ids []string) []Change {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []Change
	for _, c := range changes {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
