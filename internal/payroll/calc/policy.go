package calc

import "fmt"

type DuplicatePolicy string

const (
	PolicySkipExisting      DuplicatePolicy = "SKIP_EXISTING"
	PolicyRejectExisting    DuplicatePolicy = "REJECT_EXISTING"
	PolicyOverwriteExisting DuplicatePolicy = "OVERWRITE_EXISTING"

	DefaultDuplicatePolicy = PolicySkipExisting
)

var policyAliases = map[string]DuplicatePolicy{
	"skip":              PolicySkipExisting,
	"skipexisting":      PolicySkipExisting,
	"reject":            PolicyRejectExisting,
	"rejectexisting":    PolicyRejectExisting,
	"overwrite":         PolicyOverwriteExisting,
	"overwriteexisting": PolicyOverwriteExisting,
}

// ParseDuplicatePolicy returns DefaultDuplicatePolicy for an empty value.
func ParseDuplicatePolicy(v string) (DuplicatePolicy, error) {
	key := normalizeKey(v)
	if key == "" {
		return DefaultDuplicatePolicy, nil
	}
	if p, ok := policyAliases[key]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, v)
}

type Decision int

const (
	DecisionCreate Decision = iota
	DecisionSkip
	DecisionReject
	DecisionOverwrite
	// DecisionLocked: overwrite was requested but the existing entry has
	// left PENDING.
	DecisionLocked
)

func (d Decision) String() string {
	switch d {
	case DecisionCreate:
		return "create"
	case DecisionSkip:
		return "skip"
	case DecisionReject:
		return "reject"
	case DecisionOverwrite:
		return "overwrite"
	case DecisionLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// Decide applies p to an (employee, period) pair. exists tells whether an
// entry is already stored and pending whether that entry is still PENDING.
func (p DuplicatePolicy) Decide(exists, pending bool) Decision {
	if !exists {
		return DecisionCreate
	}
	switch p {
	case PolicyOverwriteExisting:
		if pending {
			return DecisionOverwrite
		}
		return DecisionLocked
	case PolicyRejectExisting:
		return DecisionReject
	default:
		return DecisionSkip
	}
}
