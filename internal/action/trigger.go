package action

import "github.com/KevinKickass/OpenSenseCore/internal/types"

// Trigger abstracts comparison of an external value against a
// threshold. The external value is always on the left side; the
// threshold on the right.
type Trigger string

const (
	GT  Trigger = "gt"
	LT  Trigger = "lt"
	GTE Trigger = "gte"
	LTE Trigger = "lte"
)

// Exceeded reports whether the external value has crossed the
// threshold in relation to the trigger variant.
func (t Trigger) Exceeded(value, threshold types.Value) bool {
	cmp := value.Compare(threshold)
	switch t {
	case GT:
		return cmp > 0
	case GTE:
		return cmp >= 0
	case LT:
		return cmp < 0
	case LTE:
		return cmp <= 0
	default:
		return false
	}
}

func (t Trigger) String() string {
	switch t {
	case GT:
		return ">"
	case LT:
		return "<"
	case GTE:
		return "≥"
	case LTE:
		return "≤"
	default:
		return string(t)
	}
}
