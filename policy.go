package mscopy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/mscopy/internal/kernel"
)

// PolicyMode selects how a group of source samples is reduced when the
// destination has fewer samples than the source.
type PolicyMode uint32

// Reduction modes. The numeric values are shared with the GPU shader.
const (
	// ReduceMin keeps the smallest raw value of each group.
	ReduceMin PolicyMode = iota

	// ReduceMax keeps the largest raw value of each group.
	ReduceMax

	// ReduceSelect keeps one fixed sample of each group.
	ReduceSelect
)

// String returns the mode name.
func (m PolicyMode) String() string {
	switch m {
	case ReduceMin:
		return "min"
	case ReduceMax:
		return "max"
	case ReduceSelect:
		return "select"
	default:
		return fmt.Sprintf("PolicyMode(%d)", uint32(m))
	}
}

// Policy is a downsample reduction policy.
//
// Whether min, max or a single sample is right depends on the consumer's
// depth convention; it is left to the caller. Passthrough and upsample
// copies ignore the policy.
type Policy struct {
	Mode PolicyMode

	// Sample is the index within each reduction group kept by
	// ReduceSelect. Out-of-range indices clamp to the group.
	Sample int
}

// Predefined policies.
var (
	PolicyMin = Policy{Mode: ReduceMin}
	PolicyMax = Policy{Mode: ReduceMax}
)

// SelectSample returns a policy keeping sample i of every reduction group.
func SelectSample(i int) Policy {
	return Policy{Mode: ReduceSelect, Sample: i}
}

// ConservativePolicy returns the policy that keeps the depth nearest to the
// camera: PolicyMin for a standard depth range, PolicyMax for reversed Z.
func ConservativePolicy(reversedZ bool) Policy {
	if reversedZ {
		return PolicyMax
	}
	return PolicyMin
}

// String returns "min", "max" or "select:N".
func (p Policy) String() string {
	if p.Mode == ReduceSelect {
		return "select:" + strconv.Itoa(p.Sample)
	}
	return p.Mode.String()
}

// ParsePolicy parses the output of Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch name, arg, hasArg := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":"); name {
	case "min":
		if !hasArg {
			return PolicyMin, nil
		}
	case "max":
		if !hasArg {
			return PolicyMax, nil
		}
	case "select":
		if !hasArg {
			return SelectSample(0), nil
		}
		i, err := strconv.Atoi(arg)
		if err != nil || i < 0 {
			return Policy{}, fmt.Errorf("mscopy: invalid select index %q", arg)
		}
		return SelectSample(i), nil
	}
	return Policy{}, fmt.Errorf("mscopy: unknown reduction policy %q", s)
}

// reducer returns the kernel fold for the policy.
func (p Policy) reducer() kernel.Reducer {
	switch p.Mode {
	case ReduceMax:
		return kernel.Max
	case ReduceSelect:
		return kernel.Select(p.Sample)
	default:
		return kernel.Min
	}
}
