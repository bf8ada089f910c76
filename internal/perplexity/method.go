package perplexity

import (
	"fmt"
	"strings"
)

// Method selects how the true-class log-probability is extracted.
type Method int

const (
	// MethodGather indexes predictions[b, t, targets[b, t]] directly.
	MethodGather Method = iota
	// MethodOneHot multiplies predictions by a one-hot encoding of the
	// targets and sums over the vocabulary axis. It costs O(V) per position
	// and requires every prediction to be finite, not only the selected ones.
	MethodOneHot
)

// String returns the method's flag name.
func (m Method) String() string {
	switch m {
	case MethodGather:
		return "gather"
	case MethodOneHot:
		return "onehot"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses a method name as accepted on the command line.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gather", "":
		return MethodGather, nil
	case "onehot", "one-hot":
		return MethodOneHot, nil
	default:
		return 0, fmt.Errorf("unknown method %q (expected gather or onehot)", s)
	}
}
