// Package rules implements the threshold rule evaluator: mapping a resolved
// scalar to a display color via a data source's ordered color rules.
package rules

import (
	"sort"

	"polyshade/internal/types"
)

// Distinguished color tokens. ColorNoData marks a polygon whose series has no
// resolvable value for the current selection; ColorDefault marks a present
// value that no rule matched. Both are distinct from each other and, by
// convention, from any rule color.
const (
	ColorNoData  = "#9e9e9e"
	ColorDefault = "#3388ff"
)

// ColorFor maps a value to a display color. When present is false it returns
// ColorNoData. Otherwise rules are evaluated in ascending threshold order
// (stable: ties keep their original relative order) and the color of the
// first rule whose comparison passes is returned; ColorDefault if none pass.
//
// Precedence is deliberately "first ascending match wins", not "tightest
// match": with rules >=10 and >=25 and a value of 30, the >=10 rule's color
// is returned. ColorFor is a pure function: the input slice is not mutated
// and the result is identical for any ordering of the same rule set.
func ColorFor(value float64, present bool, ruleSet []types.ColorRule) string {
	if !present {
		return ColorNoData
	}

	ordered := make([]types.ColorRule, len(ruleSet))
	copy(ordered, ruleSet)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Threshold < ordered[j].Threshold
	})

	for _, rule := range ordered {
		if matches(value, rule) {
			return rule.Color
		}
	}
	return ColorDefault
}

// matches applies a single rule's comparison to the value.
func matches(value float64, rule types.ColorRule) bool {
	switch rule.Operator {
	case types.OpEqual:
		return value == rule.Threshold
	case types.OpLessThan:
		return value < rule.Threshold
	case types.OpGreaterThan:
		return value > rule.Threshold
	case types.OpLessThanEq:
		return value <= rule.Threshold
	case types.OpGreaterThanEq:
		return value >= rule.Threshold
	default:
		return false
	}
}
