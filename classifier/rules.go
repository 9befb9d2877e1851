package classifier

import (
	"github.com/giygas/interactions-api/entities"
	"github.com/giygas/interactions-api/normalizer"
)

// RuleKind identifies the tier a rule belongs to
type RuleKind int

const (
	KindExactPair RuleKind = iota
	KindClassPair
	KindSingleClass
	KindDefault
)

func (k RuleKind) String() string {
	switch k {
	case KindExactPair:
		return "exact_pair"
	case KindClassPair:
		return "class_pair"
	case KindSingleClass:
		return "single_class"
	case KindDefault:
		return "default"
	}
	return "unknown"
}

var (
	exactPairResult   = entities.Classification{Type: entities.TypeEffect, Severity: entities.SeverityMajor}
	singleClassResult = entities.Classification{Type: entities.TypeAdvice, Severity: entities.SeverityMinor}
	defaultResult     = entities.Classification{Type: entities.TypeEffect, Severity: entities.SeverityModerate}
)

// Rule is one entry of the decision list. The predicate receives the two
// names in matching form and must be symmetric.
type Rule struct {
	Kind    RuleKind
	Name    string
	Result  entities.Classification
	matches func(a, b string) bool
}

// Matches reports whether the rule applies to the pair
func (r Rule) Matches(pair entities.DrugPair) bool {
	return r.matches(pair.First.Match, pair.Second.Match)
}

func newExactPairRule(tokenA, tokenB string) Rule {
	return Rule{
		Kind:   KindExactPair,
		Name:   tokenA + "+" + tokenB,
		Result: exactPairResult,
		matches: func(a, b string) bool {
			return (normalizer.Matches(tokenA, a) && normalizer.Matches(tokenB, b)) ||
				(normalizer.Matches(tokenA, b) && normalizer.Matches(tokenB, a))
		},
	}
}

func newClassPairRule(name string, left, right []string, result entities.Classification) Rule {
	return Rule{
		Kind:   KindClassPair,
		Name:   name,
		Result: result,
		matches: func(a, b string) bool {
			return (normalizer.MatchesAny(left, a) && normalizer.MatchesAny(right, b)) ||
				(normalizer.MatchesAny(left, b) && normalizer.MatchesAny(right, a))
		},
	}
}

func newSingleClassRule(monitored []string) Rule {
	return Rule{
		Kind:   KindSingleClass,
		Name:   "monitored_class",
		Result: singleClassResult,
		matches: func(a, b string) bool {
			return normalizer.MatchesAny(monitored, a) || normalizer.MatchesAny(monitored, b)
		},
	}
}

func newDefaultRule() Rule {
	return Rule{
		Kind:    KindDefault,
		Name:    "default",
		Result:  defaultResult,
		matches: func(string, string) bool { return true },
	}
}
