package composition

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// RatioTolerance is the relative band applied to known element amounts
// when a formula contains wildcards.
const RatioTolerance = 0.01

// FormulaToCriteria translates a formula, chemical system or anonymous formula
// into store criteria.
//
//	"Cr2O3"  -> {"formula_pretty": "Cr2O3"}
//	"Cr2*3"  -> {"formula_anonymous": "A2B3", "composition_reduced.Cr": {"$gte": 1.98, "$lte": 2.02}}
//	"A2B3"   -> {"formula_anonymous": "A2B3"}
//	"Si-O"   -> {"chemsys": "O-Si"}
//	"Si-*"   -> {"elements": {"$all": ["Si"]}, "nelements": 2}
func FormulaToCriteria(formula string) (domain.Criteria, error) {
	formula = strings.TrimSpace(formula)
	if formula == "" {
		return nil, fmt.Errorf("%w: empty formula", domain.ErrInvalidFormula)
	}

	if strings.Contains(formula, "-") {
		return chemsysCriteria(formula)
	}

	if strings.Contains(formula, "*") {
		return wildcardCriteria(formula)
	}

	comp, err := Parse(formula)
	if err != nil {
		return nil, err
	}
	if comp.HasDummy() {
		return domain.Criteria{"formula_anonymous": comp.IntegerFormula().AnonymizedFormula()}, nil
	}
	return domain.Criteria{"formula_pretty": comp.IntegerFormula().ReducedFormula()}, nil
}

func wildcardCriteria(formula string) (domain.Criteria, error) {
	nstars := strings.Count(formula, "*")
	if nstars > len(Dummies) {
		return nil, fmt.Errorf("%w: %q: at most %d wildcards are supported",
			domain.ErrInvalidFormula, formula, len(Dummies))
	}

	var b strings.Builder
	next := 0
	for _, r := range formula {
		if r == '*' {
			b.WriteByte(Dummies[next])
			next++
			continue
		}
		b.WriteRune(r)
	}

	comp, err := Parse(b.String())
	if err != nil {
		return nil, err
	}
	red := comp.IntegerFormula()

	crit := domain.Criteria{"formula_anonymous": red.AnonymizedFormula()}
	for _, sym := range red.Elements() {
		if IsDummy(sym) {
			continue
		}
		n := red.Amount(sym)
		crit["composition_reduced."+sym] = map[string]any{
			"$gte": n * (1 - RatioTolerance),
			"$lte": n * (1 + RatioTolerance),
		}
	}
	return crit, nil
}

func chemsysCriteria(chemsys string) (domain.Criteria, error) {
	parts := strings.Split(chemsys, "-")
	known := make([]string, 0, len(parts))
	wild := false
	for _, p := range parts {
		p = strings.TrimSpace(p)
		switch {
		case p == "*":
			wild = true
		case IsElement(p):
			known = append(known, p)
		default:
			return nil, fmt.Errorf("%w: %q: unknown element %q in chemical system",
				domain.ErrInvalidFormula, chemsys, p)
		}
	}

	if !wild {
		slices.Sort(known)
		return domain.Criteria{"chemsys": strings.Join(known, "-")}, nil
	}

	crit := domain.Criteria{"nelements": len(parts)}
	if len(known) > 0 {
		crit["elements"] = map[string]any{"$all": known}
	}
	return crit, nil
}

// ChemsysToCriteria translates a comma-separated list of chemical systems.
// A single system behaves like FormulaToCriteria; several plain systems become
// a $in match and any wildcard in the list turns the result into an $or.
func ChemsysToCriteria(list string) (domain.Criteria, error) {
	var systems []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			systems = append(systems, s)
		}
	}
	if len(systems) == 0 {
		return nil, fmt.Errorf("%w: empty chemical system", domain.ErrInvalidFormula)
	}

	crits := make([]domain.Criteria, 0, len(systems))
	plain := make([]string, 0, len(systems))
	wild := false
	for _, s := range systems {
		c, err := chemsysCriteria(s)
		if err != nil {
			return nil, err
		}
		crits = append(crits, c)
		if cs, ok := c["chemsys"].(string); ok {
			plain = append(plain, cs)
		} else {
			wild = true
		}
	}

	if len(crits) == 1 {
		return crits[0], nil
	}
	if !wild {
		return domain.Criteria{"chemsys": map[string]any{"$in": plain}}, nil
	}
	or := make([]map[string]any, 0, len(crits))
	for _, c := range crits {
		or = append(or, map[string]any(c))
	}
	return domain.Criteria{"$or": or}, nil
}

// ReducedFormula parses a formula and returns its pretty reduced form.
func ReducedFormula(formula string) (string, error) {
	comp, err := Parse(formula)
	if err != nil {
		return "", err
	}
	return comp.IntegerFormula().ReducedFormula(), nil
}
