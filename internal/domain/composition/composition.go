package composition

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

const amountTolerance = 1e-8

// specialFormulas maps reduced formulas of molecular species to their conventional form.
var specialFormulas = map[string]string{
	"LiO": "LiO2", "NaO": "NaO2", "KO": "KO2", "HO": "H2O2",
	"CsO": "CsO2", "RbO": "RbO2", "O": "O2", "N": "N2",
	"F": "F2", "Cl": "Cl2", "H": "H2",
}

// Composition is an ordered multiset of species amounts.
type Composition struct {
	order   []string
	amounts map[string]float64
}

func newComposition() Composition {
	return Composition{amounts: map[string]float64{}}
}

func (c *Composition) add(symbol string, amount float64) {
	if _, ok := c.amounts[symbol]; !ok {
		c.order = append(c.order, symbol)
	}
	c.amounts[symbol] += amount
}

// Elements returns the species symbols in first-seen order.
func (c Composition) Elements() []string { return slices.Clone(c.order) }

// NumElements returns the number of distinct species.
func (c Composition) NumElements() int { return len(c.order) }

// Amount returns the amount of a species.
func (c Composition) Amount(symbol string) float64 { return c.amounts[symbol] }

// HasDummy reports whether any species is a placeholder.
func (c Composition) HasDummy() bool {
	for _, s := range c.order {
		if IsDummy(s) {
			return true
		}
	}
	return false
}

func (c Composition) scaled(f float64) Composition {
	out := newComposition()
	for _, s := range c.order {
		out.add(s, c.amounts[s]*f)
	}
	return out
}

func (c Composition) allIntegral() bool {
	for _, a := range c.amounts {
		if math.Abs(a-math.Round(a)) > amountTolerance {
			return false
		}
	}
	return true
}

// Reduced divides integral amounts by their greatest common divisor.
// Compositions with fractional amounts are returned unchanged with factor 1.
func (c Composition) Reduced() (Composition, float64) {
	if len(c.order) == 0 || !c.allIntegral() {
		return c.scaled(1), 1
	}
	g := 0
	for _, a := range c.amounts {
		g = gcd(g, int(math.Round(a)))
	}
	if g <= 1 {
		return c.scaled(1), 1
	}
	return c.scaled(1 / float64(g)), float64(g)
}

// IntegerFormula scales fractional amounts to the smallest integral multiple,
// searching denominators up to 100, then reduces the result.
func (c Composition) IntegerFormula() Composition {
	for m := 1; m <= 100; m++ {
		scaled := c.scaled(float64(m))
		if scaled.allIntegralWithin(1e-4) {
			for _, s := range scaled.order {
				scaled.amounts[s] = math.Round(scaled.amounts[s])
			}
			red, _ := scaled.Reduced()
			return red
		}
	}
	return c.scaled(1)
}

func (c Composition) allIntegralWithin(tol float64) bool {
	for _, a := range c.amounts {
		if math.Abs(a-math.Round(a)) > tol {
			return false
		}
	}
	return true
}

// sortedByElectronegativity orders symbols by electronegativity, then atomic number.
func (c Composition) sortedByElectronegativity() []string {
	syms := slices.Clone(c.order)
	slices.SortStableFunc(syms, func(a, b string) int {
		xa, za := species(a)
		xb, zb := species(b)
		switch {
		case xa < xb:
			return -1
		case xa > xb:
			return 1
		default:
			return za - zb
		}
	})
	return syms
}

// Formula renders amounts in electronegativity order without reducing.
func (c Composition) Formula() string {
	var b strings.Builder
	for _, s := range c.sortedByElectronegativity() {
		b.WriteString(s)
		b.WriteString(formatAmount(c.amounts[s]))
	}
	return b.String()
}

// ReducedFormula returns the pretty reduced formula, e.g. Fe2O3 or O2.
func (c Composition) ReducedFormula() string {
	red, _ := c.Reduced()
	f := red.Formula()
	if special, ok := specialFormulas[f]; ok {
		return special
	}
	return f
}

// AnonymizedFormula labels reduced amounts A, B, C in ascending order, e.g. A2B3.
func (c Composition) AnonymizedFormula() string {
	red, _ := c.Reduced()
	amts := make([]float64, 0, len(red.order))
	for _, s := range red.order {
		amts = append(amts, red.amounts[s])
	}
	slices.Sort(amts)

	var b strings.Builder
	for i, a := range amts {
		b.WriteString(anonLabel(i))
		b.WriteString(formatAmount(a))
	}
	return b.String()
}

func anonLabel(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return string(rune('A'+i/26-1)) + string(rune('a'+i%26))
}

// Chemsys returns the sorted species joined by "-", e.g. Fe-O.
func (c Composition) Chemsys() string {
	syms := slices.Clone(c.order)
	slices.Sort(syms)
	return strings.Join(syms, "-")
}

// String implements fmt.Stringer.
func (c Composition) String() string { return c.Formula() }

func formatAmount(a float64) string {
	if math.Abs(a-1) < amountTolerance {
		return ""
	}
	if math.Abs(a-math.Round(a)) < amountTolerance {
		return strconv.Itoa(int(math.Round(a)))
	}
	return strconv.FormatFloat(math.Round(a*1e8)/1e8, 'f', -1, 64)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// Parse reads a chemical formula such as "Fe2O3", "Ca(OH)2", "Li0.5CoO2" or "A2B3".
// Unknown symbols and unbalanced groups fail with domain.ErrInvalidFormula.
func Parse(formula string) (Composition, error) {
	s := strings.Join(strings.Fields(formula), "")
	if s == "" {
		return Composition{}, fmt.Errorf("%w: empty formula", domain.ErrInvalidFormula)
	}
	p := &parser{src: s}
	comp, err := p.group(0)
	if err != nil {
		return Composition{}, fmt.Errorf("%w: %q: %v", domain.ErrInvalidFormula, formula, err)
	}
	if p.pos != len(p.src) {
		return Composition{}, fmt.Errorf("%w: %q: unexpected %q at position %d",
			domain.ErrInvalidFormula, formula, p.src[p.pos], p.pos)
	}
	for _, sym := range comp.order {
		if comp.amounts[sym] <= 0 {
			return Composition{}, fmt.Errorf("%w: %q: non-positive amount for %s",
				domain.ErrInvalidFormula, formula, sym)
		}
	}
	return comp, nil
}

type parser struct {
	src string
	pos int
}

func closerFor(open byte) byte {
	if open == '[' {
		return ']'
	}
	return ')'
}

func (p *parser) group(closer byte) (Composition, error) {
	comp := newComposition()
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		switch {
		case ch == closer && closer != 0:
			return comp, nil
		case ch == '(' || ch == '[':
			p.pos++
			inner, err := p.group(closerFor(ch))
			if err != nil {
				return Composition{}, err
			}
			if p.pos >= len(p.src) || p.src[p.pos] != closerFor(ch) {
				return Composition{}, fmt.Errorf("unbalanced %q", ch)
			}
			p.pos++
			mult := p.number()
			for _, s := range inner.order {
				comp.add(s, inner.amounts[s]*mult)
			}
		case ch >= 'A' && ch <= 'Z':
			start := p.pos
			p.pos++
			for p.pos < len(p.src) && p.src[p.pos] >= 'a' && p.src[p.pos] <= 'z' {
				p.pos++
			}
			sym := p.src[start:p.pos]
			if !IsElement(sym) && !IsDummy(sym) {
				return Composition{}, fmt.Errorf("unknown element %q", sym)
			}
			comp.add(sym, p.number())
		case ch == ')' || ch == ']':
			return Composition{}, fmt.Errorf("unbalanced %q", ch)
		default:
			return Composition{}, fmt.Errorf("unexpected %q at position %d", ch, p.pos)
		}
	}
	if closer != 0 {
		return Composition{}, fmt.Errorf("missing %q", closer)
	}
	if len(comp.order) == 0 {
		return Composition{}, fmt.Errorf("no species")
	}
	return comp, nil
}

// number reads an optional amount and defaults to 1.
func (p *parser) number() float64 {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	if start == p.pos {
		return 1
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		p.pos = start
		return 1
	}
	return v
}
