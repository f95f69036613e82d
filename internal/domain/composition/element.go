// Package composition parses chemical formulas and derives the normalized
// forms stored on material documents: reduced, anonymized and chemical system.
package composition

import "math"

// Element is a periodic table entry.
// X is the Pauling electronegativity, +Inf when undefined.
type Element struct {
	Symbol string
	Z      int
	X      float64
}

// Dummies are the placeholder species letters allowed in anonymous formulas.
const Dummies = "ADEGJLMQRXZ"

var none = math.Inf(1)

var periodicTable = []Element{
	{"H", 1, 2.20}, {"He", 2, none}, {"Li", 3, 0.98}, {"Be", 4, 1.57}, {"B", 5, 2.04},
	{"C", 6, 2.55}, {"N", 7, 3.04}, {"O", 8, 3.44}, {"F", 9, 3.98}, {"Ne", 10, none},
	{"Na", 11, 0.93}, {"Mg", 12, 1.31}, {"Al", 13, 1.61}, {"Si", 14, 1.90}, {"P", 15, 2.19},
	{"S", 16, 2.58}, {"Cl", 17, 3.16}, {"Ar", 18, none}, {"K", 19, 0.82}, {"Ca", 20, 1.00},
	{"Sc", 21, 1.36}, {"Ti", 22, 1.54}, {"V", 23, 1.63}, {"Cr", 24, 1.66}, {"Mn", 25, 1.55},
	{"Fe", 26, 1.83}, {"Co", 27, 1.88}, {"Ni", 28, 1.91}, {"Cu", 29, 1.90}, {"Zn", 30, 1.65},
	{"Ga", 31, 1.81}, {"Ge", 32, 2.01}, {"As", 33, 2.18}, {"Se", 34, 2.55}, {"Br", 35, 2.96},
	{"Kr", 36, 3.00}, {"Rb", 37, 0.82}, {"Sr", 38, 0.95}, {"Y", 39, 1.22}, {"Zr", 40, 1.33},
	{"Nb", 41, 1.6}, {"Mo", 42, 2.16}, {"Tc", 43, 1.9}, {"Ru", 44, 2.2}, {"Rh", 45, 2.28},
	{"Pd", 46, 2.20}, {"Ag", 47, 1.93}, {"Cd", 48, 1.69}, {"In", 49, 1.78}, {"Sn", 50, 1.96},
	{"Sb", 51, 2.05}, {"Te", 52, 2.1}, {"I", 53, 2.66}, {"Xe", 54, 2.60}, {"Cs", 55, 0.79},
	{"Ba", 56, 0.89}, {"La", 57, 1.10}, {"Ce", 58, 1.12}, {"Pr", 59, 1.13}, {"Nd", 60, 1.14},
	{"Pm", 61, 1.13}, {"Sm", 62, 1.17}, {"Eu", 63, 1.2}, {"Gd", 64, 1.2}, {"Tb", 65, 1.1},
	{"Dy", 66, 1.22}, {"Ho", 67, 1.23}, {"Er", 68, 1.24}, {"Tm", 69, 1.25}, {"Yb", 70, 1.1},
	{"Lu", 71, 1.27}, {"Hf", 72, 1.3}, {"Ta", 73, 1.5}, {"W", 74, 2.36}, {"Re", 75, 1.9},
	{"Os", 76, 2.2}, {"Ir", 77, 2.20}, {"Pt", 78, 2.28}, {"Au", 79, 2.54}, {"Hg", 80, 2.00},
	{"Tl", 81, 1.62}, {"Pb", 82, 2.33}, {"Bi", 83, 2.02}, {"Po", 84, 2.0}, {"At", 85, 2.2},
	{"Rn", 86, 2.2}, {"Fr", 87, 0.7}, {"Ra", 88, 0.9}, {"Ac", 89, 1.1}, {"Th", 90, 1.3},
	{"Pa", 91, 1.5}, {"U", 92, 1.38}, {"Np", 93, 1.36}, {"Pu", 94, 1.28}, {"Am", 95, 1.13},
	{"Cm", 96, 1.28}, {"Bk", 97, 1.3}, {"Cf", 98, 1.3}, {"Es", 99, 1.3}, {"Fm", 100, 1.3},
	{"Md", 101, 1.3}, {"No", 102, 1.3}, {"Lr", 103, none}, {"Rf", 104, none}, {"Db", 105, none},
	{"Sg", 106, none}, {"Bh", 107, none}, {"Hs", 108, none}, {"Mt", 109, none}, {"Ds", 110, none},
	{"Rg", 111, none}, {"Cn", 112, none}, {"Nh", 113, none}, {"Fl", 114, none}, {"Mc", 115, none},
	{"Lv", 116, none}, {"Ts", 117, none}, {"Og", 118, none},
}

var bySymbol = func() map[string]Element {
	m := make(map[string]Element, len(periodicTable))
	for _, e := range periodicTable {
		m[e.Symbol] = e
	}
	return m
}()

// Lookup returns the element for a symbol.
func Lookup(symbol string) (Element, bool) {
	e, ok := bySymbol[symbol]
	return e, ok
}

// IsElement reports whether symbol names a real element.
func IsElement(symbol string) bool {
	_, ok := bySymbol[symbol]
	return ok
}

// IsDummy reports whether symbol is a single-letter placeholder species.
func IsDummy(symbol string) bool {
	return len(symbol) == 1 && !IsElement(symbol) && containsByte(Dummies, symbol[0])
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

// species returns sort attributes for a symbol. Dummies sort after every real element.
func species(symbol string) (x float64, z int) {
	if e, ok := bySymbol[symbol]; ok {
		return e.X, e.Z
	}
	return math.Inf(1), 1000 + int(symbol[0])
}
