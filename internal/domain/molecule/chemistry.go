package molecule

// Block is the periodic-table block of an element.
type Block int

const (
	BlockNone Block = iota
	BlockS
	BlockP
	BlockD
	BlockF
)

func (b Block) String() string {
	switch b {
	case BlockS:
		return "s"
	case BlockP:
		return "p"
	case BlockD:
		return "d"
	case BlockF:
		return "f"
	default:
		return "none"
	}
}

var elementSymbols = []string{
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf",
	"Es", "Fm", "Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds",
	"Rg", "Cn", "Nh", "Fl", "Mc", "Lv", "Ts", "Og",
}

// periodEnds holds the atomic number closing each period.
var periodEnds = []int{2, 10, 18, 36, 54, 86, 118}

// defaultValences lists the allowed neutral valences, lowest first, for
// elements that receive implicit hydrogens.
var defaultValences = map[string][]int{
	"H":  {1},
	"B":  {3},
	"C":  {4},
	"N":  {3},
	"O":  {2},
	"F":  {1},
	"Al": {3},
	"Si": {4},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"Cl": {1},
	"Ge": {4},
	"As": {3, 5},
	"Se": {2, 4, 6},
	"Br": {1},
	"Sb": {3, 5},
	"Te": {2, 4, 6},
	"I":  {1},
}

// ElementInfo describes the periodic-table placement of an element symbol.
type ElementInfo struct {
	Symbol       string
	AtomicNumber int
	Group        int // 1-18, 0 for f-block and pseudo-elements
	Period       int
	Block        Block
}

var elementIndex = buildElementIndex()

func buildElementIndex() map[string]ElementInfo {
	idx := make(map[string]ElementInfo, len(elementSymbols))
	for i, sym := range elementSymbols {
		z := i + 1
		period, pos := 0, 0
		start := 0
		for p, end := range periodEnds {
			if z <= end {
				period = p + 1
				pos = z - start
				break
			}
			start = end
		}
		info := ElementInfo{Symbol: sym, AtomicNumber: z, Period: period}
		switch {
		case period == 1:
			info.Block = BlockS
			info.Group = 1
			if z == 2 {
				info.Group = 18
			}
		case period <= 3:
			if pos <= 2 {
				info.Block, info.Group = BlockS, pos
			} else {
				info.Block, info.Group = BlockP, pos+10
			}
		case period <= 5:
			switch {
			case pos <= 2:
				info.Block, info.Group = BlockS, pos
			case pos <= 12:
				info.Block, info.Group = BlockD, pos
			default:
				info.Block, info.Group = BlockP, pos
			}
		default:
			switch {
			case pos <= 2:
				info.Block, info.Group = BlockS, pos
			case pos <= 16:
				info.Block = BlockF
			case pos <= 26:
				info.Block, info.Group = BlockD, pos-14
			default:
				info.Block, info.Group = BlockP, pos-14
			}
		}
		idx[sym] = info
	}
	return idx
}

// LookupElement returns the table entry for sym. Pseudo-elements such as
// R-group labels, aliases and query atoms are not found.
func LookupElement(sym string) (ElementInfo, bool) {
	info, ok := elementIndex[sym]
	return info, ok
}

// ElementBlock returns the block of sym, or BlockNone for unknown symbols.
func ElementBlock(sym string) Block {
	return elementIndex[sym].Block
}

// ValenceElectrons returns the number of valence electrons of a main-group
// element, or 0 when the element is not s- or p-block.
func ValenceElectrons(sym string) int {
	info, ok := elementIndex[sym]
	if !ok {
		return 0
	}
	switch info.Block {
	case BlockS:
		if info.Group == 18 {
			return 2
		}
		return info.Group
	case BlockP:
		return info.Group - 10
	default:
		return 0
	}
}

// implicitHydrogens computes the implicit hydrogen count of an atom from the
// default valence table. Elements outside the table never carry implicit H.
func implicitHydrogens(sym string, charge, unpaired, bondOrderSum int) int {
	valences, ok := defaultValences[sym]
	if !ok {
		return 0
	}
	group := elementIndex[sym].Group
	used := bondOrderSum + unpaired
	for _, v := range valences {
		switch {
		case group == 13:
			v -= charge
		case group >= 15:
			v += charge
		default:
			v -= abs(charge)
		}
		if v >= used {
			return v - used
		}
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

//Personal.AI order the ending
