package vm

import "fmt"

// EventWindow is the host capability the VM is handed for the duration
// of one activation: indexed access to the 41 sites of the local
// neighborhood, site #0 being the origin. Reads from a void site yield
// the Empty atom; writes to a void site silently no-op (spec.md §3).
//
// The window's own site table is fixed: the origin plus five 8-site
// rings arranged at the eight compass directions (N, NE, E, SE, S, SW,
// W, NW) at increasing radius. This gives exactly WindowSiteCount sites
// and, crucially, makes the dihedral symmetry group act simply
// transitively on each ring -- the property spec.md's RandomWalk seed
// scenario (§8.3) exercises: under the full symmetry set, site #1 maps
// uniformly across sites #1..#8.
type EventWindow interface {
	// Get returns the atom at site s, or EmptyAtom if s is void or out
	// of range.
	Get(s int) Atom
	// Set writes the atom at site s. A void or out-of-range site is a
	// silent no-op.
	Set(s int, a Atom)
	// Valid reports whether site s is populated (not void) in this
	// particular window instance. Site 0 is always valid.
	Valid(s int) bool
}

// compassDX, compassDY give the unit direction vector for compass index
// k (0 = N, going clockwise in steps of 45 degrees).
var compassDX = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
var compassDY = [8]int{-1, -1, 0, 1, 1, 1, 0, -1}

// SiteCoord returns the (dx, dy) offset of site s from the origin, for
// diagnostics/rendering; site 0 is (0, 0).
func SiteCoord(s int) (dx, dy int) {
	if s <= 0 || s >= WindowSiteCount {
		return 0, 0
	}
	ring, k := siteRingAndCompass(s)
	return ring * compassDX[k], ring * compassDY[k]
}

func siteRingAndCompass(s int) (ring, k int) {
	idx := s - 1
	return idx/8 + 1, idx % 8
}

func siteFromRingAndCompass(ring, k int) int {
	k = ((k % 8) + 8) % 8
	return 1 + (ring-1)*8 + k
}

// Symmetry is one of the 8 dihedral transforms of the window, named per
// spec.md §3: a rotation (0/90/180/270 degrees, in steps of two compass
// positions) optionally composed with a reflection. It permutes site
// indices with #0 fixed.
type Symmetry struct {
	RotateSteps int // 0, 2, 4, or 6 compass steps (45 degrees each)
	Reflect     bool
}

// Named symmetries, matching the manual's R000L..R270R labels.
var (
	SymR000L = Symmetry{RotateSteps: 0, Reflect: false}
	SymR090L = Symmetry{RotateSteps: 2, Reflect: false}
	SymR180L = Symmetry{RotateSteps: 4, Reflect: false}
	SymR270L = Symmetry{RotateSteps: 6, Reflect: false}
	SymR000R = Symmetry{RotateSteps: 0, Reflect: true}
	SymR090R = Symmetry{RotateSteps: 2, Reflect: true}
	SymR180R = Symmetry{RotateSteps: 4, Reflect: true}
	SymR270R = Symmetry{RotateSteps: 6, Reflect: true}
)

// AllSymmetries lists the 8 elements of the dihedral group, in the order
// named by the manual.
var AllSymmetries = [8]Symmetry{
	SymR000L, SymR090L, SymR180L, SymR270L,
	SymR000R, SymR090R, SymR180R, SymR270R,
}

var symmetryNames = map[Symmetry]string{
	SymR000L: "R000L", SymR090L: "R090L", SymR180L: "R180L", SymR270L: "R270L",
	SymR000R: "R000R", SymR090R: "R090R", SymR180R: "R180R", SymR270R: "R270R",
}

func (s Symmetry) String() string {
	if name, ok := symmetryNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Symmetry(rot=%d,refl=%v)", s.RotateSteps, s.Reflect)
}

// ParseSymmetry resolves a manual symmetry name to its value.
func ParseSymmetry(name string) (Symmetry, bool) {
	for sym, n := range symmetryNames {
		if n == name {
			return sym, true
		}
	}
	return Symmetry{}, false
}

// Permute maps a site index through the symmetry, leaving site 0 fixed.
func (s Symmetry) Permute(site int) int {
	if site <= 0 || site >= WindowSiteCount {
		return site
	}
	ring, k := siteRingAndCompass(site)
	if s.Reflect {
		// Reflect about the axis through the N/NE edge midpoint (an odd
		// offset) rather than through a vertex. A vertex-axis reflection
		// (k -> (8-k)%8) preserves each site's parity, so composed with
		// even-step rotations it only ever maps a cardinal onto another
		// cardinal, never onto a diagonal -- the named group would act
		// as two separate 4-element orbits instead of one 8-element
		// orbit, and spec.md's RandomWalk scenario (symmetry ALL
		// covering all eight neighbors of #1..#8) would not hold.
		k = (1 - k + 8) % 8
	}
	k = (k + s.RotateSteps) % 8
	return siteFromRingAndCompass(ring, k)
}

// SymmetrySet is a non-empty subset of the 8 dihedral transforms: the
// active symmetry the VM addresses the window under. It is stored as a
// bitmask over AllSymmetries' indices.
type SymmetrySet uint8

// SymmetrySetOf builds a set from individual symmetries.
func SymmetrySetOf(syms ...Symmetry) SymmetrySet {
	var s SymmetrySet
	for _, sym := range syms {
		for i, candidate := range AllSymmetries {
			if candidate == sym {
				s |= 1 << uint(i)
			}
		}
	}
	return s
}

// AllSymmetrySet is the aggregate `ALL` symmetry set.
var AllSymmetrySet = SymmetrySetOf(AllSymmetries[:]...)

// DefaultSymmetrySet is the compile-time default when no `.symmetries`
// directive is present: R000L alone.
var DefaultSymmetrySet = SymmetrySetOf(SymR000L)

// Members returns the symmetries present in the set, in canonical order.
func (s SymmetrySet) Members() []Symmetry {
	var out []Symmetry
	for i, sym := range AllSymmetries {
		if s&(1<<uint(i)) != 0 {
			out = append(out, sym)
		}
	}
	return out
}

// IsEmpty reports whether the set has no members; per spec.md §3 a
// symmetry set is always non-empty in a valid program, but the save
// stack can be popped into an "empty" sentinel, which restores the
// default (spec.md §9 Open Question).
func (s SymmetrySet) IsEmpty() bool {
	return s == 0
}

// Sample picks one symmetry uniformly at random from the set, using the
// host RNG. This implements spec.md §9's canonical choice: one sample
// per whole instruction, not per window dereference.
func (s SymmetrySet) Sample(rng RNG) Symmetry {
	members := s.Members()
	if len(members) == 0 {
		return SymR000L
	}
	if len(members) == 1 {
		return members[0]
	}
	return members[rng.Intn(len(members))]
}
