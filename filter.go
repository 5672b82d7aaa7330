package collide

// Filter is a collision filter bitset: a group names what an object is and a
// mask names what it may touch.
type Filter uint16

const (
	FilterTrigger Filter = 1 << 7
	FilterDynamic Filter = 1 << 8
	FilterStatic  Filter = 1 << 9
	FilterAll     Filter = 0xFFFF
)

func (f Filter) Has(o Filter) bool { return f&o != 0 }

// Accepts is the bidirectional filter test.
func Accepts(groupA, maskA, groupB, maskB Filter) bool {
	return groupA&maskB != 0 && groupB&maskA != 0
}

// Category is one of the three mutually exclusive registrations.
type Category uint8

const (
	CategoryDynamic Category = iota
	CategoryStatic
	CategoryTrigger
)

func (c Category) String() string {
	switch c {
	case CategoryDynamic:
		return "dynamic"
	case CategoryStatic:
		return "static"
	case CategoryTrigger:
		return "trigger"
	}
	return "unknown"
}

// Group is the membership bit.
func (c Category) Group() Filter {
	switch c {
	case CategoryStatic:
		return FilterStatic
	case CategoryTrigger:
		return FilterTrigger
	}
	return FilterDynamic
}

// Mask is the set of groups this category is tested against.
func (c Category) Mask() Filter {
	if c == CategoryDynamic {
		return FilterStatic | FilterDynamic | FilterTrigger
	}
	return FilterDynamic
}
