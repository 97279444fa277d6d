package domain

// Label is the computed attendance classification for a given day.
type Label string

const (
	LabelPresent     Label = "present"
	LabelLate        Label = "late"
	LabelAbsent      Label = "absent"
	LabelLeave       Label = "leave"
	LabelWFH         Label = "wfh"
	LabelWorksite    Label = "worksite"
	LabelProspective Label = "prospective"
	LabelInactive    Label = "inactive"
	LabelUnattended  Label = "unattended"

	// Checkout labels. The auto variant marks the scheduled non-voluntary
	// checkout appended by the evening trigger.
	LabelCheckedOut     Label = "checked_out"
	LabelCheckedOutAuto Label = "checked_out_auto"
)

// Category groups fine-grained labels for filtering and dashboards. It
// replaces the string-prefix matching convention with an explicit mapping.
type Category string

const (
	CategoryUnattended Category = "unattended"
	CategoryPresent    Category = "present"
	CategoryLate       Category = "late"
	CategoryAbsent     Category = "absent"
	CategoryLeave      Category = "leave"
	CategoryCheckedOut Category = "checked_out"
	CategoryOffsite    Category = "offsite"
	CategoryInactive   Category = "inactive"
)

var categoryByLabel = map[Label]Category{
	LabelPresent:        CategoryPresent,
	LabelLate:           CategoryLate,
	LabelAbsent:         CategoryAbsent,
	LabelLeave:          CategoryLeave,
	LabelWFH:            CategoryOffsite,
	LabelWorksite:       CategoryOffsite,
	LabelProspective:    CategoryInactive,
	LabelInactive:       CategoryInactive,
	LabelUnattended:     CategoryUnattended,
	LabelCheckedOut:     CategoryCheckedOut,
	LabelCheckedOutAuto: CategoryCheckedOut,
}

// CategoryOf maps a label to its category. Unknown labels (legacy or
// manually entered) fall back to CategoryUnattended so they surface on
// dashboards instead of disappearing.
func CategoryOf(label Label) Category {
	if c, ok := categoryByLabel[label]; ok {
		return c
	}
	return CategoryUnattended
}

// KnownLabel reports whether the label is one the system produces.
func KnownLabel(l Label) bool {
	_, ok := categoryByLabel[l]
	return ok
}

// CheckedIn reports whether the label represents a checked-in, not yet
// checked-out state. These are the states the auto-checkout trigger closes.
func (l Label) CheckedIn() bool {
	switch CategoryOf(l) {
	case CategoryPresent, CategoryLate, CategoryOffsite:
		return true
	}
	return false
}

// Filter selects snapshot rows by status category. The zero value and
// FilterAll pass everything through.
type Filter string

const FilterAll Filter = "all"

// ParseFilter validates a filter string. Empty means all.
func ParseFilter(s string) (Filter, bool) {
	switch Category(s) {
	case CategoryUnattended, CategoryPresent, CategoryLate, CategoryAbsent,
		CategoryLeave, CategoryCheckedOut, CategoryOffsite, CategoryInactive:
		return Filter(s), true
	}
	if s == "" || s == string(FilterAll) {
		return FilterAll, true
	}
	return FilterAll, false
}

// Matches reports whether a label passes the filter.
func (f Filter) Matches(label Label) bool {
	if f == "" || f == FilterAll {
		return true
	}
	return CategoryOf(label) == Category(f)
}
