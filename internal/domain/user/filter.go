package user

// NameGrade is the decoded "<name>_<grade>" path segment.
type NameGrade struct {
	Name  string
	Grade uint8
}

// Filters holds the optional query-string filters. Both fields are set
// together; a request carries either a complete Filters or none.
type Filters struct {
	Age    uint8
	Active bool
}

// SearchFilter is the full search criteria for a collection lookup.
// A nil Filters means only the name/grade predicate applies.
type SearchFilter struct {
	NameGrade
	Filters *Filters
}

// NewSearchFilter builds the criteria for one request. The filters value is
// copied so later mutation by the caller cannot leak into the search.
func NewSearchFilter(ng NameGrade, f *Filters) SearchFilter {
	sf := SearchFilter{NameGrade: ng}
	if f != nil {
		cp := *f
		sf.Filters = &cp
	}
	return sf
}

// HasFilters reports whether the age/active predicate applies.
func (f SearchFilter) HasFilters() bool {
	return f.Filters != nil
}
