package entity

// CourseEntry is one course offered to the operator for selection.
type CourseEntry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Href  string `json:"href"`
}
