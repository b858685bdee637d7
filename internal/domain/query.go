package domain

// Criteria selects a single entity. Zero fields are ignored.
type Criteria struct {
	ID       int
	Name     string
	Username string
}

// ByID returns criteria matching id
func ByID(id int) Criteria {
	return Criteria{ID: id}
}

// IsEmpty reports whether no field is set
func (c Criteria) IsEmpty() bool {
	return c.ID == 0 && c.Name == "" && c.Username == ""
}

// Filter narrows a search
type Filter struct {
	// Query matches a substring of the name (and the id, for users)
	Query string
}

// SearchCriteria is the decoded search payload
type SearchCriteria struct {
	Page     int    `mapstructure:"page"`
	PageSize int    `mapstructure:"pageSize"`
	Query    string `mapstructure:"query"`
}

// Page is one page of search results
type Page[T any] struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Items    []T `json:"items"`
}
