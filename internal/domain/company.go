package domain

import "time"

// Company represents an organization in the directory
type Company struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Image     *string   `json:"image,omitempty" db:"image"`
	URL       *string   `json:"url,omitempty" db:"url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// CompanyInput represents input for creating/updating a company
type CompanyInput struct {
	Name  string  `mapstructure:"name"`
	Image *string `mapstructure:"image"`
	URL   *string `mapstructure:"url"`
}

// Apply copies the input onto c
func (in CompanyInput) Apply(c *Company) {
	c.Name = in.Name
	c.Image = in.Image
	c.URL = in.URL
}
