package model

// Column is one workflow stage of a board. Columns are rendered in the order
// they were added, so there is no position field.
type Column struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
	Color string `json:"color" yaml:"color"`
}

// DefaultColumnColor is used for columns added without an explicit color.
const DefaultColumnColor = "#e0e0e0"
