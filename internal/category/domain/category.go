package domain

// Category classifies articles for the filtered listings.
type Category struct {
	ID    int
	Label string
}
