package domain

// User is an account that can sell articles and place bids. The auction core
// only needs to resolve it by id; the full profile lives here for the web
// layer.
type User struct {
	ID       int
	Username string
	Email    string
	Credit   int
	IsAdmin  bool
}
