package entity

const (
	NoName  = "No Name"
	NoEmail = "No Email"
)

// Person is one directory match.
type Person struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type SearchResult struct {
	People        []Person `json:"people"`
	NextPageToken string   `json:"next_page_token,omitempty"`
	// Superseded is set when a newer query from the same user replaced this
	// one before its results could be shown.
	Superseded bool `json:"-"`
}
