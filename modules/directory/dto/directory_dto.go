package dto

type SearchQuery struct {
	Query string `query:"q"`
}

type PersonResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SearchResponse struct {
	People        []PersonResponse `json:"people"`
	NextPageToken string           `json:"next_page_token,omitempty"`
	Superseded    bool             `json:"superseded"`
}
