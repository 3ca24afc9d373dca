package unsplash

import (
	"encoding/json"
	"fmt"
)

// searchResponse is the wire shape of /search/photos.
type searchResponse struct {
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	Results    []photoDTO `json:"results"`
}

// photoDTO is one photo record as the API delivers it.
type photoDTO struct {
	ID             string  `json:"id"`
	Description    *string `json:"description"`
	AltDescription *string `json:"alt_description"`
	CreatedAt      string  `json:"created_at"`
	URLs           urlsDTO `json:"urls"`
	User           userDTO `json:"user"`
}

type urlsDTO struct {
	Small   string `json:"small"`
	Regular string `json:"regular"`
}

type userDTO struct {
	Name string `json:"name"`
}

func parseSearchResponse(body []byte) (*searchResponse, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return &resp, nil
}
