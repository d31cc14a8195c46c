package sources

// Source is one image record from the NASA library, flattened for API
// consumers.
type Source struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	LaunchDate   string   `json:"launch_date,omitempty"`
	Description  string   `json:"description,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	CanonicalURL string   `json:"canonical_url,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
	Photographer string   `json:"photographer,omitempty"`

	// Search is true when the result came from a query; ConfidenceScore is
	// only meaningful in that case.
	Search          bool    `json:"search"`
	ConfidenceScore float64 `json:"confidence_score,omitempty"`
}

// searchResponse mirrors the NASA images API /search payload, trimmed to the
// fields the mapping uses.
type searchResponse struct {
	Collection struct {
		Items []searchItem `json:"items"`
	} `json:"collection"`
}

type searchItem struct {
	Data  []itemData `json:"data"`
	Links []itemLink `json:"links"`
}

type itemData struct {
	NasaID       string   `json:"nasa_id"`
	Title        string   `json:"title"`
	MediaType    string   `json:"media_type"`
	DateCreated  string   `json:"date_created"`
	Description  string   `json:"description"`
	Keywords     []string `json:"keywords"`
	Photographer string   `json:"photographer"`
	Author       string   `json:"author"`
	Credit       string   `json:"credit"`
	Creator      string   `json:"creator"`
}

type itemLink struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Render string `json:"render"`
}
