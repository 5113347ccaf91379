package model

// SearchResult is one ranked entry of a search results page.
type SearchResult struct {
	Rank    int    `json:"rank"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// SourceData is the search data fetched once per job.
type SourceData struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}

func (s *SourceData) Clone() *SourceData {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Results != nil {
		cp.Results = append([]SearchResult(nil), s.Results...)
	}
	return &cp
}

// Theme is one row of the keyword frequency table.
type Theme struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}
