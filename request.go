package docpager

// PageRequest is intended for API payloads. For proper code generation,
// inline it:
//
//	type ListArticles struct {
//	    Paging docpager.PageRequest `json:",inline"`
//	}
type PageRequest struct {
	// Limit - maximum number of documents to return in the response.
	Limit int `json:"limit"`
	// Next - token obtained from Page.Next. If empty, the first page is
	// returned.
	Next string `json:"next"`
	// Strategy - pagination strategy name. Empty means cursor.
	Strategy string `json:"strategy"`
	// Sort - sort tokens, see ParseSort.
	Sort []string `json:"sort"`
}

// Decode resolves the request against a schema and page size limits.
// The limit is normalized, the strategy parsed and the ordering built with
// Schema.Sort.
func (r PageRequest) Decode(schema *Schema, limits Limits) (DecodedPageRequest, error) {
	strategy, err := ParseStrategy(r.Strategy)
	if err != nil {
		return DecodedPageRequest{}, err
	}

	sort, err := schema.Sort(r.Sort...)
	if err != nil {
		return DecodedPageRequest{}, err
	}

	return DecodedPageRequest{
		Limit:    limits.Normalize(r.Limit),
		Next:     r.Next,
		Strategy: strategy,
		Sort:     sort,
	}, nil
}

// DecodedPageRequest is a validated PageRequest.
type DecodedPageRequest struct {
	Limit    int
	Next     string
	Strategy Strategy
	Sort     SortFields
}
