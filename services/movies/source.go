package movies

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"

	"phimhub/models"
)

// ListKind selects one of the providers' browse taxonomies.
type ListKind string

const (
	ListNew      ListKind = "new"      // latest updated titles
	ListGeneric  ListKind = "list"     // named collections (phim-le, phim-bo, hoat-hinh, ...)
	ListCategory ListKind = "category" // genre
	ListCountry  ListKind = "country"
	ListYear     ListKind = "year"
)

// TaxonomyKind selects which catalogue of Category entries to fetch.
type TaxonomyKind string

const (
	TaxonomyGenres    TaxonomyKind = "genres"
	TaxonomyCountries TaxonomyKind = "countries"
	TaxonomyYears     TaxonomyKind = "years"
)

// ErrUnsupported is returned by a Source for operations its upstream API does
// not expose. Fallback chains skip over it like any other failure.
var ErrUnsupported = errors.New("operation not supported by this source")

// Source is one upstream movie provider. Implementations return normalized
// canonical models and fail only on genuine transport or HTTP errors; an
// empty result set is a valid success.
type Source interface {
	Name() models.SourceName
	Priority() int

	Search(ctx context.Context, keyword string, limit int, params models.FilterParams) (models.MovieList, error)
	Detail(ctx context.Context, slug string) (models.MovieDetail, error)
	List(ctx context.Context, kind ListKind, slug string, page, limit int, params models.FilterParams) (models.MovieList, error)
	Taxonomy(ctx context.Context, kind TaxonomyKind) ([]models.Category, error)
}

// boolish tolerates the providers' loose status field, which is sometimes a
// JSON bool and sometimes the strings "success"/"error".
type boolish bool

func (b *boolish) UnmarshalJSON(data []byte) error {
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		*b = boolish(asBool)
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*b = asString == "success" || asString == "true"
		return nil
	}
	return errors.New("status is neither bool nor string")
}

// intish tolerates numeric fields shipped either as numbers or as strings.
type intish int

func (i *intish) UnmarshalJSON(data []byte) error {
	var asInt int
	if err := json.Unmarshal(data, &asInt); err == nil {
		*i = intish(asInt)
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		n, _ := strconv.Atoi(asString)
		*i = intish(n)
		return nil
	}
	*i = 0
	return nil
}

// buildFilterQuery encodes the optional refinement params using the query
// names shared by the v1-style providers. Empty params encode to nothing.
func buildFilterQuery(params models.FilterParams) string {
	q := url.Values{}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Country != "" {
		q.Set("country", params.Country)
	}
	if params.Year != "" {
		q.Set("year", params.Year)
	}
	if params.SortLang != "" {
		q.Set("sort_lang", params.SortLang)
	}
	if params.SortField != "" {
		q.Set("sort_field", params.SortField)
	}
	if params.SortType != "" {
		q.Set("sort_type", params.SortType)
	}
	if len(q) == 0 {
		return ""
	}
	return "&" + q.Encode()
}
