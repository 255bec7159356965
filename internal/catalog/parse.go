package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

const scoreSuffix = ":score"

type rawRating struct {
	ProviderType *string  `json:"provider_type"`
	Value        *float64 `json:"value"`
}

type rawOffer struct {
	ProviderID *int `json:"provider_id"`
	URLs       *struct {
		StandardWeb *string `json:"standard_web"`
	} `json:"urls"`
}

type rawTitle struct {
	ID                  *int            `json:"id"`
	Title               *string         `json:"title"`
	ObjectType          *string         `json:"object_type"`
	OriginalReleaseYear *int            `json:"original_release_year"`
	ShortDescription    *string         `json:"short_description"`
	Poster              *string         `json:"poster"`
	Scoring             json.RawMessage `json:"scoring"`
	Offers              json.RawMessage `json:"offers"`
}

type rawProvider struct {
	ID        *int    `json:"id"`
	ClearName *string `json:"clear_name"`
}

// ParseRating converts one scoring entry. Entries that are not scores, or
// that lack the type or value, report false.
func ParseRating(data []byte) (Rating, bool) {
	var raw rawRating
	if err := json.Unmarshal(data, &raw); err != nil {
		return Rating{}, false
	}
	if raw.ProviderType == nil || raw.Value == nil {
		return Rating{}, false
	}
	name, ok := strings.CutSuffix(*raw.ProviderType, scoreSuffix)
	if !ok {
		return Rating{}, false
	}
	return Rating{Name: name, Score: *raw.Value}, true
}

// ParseOffer converts one offer entry. Entries without a provider id or a
// standard web URL report false.
func ParseOffer(data []byte) (Offer, bool) {
	var raw rawOffer
	if err := json.Unmarshal(data, &raw); err != nil {
		return Offer{}, false
	}
	if raw.ProviderID == nil || raw.URLs == nil || raw.URLs.StandardWeb == nil {
		return Offer{}, false
	}
	return Offer{ProviderID: *raw.ProviderID, URL: *raw.URLs.StandardWeb}, true
}

// ParseBaseMovie converts one search result entry. A missing id, title or
// object type fails with ErrMissingField.
func ParseBaseMovie(data []byte) (BaseMovie, error) {
	var raw rawTitle
	if err := json.Unmarshal(data, &raw); err != nil {
		return BaseMovie{}, fmt.Errorf("search result: %w: %v", ErrMalformed, err)
	}
	switch {
	case raw.ID == nil:
		return BaseMovie{}, missingField("search result", "id")
	case raw.Title == nil:
		return BaseMovie{}, missingField("search result", "title")
	case raw.ObjectType == nil:
		return BaseMovie{}, missingField("search result", "object_type")
	}
	return BaseMovie{
		ID:          *raw.ID,
		Title:       *raw.Title,
		Kind:        *raw.ObjectType,
		ReleaseYear: raw.OriginalReleaseYear,
	}, nil
}

// ParseMovie converts a detail record. fallbackID is used when the record
// itself carries no id. A missing title, short description, poster or
// object type fails with ErrMissingField.
func ParseMovie(data []byte, fallbackID int) (*Movie, error) {
	var raw rawTitle
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("title: %w: %v", ErrMalformed, err)
	}
	switch {
	case raw.Title == nil:
		return nil, missingField("title", "title")
	case raw.ShortDescription == nil:
		return nil, missingField("title", "short_description")
	case raw.Poster == nil:
		return nil, missingField("title", "poster")
	case raw.ObjectType == nil:
		return nil, missingField("title", "object_type")
	}

	id := fallbackID
	if raw.ID != nil {
		id = *raw.ID
	}

	movie := &Movie{
		BaseMovie: BaseMovie{
			ID:          id,
			Title:       *raw.Title,
			Kind:        *raw.ObjectType,
			ReleaseYear: raw.OriginalReleaseYear,
		},
		ShortDescription: *raw.ShortDescription,
		PosterTemplate:   *raw.Poster,
	}

	for _, entry := range rawList(raw.Scoring) {
		if rating, ok := ParseRating(entry); ok {
			movie.Ratings = append(movie.Ratings, rating)
		}
	}

	var offers []Offer
	for _, entry := range rawList(raw.Offers) {
		if offer, ok := ParseOffer(entry); ok {
			offers = append(offers, offer)
		}
	}
	movie.Offers = DedupeOffers(offers)

	return movie, nil
}

// DedupeOffers keeps one offer per provider id. The surviving value is the
// last one seen for that id, placed where the id first appeared.
func DedupeOffers(offers []Offer) []Offer {
	if len(offers) == 0 {
		return nil
	}
	index := make(map[int]int, len(offers))
	out := make([]Offer, 0, len(offers))
	for _, offer := range offers {
		if i, seen := index[offer.ProviderID]; seen {
			out[i] = offer
			continue
		}
		index[offer.ProviderID] = len(out)
		out = append(out, offer)
	}
	return out
}

// rawList splits a JSON array into its elements. Anything that is not an
// array yields nothing.
func rawList(data json.RawMessage) []json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	return items
}
