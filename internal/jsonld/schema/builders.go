package schema

import (
	"net/url"
	"strings"
)

const (
	StatusScheduled = "https://schema.org/EventScheduled"
	StatusCancelled = "https://schema.org/EventCancelled"
)

// BuildURI joins baseURL and path segments into an absolute IRI. It
// returns "" when baseURL is not absolute or an id is empty.
func BuildURI(baseURL string, segments ...string) string {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return ""
	}
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		if s == "" {
			return ""
		}
		escaped = append(escaped, url.PathEscape(s))
	}
	return base.String() + "/" + strings.Join(escaped, "/")
}

func BuildEventURI(baseURL, id string) string {
	return BuildURI(baseURL, "api", "v1", "events", id)
}

func BuildDJURI(baseURL, id string) string {
	return BuildURI(baseURL, "api", "v1", "djs", id)
}

func BuildProducerURI(baseURL, id string) string {
	return BuildURI(baseURL, "api", "v1", "producers", id)
}

// NewPostalAddress returns nil when every field is empty.
func NewPostalAddress(locality, region, country string) *PostalAddress {
	if locality == "" && region == "" && country == "" {
		return nil
	}
	return &PostalAddress{
		Type:            "PostalAddress",
		AddressLocality: locality,
		AddressRegion:   region,
		AddressCountry:  country,
	}
}
