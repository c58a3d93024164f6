package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"congressdata/internal/flatten"
)

const report_walker_walk = "walker.walk"

// Fetch retrieves every record behind path, following links for linked profiles.
func Fetch(ctx context.Context, client *Client, path string, params url.Values, opts ...RequestOption) ([]any, error) {
	records, _, err := Walk(ctx, client, path, params, opts...)
	return records, err
}

// Walk is Fetch that also returns the number of pages fetched. A failed page fails the
// whole walk, records from earlier pages are discarded with it.
func Walk(ctx context.Context, client *Client, path string, params url.Values, opts ...RequestOption) ([]any, int, error) {
	profile := client.Profile()

	if profile.Pagination == PaginationSingleShot {
		body, err := client.Get(ctx, path, params, opts...)
		if err != nil {
			return nil, 0, err
		}
		return Records(body, profile), 1, nil
	}

	first := url.Values{}
	for k, v := range params {
		first[k] = v
	}
	if profile.PageSizeParam != "" && first.Get(profile.PageSizeParam) == "" {
		first.Set(profile.PageSizeParam, strconv.Itoa(profile.PageSize))
	}

	var out []any
	pages := 0
	next := ""
	for profile.MaxPages <= 0 || pages < profile.MaxPages {
		var body any
		var err error
		if pages == 0 {
			body, err = client.Get(ctx, path, first, opts...)
		} else {
			body, err = client.GetURL(ctx, next)
		}
		if err != nil {
			return nil, pages, fmt.Errorf("page %d: %w", pages+1, err)
		}
		pages++

		records := Records(body, profile)
		if len(records) == 0 {
			break
		}
		out = append(out, records...)

		next = NextLink(body)
		if next == "" {
			break
		}
	}
	if profile.MaxPages > 0 && pages >= profile.MaxPages && next != "" {
		client.tel.ReportWarning(report_walker_walk, "page cap reached", path, pages)
	}

	return out, pages, nil
}

// Records extracts the record list out of a body according to the profile's envelope.
func Records(body any, profile Profile) []any {
	switch profile.Envelope {
	case EnvelopeData:
		obj, ok := body.(map[string]any)
		if !ok {
			return flatten.Unwrap(body)
		}
		return flatten.Unwrap(obj["dados"])
	default:
		return flatten.Unwrap(body)
	}
}

// NextLink returns the href of the "next" entry in a {dados, links} envelope, or "".
func NextLink(body any) string {
	obj, ok := body.(map[string]any)
	if !ok {
		return ""
	}
	for _, l := range flatten.Unwrap(obj["links"]) {
		link, ok := l.(map[string]any)
		if !ok {
			continue
		}
		rel, _ := link["rel"].(string)
		if rel != "next" {
			continue
		}
		href, _ := link["href"].(string)
		return href
	}
	return ""
}

// Dig walks down nested objects by key. With CasingMixed a key that is not found verbatim
// is matched case-insensitively. Missing keys or non-object values yield nil.
func Dig(body any, casing Casing, keys ...string) any {
	current := body
	for _, key := range keys {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		value, ok := obj[key]
		if !ok && casing == CasingMixed {
			for k, v := range obj {
				if strings.EqualFold(k, key) {
					value, ok = v, true
					break
				}
			}
		}
		if !ok {
			return nil
		}
		current = value
	}
	return current
}
