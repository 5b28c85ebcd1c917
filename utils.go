package catalog

import (
	"net/url"
	"strings"
)

func joinURL(base string, segments ...string) string {
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, strings.TrimRight(base, "/"))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return strings.Join(escaped, "/")
}

// ComposeItemURL returns the canonical self href of an item.
func ComposeItemURL(baseURL, id string) string {
	return joinURL(baseURL, "items", id)
}

func ComposeCollectionURL(baseURL, id string) string {
	return joinURL(baseURL, "collections", id)
}

func SelfLink(href string) Link {
	return Link{Rel: "self", Type: "application/json", Href: href}
}

// EventChannel is the pub/sub channel carrying item events of a collection.
func EventChannel(collection string) string {
	return "catalog:items:" + collection
}
