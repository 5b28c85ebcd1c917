package schema

import (
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/totegamma/catalog/internal/utils"
)

// Selection is an ordered set of extension identifiers.
type Selection struct {
	ids []string
}

// NewSelection trims the identifiers and drops empties and repeats, keeping
// the order of first occurrence.
func NewSelection(ids ...string) Selection {
	return Selection{ids: utils.DedupeAndTrim(ids)}
}

func (s Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s Selection) Len() int {
	return len(s.ids)
}

// Hash is order sensitive, like composition itself.
func (s Selection) Hash() uint64 {
	return xxh3.HashString(strings.Join(s.ids, "\x00"))
}
