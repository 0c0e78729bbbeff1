package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"

	"github.com/aspizu/rxhkd/internal/keybinds"
)

// KeyInfo describes one bindable key name
type KeyInfo struct {
	Name    string `json:"name" yaml:"name"`
	Keycode uint8  `json:"keycode" yaml:"keycode"`
}

// ModifierInfo describes one modifier keyword
type ModifierInfo struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Mask    uint16 `json:"mask" yaml:"mask"`
}

// KeyListing is the result of the keys command
type KeyListing struct {
	Modifiers []ModifierInfo `json:"modifiers" yaml:"modifiers"`
	Keys      []KeyInfo      `json:"keys" yaml:"keys"`
}

// ListKeys returns the modifier keywords and key names. With a query, both
// are fuzzy filtered and ordered by match score.
func ListKeys(query string) KeyListing {
	var listing KeyListing

	mods := keybinds.ModifierKeywords()
	modNames := make([]string, len(mods))
	for i, m := range mods {
		modNames[i] = m.Keyword
	}
	for _, i := range matchIndexes(query, modNames) {
		listing.Modifiers = append(listing.Modifiers, ModifierInfo{
			Keyword: mods[i].Keyword,
			Mask:    uint16(mods[i].Modifier),
		})
	}

	names := keybinds.KeyNames()
	for _, i := range matchIndexes(query, names) {
		key, _ := keybinds.ParseKey(names[i])
		listing.Keys = append(listing.Keys, KeyInfo{Name: names[i], Keycode: key.Code()})
	}

	return listing
}

// matchIndexes returns the indexes of data matching query, best first. An
// empty query matches everything in order.
func matchIndexes(query string, data []string) []int {
	if query == "" {
		idx := make([]int, len(data))
		for i := range data {
			idx[i] = i
		}
		return idx
	}
	matches := fuzzy.Find(query, data)
	idx := make([]int, len(matches))
	for i, m := range matches {
		idx[i] = m.Index
	}
	return idx
}

// Keys prints the key listing
func Keys(w io.Writer, query string, opts OutputOptions) error {
	listing := ListKeys(query)
	return render(w, listing, opts, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		if len(listing.Modifiers) > 0 {
			fmt.Fprintln(tw, "MODIFIER\tMASK")
			for _, m := range listing.Modifiers {
				fmt.Fprintf(tw, "%s\t0x%02x\n", m.Keyword, m.Mask)
			}
			fmt.Fprintln(tw)
		}
		if len(listing.Keys) > 0 {
			fmt.Fprintln(tw, "KEY\tKEYCODE")
			for _, k := range listing.Keys {
				fmt.Fprintf(tw, "%s\t%d\n", k.Name, k.Keycode)
			}
		}
		if len(listing.Modifiers) == 0 && len(listing.Keys) == 0 {
			fmt.Fprintf(tw, "no keys match %q\n", query)
		}
		return tw.Flush()
	})
}
