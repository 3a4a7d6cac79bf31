package export

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxSheetNameLength is the longest sheet name Excel accepts.
const MaxSheetNameLength = 31

// SheetNamer derives a sheet name from a symbol.
type SheetNamer func(symbol string) string

// TrimSuffixNamer strips an exchange suffix, e.g. ".NS" turns RELIANCE.NS into RELIANCE.
func TrimSuffixNamer(suffix string) SheetNamer {
	return func(symbol string) string {
		return strings.TrimSuffix(symbol, suffix)
	}
}

// IdentityNamer uses the symbol unchanged.
func IdentityNamer(symbol string) string {
	return symbol
}

var sheetNameReplacer = strings.NewReplacer(
	":", "_", `\`, "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// SanitizeSheetName replaces characters Excel forbids, trims leading and trailing
// apostrophes and truncates to MaxSheetNameLength runes. An empty result becomes "Sheet".
func SanitizeSheetName(name string) string {
	name = sheetNameReplacer.Replace(name)
	name = strings.Trim(name, "'")
	name = strings.TrimSpace(name)

	if utf8.RuneCountInString(name) > MaxSheetNameLength {
		name = string([]rune(name)[:MaxSheetNameLength])
	}

	if name == "" {
		return "Sheet"
	}

	return name
}

// sheetNames hands out unique sanitised names. Excel compares sheet names case-insensitively.
type sheetNames struct {
	namer SheetNamer
	used  map[string]bool
}

func newSheetNames(namer SheetNamer, reserved ...string) *sheetNames {
	if namer == nil {
		namer = IdentityNamer
	}

	n := &sheetNames{namer: namer, used: make(map[string]bool)}
	for _, r := range reserved {
		n.used[strings.ToLower(r)] = true
	}

	return n
}

func (n *sheetNames) next(symbol string) string {
	base := SanitizeSheetName(n.namer(symbol))
	name := base

	for i := 2; n.used[strings.ToLower(name)]; i++ {
		suffix := " (" + strconv.Itoa(i) + ")"
		trimmed := base
		if utf8.RuneCountInString(trimmed)+len(suffix) > MaxSheetNameLength {
			trimmed = string([]rune(trimmed)[:MaxSheetNameLength-len(suffix)])
		}

		name = trimmed + suffix
	}

	n.used[strings.ToLower(name)] = true

	return name
}
