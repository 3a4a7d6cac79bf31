package marketdata

import (
	"path/filepath"
	"strings"
)

// ArchivePath returns where the offline providers expect the candles of symbol, e.g. dir/TCS.NS.parquet.
// Path separators in the symbol are replaced so a ticker can never escape dir.
func ArchivePath(dir, symbol, ext string) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(symbol)

	return filepath.Join(dir, name+"."+strings.TrimPrefix(ext, "."))
}
