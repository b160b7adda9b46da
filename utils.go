package baskets

import (
	"encoding/json"
	"io"
	"time"
)

// readJSON reads and unmarshals JSON from a reader
func readJSON(r io.Reader, v interface{}) error {
	return json.NewDecoder(r).Decode(v)
}

// FormatDate renders a delivery or deadline date as DD/MM/YYYY, the format
// used in view titles and subtitles.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
