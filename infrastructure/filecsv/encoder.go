package filecsv

import (
	"bytes"
	"io"
	"strings"

	"playlist-exporter/domain/model"
)

// Header is the fixed first line of every export
var Header = []string{
	"title",
	"video_description",
	"video_length",
	"video_published_datetime",
	"video_likes",
	"video_views",
	"number_comments",
}

var (
	quoteEscaper   = strings.NewReplacer(`"`, `""`)
	newlineFlatten = strings.NewReplacer("\r", " ", "\n", " ")
)

// Encoder writes video records as CSV.
// Title and description are always quoted; the remaining columns are quoted only when they need it.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Write emits the header followed by one line per record
func (e *Encoder) Write(records []model.VideoRecord) error {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(Header, ","))
	buf.WriteByte('\n')
	for i := range records {
		writeRow(&buf, &records[i])
	}
	_, err := e.w.Write(buf.Bytes())
	return err
}

// Encode returns the CSV document for records
func Encode(records []model.VideoRecord) []byte {
	var buf bytes.Buffer
	_ = NewEncoder(&buf).Write(records)
	return buf.Bytes()
}

func writeRow(buf *bytes.Buffer, r *model.VideoRecord) {
	writeQuoted(buf, flatten(r.Title))
	buf.WriteByte(',')
	writeQuoted(buf, flatten(r.Description))
	for _, v := range []string{r.DurationCode, r.PublishedAt, r.LikeCount, r.ViewCount, r.CommentCount} {
		buf.WriteByte(',')
		writeField(buf, v)
	}
	buf.WriteByte('\n')
}

// flatten replaces every CR and LF with a space so a record stays on one line
func flatten(s string) string {
	return newlineFlatten.Replace(s)
}

func writeQuoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	buf.WriteString(quoteEscaper.Replace(s))
	buf.WriteByte('"')
}

func writeField(buf *bytes.Buffer, s string) {
	if strings.ContainsAny(s, ",\"\r\n") {
		writeQuoted(buf, s)
		return
	}
	buf.WriteString(s)
}
