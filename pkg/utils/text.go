package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// markupTag matches the inline tags providers leave in headlines.
var markupTag = regexp.MustCompile(`(?i)</?(a|b|i|u|em|strong|span|font|p|br|div|sup|sub|small|mark|q|cite)(\s[^<>]*)?/?>`)

// CleanText strips markup and decodes entities from a provider supplied string,
// collapsing runs of whitespace. Invalid UTF-8 bytes are dropped. A '<' that does not
// open a known inline tag is kept as text.
func CleanText(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	if strings.ContainsAny(s, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(escapeStrayAngles(s)))
		if err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

func escapeStrayAngles(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	tags := markupTag.FindAllStringIndex(s, -1)
	var b strings.Builder
	b.Grow(len(s))
	next := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			b.WriteByte(s[i])
			continue
		}
		for next < len(tags) && tags[next][0] < i {
			next++
		}
		if next < len(tags) && tags[next][0] == i {
			b.WriteByte('<')
			continue
		}
		b.WriteString("&lt;")
	}
	return b.String()
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
