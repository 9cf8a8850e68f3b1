package view

import (
	"bytes"
	"html/template"
	"net/url"
	"strconv"

	"github.com/ganot/showcase/internal/domain/project"
	"github.com/yuin/goldmark"
)

// LongDateLayout renders dates as "Saturday, 20 July 2024".
const LongDateLayout = "Monday, 2 January 2006"

// DetailView is the presentation of a selected record.
type DetailView struct {
	Card
	Date            string        `json:"date"`
	LongDate        string        `json:"long_date"`
	DescriptionHTML template.HTML `json:"-"`
	Link            string        `json:"link,omitempty"`
	Visit           *Hook         `json:"visit,omitempty"`
}

// Detail projects a selected record. Markdown in the description is rendered
// without raw HTML, and only absolute http(s) links get a visit hook.
func Detail(rec project.Project, favourite bool) DetailView {
	d := DetailView{
		Card:            card(rec, favourite),
		Date:            rec.Date.String(),
		DescriptionHTML: renderMarkdown(rec.Description),
	}
	if !rec.Date.IsZero() {
		d.LongDate = rec.Date.Format(LongDateLayout)
	}
	if safeLink(rec.Link) {
		d.Link = rec.Link
		d.Visit = &Hook{Action: ActionVisit, Target: rec.Link}
	}
	return d
}

func renderMarkdown(src string) template.HTML {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(src) + "</p>")
	}
	return template.HTML(buf.String())
}

func safeLink(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// ProjectID parses the project id carried by a favourite or select hook.
func (h Hook) ProjectID() (int64, error) {
	return strconv.ParseInt(h.Target, 10, 64)
}
