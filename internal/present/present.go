// Package present turns catalog records into the HTML snippets sent to chat.
// Every function here is pure.
package present

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/Digital-Shane/cinemabot/internal/catalog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// ImageOrigin is prepended to poster templates.
	ImageOrigin = "https://images.justwatch.com"

	// DefaultPosterProfile is the poster size used for chat cards.
	DefaultPosterProfile = "s592"

	profilePlaceholder = "{profile}"
)

// TitleLine renders the bold title with the release year when known. The
// title is emitted as is; catalog text is trusted display text.
func TitleLine(m catalog.BaseMovie) string {
	if year, ok := m.Year(); ok {
		return fmt.Sprintf("<b>%s</b> (%d)", m.Title, year)
	}
	return fmt.Sprintf("<b>%s</b>", m.Title)
}

// Rating renders a single score as "Name: score".
func Rating(r catalog.Rating) string {
	// Casers keep state, so each call gets its own.
	return cases.Title(language.Und).String(r.Name) + ": " + strconv.FormatFloat(r.Score, 'f', -1, 64)
}

// RatingSummary joins all ratings with a comma. No ratings yields "".
func RatingSummary(ratings []catalog.Rating) string {
	parts := make([]string, 0, len(ratings))
	for _, r := range ratings {
		parts = append(parts, Rating(r))
	}
	return strings.Join(parts, ", ")
}

// DetailBlock renders the caption of a title card: title line, ratings and
// description, separated by single blank lines.
func DetailBlock(m *catalog.Movie) string {
	var b strings.Builder
	b.WriteString(TitleLine(m.Base()))
	b.WriteString("\n\n")
	b.WriteString(RatingSummary(m.Ratings))
	b.WriteString("\n\n")
	b.WriteString(html.EscapeString(m.ShortDescription))
	b.WriteString("\n")
	return b.String()
}

// PosterURL builds the poster address for profile, falling back to
// DefaultPosterProfile. Templates without the placeholder are kept as is.
func PosterURL(m *catalog.Movie, profile string) string {
	if profile == "" {
		profile = DefaultPosterProfile
	}
	return ImageOrigin + strings.ReplaceAll(m.PosterTemplate, profilePlaceholder, profile)
}

// ResultsList renders the numbered list shown for "more results".
func ResultsList(query string, movies []catalog.BaseMovie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Search results for \"%s\":", html.EscapeString(query))
	for i, m := range movies {
		fmt.Fprintf(&b, "\n%d. %s", i+1, TitleLine(m))
	}
	return b.String()
}

// NothingFound renders the reply for an empty search.
func NothingFound(query string) string {
	return fmt.Sprintf("Nothing found for \"%s\"", html.EscapeString(query))
}
