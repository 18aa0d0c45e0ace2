// Package form builds prefilled Google Form links for stored contacts.
package form

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ai_quick_actions/config"
)

// ErrUnknownEntry is returned when no contact has the requested id.
var ErrUnknownEntry = errors.New("unknown form entry")

// Entry is one contact to submit.
type Entry struct {
	ID          int
	CompanyName string
	Name        string
	Email       string
	Address     string
	Phone       string
	Comment     string
}

// Fields maps each contact field to the form's "entry.<n>" key.
type Fields struct {
	CompanyName string
	Name        string
	Email       string
	Address     string
	Phone       string
	Comment     string
}

func (f Fields) pairs(e Entry) [][2]string {
	return [][2]string{
		{f.CompanyName, e.CompanyName},
		{f.Name, e.Name},
		{f.Email, e.Email},
		{f.Address, e.Address},
		{f.Phone, e.Phone},
		{f.Comment, e.Comment},
	}
}

// BuildURL returns baseURL with every mapped field as a query parameter.
// Optional fields without a value are sent empty so the form shows them blank.
func BuildURL(baseURL string, fields Fields, e Entry) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid form url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid form url %q", baseURL)
	}
	q := u.Query()
	for _, p := range fields.pairs(e) {
		if p[0] == "" {
			continue
		}
		q.Set(p[0], p[1])
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Book is the list of stored contacts and the form they go to.
type Book struct {
	URL     string
	Fields  Fields
	entries []Entry
}

// NewBook builds a Book from config.
func NewBook(cfg config.FormConfig) *Book {
	b := &Book{
		URL: cfg.URL,
		Fields: Fields{
			CompanyName: cfg.Fields.CompanyName,
			Name:        cfg.Fields.Name,
			Email:       cfg.Fields.Email,
			Address:     cfg.Fields.Address,
			Phone:       cfg.Fields.Phone,
			Comment:     cfg.Fields.Comment,
		},
	}
	for _, e := range cfg.Entries {
		b.entries = append(b.entries, Entry{
			ID:          e.ID,
			CompanyName: e.CompanyName,
			Name:        e.Name,
			Email:       e.Email,
			Address:     e.Address,
			Phone:       e.Phone,
			Comment:     e.Comment,
		})
	}
	sort.SliceStable(b.entries, func(i, j int) bool { return b.entries[i].ID < b.entries[j].ID })
	return b
}

// Entries returns the contacts ordered by id.
func (b *Book) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Find returns the contact with id.
func (b *Book) Find(id int) (Entry, error) {
	for _, e := range b.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%w: %d", ErrUnknownEntry, id)
}

// URLFor builds the prefilled link for the contact with id.
func (b *Book) URLFor(id int) (string, error) {
	e, err := b.Find(id)
	if err != nil {
		return "", err
	}
	return BuildURL(b.URL, b.Fields, e)
}

// Table renders the contacts as aligned text rows.
func (b *Book) Table() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-4s %s %s %s\n", "ID", padCell("COMPANY", 24), padCell("NAME", 16), "EMAIL")
	for _, e := range b.entries {
		fmt.Fprintf(&sb, "%-4d %s %s %s\n", e.ID, padCell(e.CompanyName, 24), padCell(e.Name, 16), e.Email)
	}
	return sb.String()
}

// padCell pads s to width terminal cells; wide (CJK) runes count as two.
func padCell(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
