package idx

import (
	"errors"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// profileFieldNames maps the label column of the profile page's detail
// table to Profile fields.
var profileFieldNames = map[string]func(*Profile, string){
	"Name":           func(p *Profile, v string) { p.CompanyName = v },
	"Office Address": func(p *Profile, v string) { p.Address = v },
	"Register":       func(p *Profile, v string) { p.Register = v },
	"Industry":       func(p *Profile, v string) { p.Industry = v },
	"Sub-industry":   func(p *Profile, v string) { p.SubIndustry = v },
	"Subsector":      func(p *Profile, v string) { p.SubSector = v },
	"Email Address":  func(p *Profile, v string) { p.Email = v },
	"Fax":            func(p *Profile, v string) { p.Fax = v },
	"Listing Board":  func(p *Profile, v string) { p.ListingBoard = v },
	"Listing Date":   func(p *Profile, v string) { p.ListingDate = v },
	"Phone":          func(p *Profile, v string) { p.Phone = v },
	"Website":        func(p *Profile, v string) { p.Website = v },
	"NPWP":           func(p *Profile, v string) { p.NPWP = v },
}

// parseProfilePage extracts a Profile from the public company-profile
// page. The page renders the registration record as td-name/td-content
// pairs and each roster as a table following an h4 section title. The
// section titles carry the site's own spelling, misspellings included.
func parseProfilePage(r io.Reader) (*Profile, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	container := doc.Find("div.bzg").First()
	if container.Length() == 0 {
		return nil, errors.New("profile container not found")
	}

	p := &Profile{}
	names := container.Find("td.td-name")
	contents := container.Find("td.td-content")
	names.Each(func(i int, s *goquery.Selection) {
		if i >= contents.Length() {
			return
		}
		key := strings.TrimSpace(s.Text())
		value := strings.TrimSpace(contents.Eq(i).Text())
		if set, ok := profileFieldNames[key]; ok {
			set(p, value)
		}
	})

	if p.CompanyName == "" {
		return nil, errors.New("profile record incomplete")
	}

	for _, row := range sectionTable(doc, "Shareholders") {
		p.Shareholders = append(p.Shareholders, Shareholder{
			Name:       pickCell(row, "name"),
			Category:   pickCell(row, "category", "type"),
			Amount:     pickCell(row, "amount", "share"),
			Percentage: pickCell(row, "percentage"),
		})
	}
	p.Directors = sectionBoard(doc, "Director")
	p.Commissioners = sectionBoard(doc, "Comissioners")
	p.AuditCommittees = sectionBoard(doc, "Audit Committee")

	return p, nil
}

func sectionBoard(doc *goquery.Document, title string) []BoardMember {
	var members []BoardMember
	for _, row := range sectionTable(doc, title) {
		members = append(members, BoardMember{
			Name:        pickCell(row, "name"),
			Position:    pickCell(row, "position"),
			Affiliated:  yes(pickCell(row, "affiliat")),
			Independent: yes(pickCell(row, "independent")),
		})
	}
	return members
}

// sectionTable finds the table following the h4 with the given title and
// returns its rows as header-keyed maps. Missing sections yield nil; not
// every company publishes every roster.
func sectionTable(doc *goquery.Document, title string) []map[string]string {
	var table *goquery.Selection
	doc.Find("h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) == title {
			table = s.NextAllFiltered("table").First()
			return false
		}
		return true
	})
	if table == nil || table.Length() == 0 {
		return nil
	}

	var headers []string
	table.Find("thead th").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, strings.TrimSpace(s.Text()))
	})

	var rows []map[string]string
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		row := make(map[string]string, len(headers))
		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			if i < len(headers) {
				row[strings.ToLower(headers[i])] = strings.TrimSpace(td.Text())
			}
		})
		if len(row) > 0 {
			rows = append(rows, row)
		}
	})
	return rows
}

// pickCell returns the first cell whose header contains one of the given
// fragments.
func pickCell(row map[string]string, fragments ...string) string {
	for _, frag := range fragments {
		for header, value := range row {
			if strings.Contains(header, frag) {
				return value
			}
		}
	}
	return ""
}

func yes(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "yes")
}
