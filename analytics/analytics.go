// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package analytics runs Alma Analytics reports through the Alma API.
//
// A report is returned a page at a time as XML embedded in a JSON response.
// The first page is requested with the report's path and filter, later pages
// with the resumption token from the first. Rows use generic column names
// (Column0, Column1, ...), which are replaced with the column headings from
// the report's schema.
package analytics

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cu-library/almaclient/api"
	"github.com/cu-library/almaclient/xmltree"
)

const (
	// MinRowsPerFetch is the smallest page Alma will return.
	MinRowsPerFetch = 25
	// MaxRowsPerFetch is the largest page Alma will return.
	MaxRowsPerFetch = 1000
	// DefaultRowsPerFetch is the page size of a new Report.
	DefaultRowsPerFetch = MaxRowsPerFetch
)

const filterNamespaces = `xmlns:saw="com.siebel.analytics.web/report/v1.1" ` +
	`xmlns:sawx="com.siebel.analytics.web/expression/v1.1" ` +
	`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" ` +
	`xmlns:xsd="http://www.w3.org/2001/XMLSchema"`

var (
	// ErrNoPath is returned when a report without a path is run.
	ErrNoPath = errors.New("analytics: report path must be set")
	// ErrRowsPerFetch is returned for page sizes outside MinRowsPerFetch and MaxRowsPerFetch.
	ErrRowsPerFetch = fmt.Errorf("analytics: rows per fetch must be between %v and %v", MinRowsPerFetch, MaxRowsPerFetch)
	// ErrMalformedReport is returned when a page can't be read.
	ErrMalformedReport = errors.New("analytics: malformed report")
)

// Reporter returns pages of Analytics reports. *api.Client is a Reporter.
type Reporter interface {
	AnalyticsReport(ctx context.Context, params url.Values) (*api.Response, error)
}

// Report describes an Analytics report to run.
type Report struct {
	// Path is the full, unescaped path of the report in Analytics.
	Path string
	// Filter is Analytics filter XML. The report must have an "is prompted" filter on the filtered field.
	Filter string
	// RowsPerFetch is the page size.
	RowsPerFetch int
	// ColumnNames requests the schema holding the column headings.
	ColumnNames bool
}

// NewReport returns a report for the path with the default page size and column names.
func NewReport(path string) *Report {
	return &Report{
		Path:         path,
		RowsPerFetch: DefaultRowsPerFetch,
		ColumnNames:  true,
	}
}

// SetRowsPerFetch sets the page size, which must be between MinRowsPerFetch and MaxRowsPerFetch.
func (r *Report) SetRowsPerFetch(n int) error {
	if n < MinRowsPerFetch || n > MaxRowsPerFetch {
		return fmt.Errorf("%w, not %v", ErrRowsPerFetch, n)
	}
	r.RowsPerFetch = n
	return nil
}

// SetFilterXML sets the filter. The caller builds the full filter XML.
func (r *Report) SetFilterXML(filter string) {
	r.Filter = cleanFilter(filter)
}

// SetFilterEqual filters on a field equal to value.
func (r *Report) SetFilterEqual(table, field, value string) {
	r.Filter = cleanFilter(comparison("sawx:comparison", "equal", table, field, value))
}

// SetFilterLike filters on a field like value, which must contain SQL wildcards.
func (r *Report) SetFilterLike(table, field, value string) {
	r.Filter = cleanFilter(comparison("sawx:list", "like", table, field, value))
}

func comparison(exprType, op, table, field, value string) string {
	return fmt.Sprintf(`<sawx:expr xsi:type="%v" op="%v" %v>`+
		`<sawx:expr xsi:type="sawx:sqlExpression">"%v"."%v"</sawx:expr>`+
		`<sawx:expr xsi:type="xsd:string">%v</sawx:expr>`+
		`</sawx:expr>`,
		exprType, op, filterNamespaces, escape(table), escape(field), escape(value))
}

func escape(s string) string {
	var b strings.Builder
	// Writes to a strings.Builder don't fail.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Analytics rejects filters with newlines or tabs.
func cleanFilter(filter string) string {
	return strings.NewReplacer("\n", "", "\t", "").Replace(filter)
}

// Row is a row of a report, keyed by column heading.
type Row map[string]string

// Result is a complete report.
type Result struct {
	// Columns are the column headings, in report order.
	Columns []string
	Rows    []Row
}

// page is what a single call returns.
type page struct {
	rows     []map[string]string
	columns  map[string]string
	order    []string
	finished bool
	token    string
}

// Runner runs reports.
type Runner struct {
	Client Reporter
	Logger zerolog.Logger
}

// NewRunner returns a Runner which gets pages from client.
func NewRunner(client Reporter, logger zerolog.Logger) *Runner {
	return &Runner{Client: client, Logger: logger}
}

// Run returns every row of the report.
func (r *Runner) Run(ctx context.Context, report *Report) (*Result, error) {
	if report.Path == "" {
		return nil, ErrNoPath
	}
	rowsPerFetch := report.RowsPerFetch
	if rowsPerFetch == 0 {
		rowsPerFetch = DefaultRowsPerFetch
	}
	params := url.Values{}
	params.Set("col_names", strconv.FormatBool(report.ColumnNames))
	params.Set("limit", strconv.Itoa(rowsPerFetch))
	if report.Filter != "" {
		params.Set("filter", report.Filter)
	}
	params.Set("path", report.Path)
	first, err := r.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	rows := first.rows
	// Column names and the token only come with the first page.
	token := first.token
	current := first
	for !current.finished {
		if token == "" {
			return nil, fmt.Errorf("%w: unfinished report without a resumption token", ErrMalformedReport)
		}
		params := url.Values{}
		params.Set("col_names", strconv.FormatBool(report.ColumnNames))
		params.Set("limit", strconv.Itoa(rowsPerFetch))
		params.Set("token", token)
		current, err = r.fetch(ctx, params)
		if err != nil {
			return nil, err
		}
		if len(current.rows) == 0 && !current.finished {
			return nil, fmt.Errorf("%w: unfinished report returned no rows", ErrMalformedReport)
		}
		rows = append(rows, current.rows...)
	}
	return applyColumnNames(first, rows), nil
}

func (r *Runner) fetch(ctx context.Context, params url.Values) (*page, error) {
	resp, err := r.Client.AnalyticsReport(ctx, params)
	if err != nil {
		return nil, err
	}
	p, err := parsePage(resp)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug().
		Int("rows", len(p.rows)).
		Bool("finished", p.finished).
		Msg("Retrieved analytics report page")
	return p, nil
}

// parsePage reads the QueryResult XML held in the first element of the anies list.
func parsePage(resp *api.Response) (*page, error) {
	anies := xmltree.Slice(resp.Data["anies"])
	if len(anies) == 0 {
		return nil, fmt.Errorf("%w: no anies in response", ErrMalformedReport)
	}
	report, ok := anies[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: anies holds %T, not XML", ErrMalformedReport, anies[0])
	}
	tree, err := xmltree.Parse([]byte(report))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	result, ok := tree["QueryResult"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: no QueryResult", ErrMalformedReport)
	}
	p := &page{
		finished: xmltree.Text(result["IsFinished"]) != "false",
		token:    xmltree.Text(result["ResumptionToken"]),
		columns:  map[string]string{},
	}
	rowset, _ := xmltree.Lookup(result, "ResultXml", "rowset")
	rows, _ := xmltree.Lookup(rowset, "Row")
	for _, row := range xmltree.Slice(rows) {
		values := map[string]string{}
		if m, ok := row.(map[string]any); ok {
			for k, v := range m {
				values[k] = xmltree.Text(v)
			}
		}
		p.rows = append(p.rows, values)
	}
	// The schema is missing when column names aren't requested.
	elements, _ := xmltree.Lookup(rowset, "xsd:schema", "xsd:complexType", "xsd:sequence", "xsd:element")
	for _, element := range xmltree.Slice(elements) {
		m, ok := element.(map[string]any)
		if !ok {
			continue
		}
		generic := xmltree.Text(m[xmltree.AttrPrefix+"name"])
		heading, ok := m[xmltree.AttrPrefix+"saw-sql:columnHeading"]
		if generic == "" || !ok {
			continue
		}
		p.columns[generic] = xmltree.Text(heading)
		p.order = append(p.order, generic)
	}
	return p, nil
}

// applyColumnNames renames the generic columns of rows and removes Column0,
// which numbers the rows. Columns without a heading keep their generic name.
func applyColumnNames(first *page, rows []map[string]string) *Result {
	order := first.order
	if len(order) == 0 {
		seen := map[string]bool{}
		for _, row := range rows {
			for k := range row {
				if !seen[k] {
					seen[k] = true
					order = append(order, k)
				}
			}
		}
		sort.Slice(order, func(i, j int) bool {
			return columnNumber(order[i]) < columnNumber(order[j])
		})
	}
	heading := func(generic string) string {
		if name, ok := first.columns[generic]; ok {
			return name
		}
		return generic
	}
	result := &Result{Rows: make([]Row, 0, len(rows))}
	for _, generic := range order {
		if generic == "Column0" {
			continue
		}
		result.Columns = append(result.Columns, heading(generic))
	}
	for _, row := range rows {
		named := Row{}
		for k, v := range row {
			if k == "Column0" {
				continue
			}
			named[heading(k)] = v
		}
		result.Rows = append(result.Rows, named)
	}
	return result
}

// columnNumber returns n for ColumnN, so Column10 sorts after Column9.
func columnNumber(generic string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(generic, "Column"))
	if err != nil {
		return -1
	}
	return n
}
