// Package csvimport reads a lead spreadsheet export into import records.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const MaxRows = 5000

var ErrTooManyRows = fmt.Errorf("csv has more than %d data rows", MaxRows)

// aliases maps normalized header text to the lead field it fills.
var aliases = map[string]string{
	"email":         "email",
	"email address": "email",
	"e-mail":        "email",
	"first name":    "first_name",
	"firstname":     "first_name",
	"last name":     "last_name",
	"lastname":      "last_name",
	"surname":       "last_name",
	"company":       "company",
	"company name":  "company",
	"organization":  "company",
	"position":      "position",
	"title":         "position",
	"job title":     "position",
	"industry":      "industry",
	"website":       "website",
	"url":           "website",
	"phone":         "phone",
	"phone number":  "phone",
	"linkedin":      "linkedin_url",
	"linkedin url":  "linkedin_url",
	"tags":          "tags",
	"notes":         "notes",
	"source":        "source",
}

func normalize(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

// Parse reads a CSV with a header row. Unknown columns are ignored; tags may
// be separated by ";" or "|". Rows missing required values are kept so the
// importer can count them as errors.
func Parse(r io.Reader) ([]map[string]any, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, err
	}

	fields := make([]string, len(headers))
	hasEmail := false
	for i, h := range headers {
		fields[i] = aliases[normalize(h)]
		if fields[i] == "email" {
			hasEmail = true
		}
	}
	if !hasEmail {
		return nil, errors.New("csv must contain an Email column")
	}

	records := make([]map[string]any, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(records) == MaxRows {
			return nil, ErrTooManyRows
		}

		rec := make(map[string]any, len(fields))
		blank := true
		for i, v := range row {
			if i >= len(fields) || fields[i] == "" {
				continue
			}
			v = strings.TrimSpace(v)
			if v != "" {
				blank = false
			}
			if fields[i] == "tags" {
				rec["tags"] = splitTags(v)
				continue
			}
			rec[fields[i]] = v
		}
		if blank {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func splitTags(v string) []string {
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ';' || r == '|' })
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
