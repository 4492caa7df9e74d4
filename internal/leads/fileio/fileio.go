// Package fileio reads lead import files and writes lead exports.
package fileio

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"leadscope_backend/internal/leads/transport"

	"gopkg.in/yaml.v3"
)

// Format is a supported import/export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than csv, json, yaml and yml.
	ErrUnsupportedFormat = errors.New("unsupported file type, upload a CSV, JSON or YAML file")
	// ErrNoLeadsArray is returned when a JSON or YAML document holds neither a list nor a leads key.
	ErrNoLeadsArray = errors.New("file must contain an array of leads")
)

// FormatFromFilename picks the format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Parse decodes an import file into lead inputs. Rows are returned unvalidated.
func Parse(format Format, r io.Reader) ([]transport.LeadInput, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatJSON:
		return ParseJSON(r)
	case FormatYAML:
		return ParseYAML(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// ParseCSV reads a CSV file with a header row. Columns are matched by name,
// unknown columns are ignored and rows without username or platform are skipped.
func ParseCSV(r io.Reader) ([]transport.LeadInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []transport.LeadInput{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[normalizeHeader(name)] = i
	}

	leads := make([]transport.LeadInput, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		get := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		in := transport.LeadInput{
			Username:        get("username"),
			Platform:        strings.ToLower(get("platform")),
			FullName:        optional(get("full_name")),
			Bio:             optional(get("bio")),
			Followers:       parseInt(get("followers")),
			Email:           optional(get("email")),
			Website:         optional(get("website")),
			Location:        optional(get("location")),
			ProfileURL:      optional(get("profile_url")),
			CompanyName:     optional(get("company_name")),
			CompanyIndustry: optional(get("company_industry")),
			CompanySize:     optional(get("company_size")),
			JobTitle:        optional(get("job_title")),
			TechStack:       splitList(get("tech_stack")),
			EngagementScore: parseFloat(get("engagement_score")),
			Tags:            splitList(get("tags")),
		}
		if in.Username == "" || in.Platform == "" {
			continue
		}
		leads = append(leads, in)
	}
	return leads, nil
}

// ParseJSON accepts either a top-level array or an object with a "leads" array.
func ParseJSON(r io.Reader) ([]transport.LeadInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	if bytes.HasPrefix(data, []byte("[")) {
		var leads []transport.LeadInput
		if err := json.Unmarshal(data, &leads); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return leads, nil
	}

	var wrapped struct {
		Leads *[]transport.LeadInput `json:"leads"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if wrapped.Leads == nil {
		return nil, ErrNoLeadsArray
	}
	return *wrapped.Leads, nil
}

// ParseYAML accepts the same two shapes as ParseJSON.
func ParseYAML(r io.Reader) ([]transport.LeadInput, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return []transport.LeadInput{}, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = *root.Content[0]
	}

	switch root.Kind {
	case yaml.SequenceNode:
		var leads []transport.LeadInput
		if err := root.Decode(&leads); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return leads, nil
	case yaml.MappingNode:
		var wrapped struct {
			Leads *[]transport.LeadInput `yaml:"leads"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		if wrapped.Leads == nil {
			return nil, ErrNoLeadsArray
		}
		return *wrapped.Leads, nil
	default:
		return nil, ErrNoLeadsArray
	}
}

var csvHeader = []string{
	"ID", "Username", "Platform", "Full Name", "Bio", "Followers",
	"Email", "Website", "Location", "Profile URL", "Engagement Score",
	"Tags", "Created At", "Last Updated",
}

const exportTimeLayout = "2006-01-02 15:04:05"

// WriteCSV writes leads with a header row. Tags are joined with ", ".
func WriteCSV(w io.Writer, leads []transport.LeadResponse) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, lead := range leads {
		record := []string{
			lead.ID.String(),
			lead.Username,
			lead.Platform,
			deref(lead.FullName),
			deref(lead.Bio),
			strconv.FormatInt(lead.Followers, 10),
			deref(lead.Email),
			deref(lead.Website),
			deref(lead.Location),
			deref(lead.ProfileURL),
			strconv.FormatFloat(lead.EngagementScore, 'f', -1, 64),
			strings.Join(lead.Tags, ", "),
			formatTime(lead.CreatedAt),
			formatTime(lead.LastUpdated),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes leads as an indented JSON array.
func WriteJSON(w io.Writer, leads []transport.LeadResponse) error {
	if leads == nil {
		leads = []transport.LeadResponse{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(leads)
}

// ExportFilename returns the attachment name for an export taken at now.
func ExportFilename(format Format, now time.Time) string {
	return fmt.Sprintf("leads_export_%s.%s", now.Format("20060102_150405"), format)
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.ReplaceAll(name, " ", "_")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(exportTimeLayout)
}
