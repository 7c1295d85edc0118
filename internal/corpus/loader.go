package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"crisiscompass/internal/domain"
)

// Post is a single crisis report record. All fields beyond the text travel
// as metadata, so unknown fields are preserved.
type Post map[string]any

// Text returns the report text, empty if absent.
func (p Post) Text() string {
	s, _ := p["text"].(string)
	return s
}

// Geolocation returns the report's geolocation, empty if absent.
func (p Post) Geolocation() string {
	s, _ := p["geolocation"].(string)
	return s
}

// TimeDate returns the report timestamp string, empty if absent.
func (p Post) TimeDate() string {
	s, _ := p["time_date"].(string)
	return s
}

type ngoRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Contact     string `json:"contact"`
	Twitter     string `json:"twitter"`
}

// flexString accepts both JSON strings and bare numbers; the reference
// dataset records helpline numbers in both forms.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type helplineRecord struct {
	Number      flexString `json:"number"`
	Description string     `json:"description"`
}

// Authorities is the emergency-authority reference dataset: three named
// collections of NGO, helpline and government authority records.
type Authorities struct {
	NGOs        []ngoRecord      `json:"important_ngos"`
	Helplines   []helplineRecord `json:"important_helplines"`
	Authorities []ngoRecord      `json:"important_authorities"`
}

type authoritiesFile struct {
	MedicalEmergencies Authorities `json:"medical_emergencies_india"`
}

// LoadPosts decodes the posts dataset. A missing or malformed file is fatal.
func LoadPosts(path string) ([]Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: posts dataset %s: %v", domain.ErrCorpusLoad, path, err)
	}
	var posts []Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("%w: posts dataset %s: %v", domain.ErrCorpusLoad, path, err)
	}
	return posts, nil
}

// LoadAuthorities decodes the authority reference dataset.
func LoadAuthorities(path string) (*Authorities, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: authorities dataset %s: %v", domain.ErrCorpusLoad, path, err)
	}
	var file authoritiesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: authorities dataset %s: %v", domain.ErrCorpusLoad, path, err)
	}
	return &file.MedicalEmergencies, nil
}

// Build normalizes both sources into a flat sequence of Documents. Posts
// with blank text are skipped; every authority record becomes one document
// with a synthesized natural-language paragraph.
func Build(posts []Post, auth *Authorities) []domain.Document {
	var docs []domain.Document
	for _, post := range posts {
		if strings.TrimSpace(post.Text()) == "" {
			continue
		}
		meta := make(map[string]any, len(post)+1)
		for k, v := range post {
			meta[k] = v
		}
		meta["source"] = "posts"
		docs = append(docs, domain.Document{Text: post.Text(), Metadata: meta})
	}
	if auth == nil {
		return docs
	}
	for _, ngo := range auth.NGOs {
		docs = append(docs, domain.Document{
			Text: orgParagraph("Organization", ngo),
			Metadata: map[string]any{
				"source":  "authorities",
				"type":    "ngo",
				"name":    ngo.Name,
				"contact": ngo.Contact,
			},
		})
	}
	for _, hl := range auth.Helplines {
		docs = append(docs, domain.Document{
			Text: fmt.Sprintf("Emergency Number: %s\nDescription: %s", string(hl.Number), hl.Description),
			Metadata: map[string]any{
				"source": "authorities",
				"type":   "helpline",
				"number": string(hl.Number),
			},
		})
	}
	for _, gov := range auth.Authorities {
		docs = append(docs, domain.Document{
			Text: orgParagraph("Authority", gov),
			Metadata: map[string]any{
				"source":  "authorities",
				"type":    "authority",
				"name":    gov.Name,
				"contact": gov.Contact,
			},
		})
	}
	return docs
}

func orgParagraph(heading string, r ngoRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\nDescription: %s\nContact: %s", heading, r.Name, r.Description, r.Contact)
	if r.Twitter != "" {
		fmt.Fprintf(&b, "\nTwitter: %s", r.Twitter)
	}
	return b.String()
}
