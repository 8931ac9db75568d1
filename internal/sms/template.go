// internal/sms/template.go
package sms

import (
	"fmt"
	"os"
	"regexp"

	"wms-dispatch/internal/common/errors"

	"gopkg.in/yaml.v3"
)

// CustomTemplateID is the template whose text is supplied per send.
const CustomTemplateID = "custom"

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Template is a message body with {field} tokens.
type Template struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Body      string   `yaml:"body" json:"message"`
	Variables []string `yaml:"variables" json:"variables"`
}

func (t Template) IsCustom() bool {
	return t.ID == CustomTemplateID
}

// Render substitutes every {token} with fields[token]. Tokens with no field
// are left as they are.
func Render(body string, fields map[string]string) string {
	return placeholder.ReplaceAllStringFunc(body, func(token string) string {
		if v, ok := fields[token[1:len(token)-1]]; ok {
			return v
		}
		return token
	})
}

// Placeholders lists the distinct tokens used in body, in order of appearance.
func Placeholders(body string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range placeholder.FindAllStringSubmatch(body, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// Catalog is the read-only set of message templates.
type Catalog struct {
	templates []Template
	byID      map[string]int
}

func newCatalog(templates []Template) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(templates))}
	for _, t := range templates {
		if t.Variables == nil && !t.IsCustom() {
			t.Variables = Placeholders(t.Body)
		}
		if i, ok := c.byID[t.ID]; ok {
			c.templates[i] = t
			continue
		}
		c.byID[t.ID] = len(c.templates)
		c.templates = append(c.templates, t)
	}
	if _, ok := c.byID[CustomTemplateID]; !ok {
		c.byID[CustomTemplateID] = len(c.templates)
		c.templates = append(c.templates, Template{ID: CustomTemplateID, Name: "Custom Message", Variables: []string{}})
	}
	return c
}

// DefaultCatalog returns the built-in templates.
func DefaultCatalog() *Catalog {
	return newCatalog(defaultTemplates())
}

func defaultTemplates() []Template {
	return []Template{
		{
			ID:   "parcel_created",
			Name: "Parcel Created",
			Body: "Dear {name}, your parcel ({waybill}) has been registered for delivery to {destination}. " +
				"You will receive updates on its progress. Thank you for choosing NID Logistics Ltd.",
		},
		{
			ID:   "parcel_dispatched",
			Name: "Parcel Dispatched",
			Body: "Dear {name}, your parcel ({waybill}) has been dispatched and is on its way to {destination}. " +
				"Track your parcel for updates. Thank you for choosing NID Logistics Ltd.",
		},
		{
			ID:   "parcel_delivered",
			Name: "Parcel Delivered",
			Body: "Dear {name}, your parcel ({waybill}) has been successfully delivered to {destination}. " +
				"Thank you for choosing NID Logistics Ltd.",
		},
		{
			ID:   "ready_for_pickup",
			Name: "Ready for Pickup",
			Body: "Dear {name}, your parcel ({waybill}) has arrived at {destination} and is ready for pickup. " +
				"Please collect it at your earliest convenience. Thank you for choosing NID Logistics Ltd.",
		},
		{ID: CustomTemplateID, Name: "Custom Message", Variables: []string{}},
	}
}

type catalogFile struct {
	Templates []Template `yaml:"templates"`
}

// LoadCatalog reads templates from a YAML file on top of the defaults. An
// empty path returns the defaults.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewTemplateLoadFailedError(path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewTemplateLoadFailedError(path, err)
	}

	for i, t := range file.Templates {
		if t.ID == "" {
			return nil, errors.NewTemplateLoadFailedError(path, fmt.Errorf("template %d has no id", i))
		}
		if t.ID == CustomTemplateID && t.Body != "" {
			return nil, errors.NewTemplateLoadFailedError(path, fmt.Errorf("the custom template cannot have a body"))
		}
	}

	return newCatalog(append(defaultTemplates(), file.Templates...)), nil
}

func (c *Catalog) Get(id string) (Template, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Template{}, false
	}
	return c.templates[i], true
}

// List returns a copy of the templates in catalog order.
func (c *Catalog) List() []Template {
	out := make([]Template, len(c.templates))
	copy(out, c.templates)
	return out
}
