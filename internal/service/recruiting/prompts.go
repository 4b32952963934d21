package recruiting

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// DefaultCompanyName is used in the posting's closing statement when none is
// configured.
const DefaultCompanyName = "MicroTech"

var templateFuncs = template.FuncMap{
	"join": func(items []string, sep string) string {
		var kept []string
		for _, item := range items {
			if s := strings.TrimSpace(item); s != "" {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			return "n/a"
		}
		return strings.Join(kept, sep)
	},
	"orNA": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "n/a"
		}
		return s
	},
}

// Prompt is a rendered system/user prompt pair.
type Prompt struct {
	System string
	User   string
}

// Prompts renders the posting and kit prompts. Each template file must define
// a "system" and a "user" template.
type Prompts struct {
	posting     *template.Template
	kit         *template.Template
	companyName string
}

// PromptOptions overrides the built-in templates. Empty paths keep the
// built-in template.
type PromptOptions struct {
	PostingPath string
	KitPath     string
	CompanyName string
}

// LoadPrompts parses the built-in templates, or the files named in opts.
func LoadPrompts(opts PromptOptions) (*Prompts, error) {
	posting, err := loadTemplate("posting", opts.PostingPath)
	if err != nil {
		return nil, err
	}
	kit, err := loadTemplate("kit", opts.KitPath)
	if err != nil {
		return nil, err
	}

	company := strings.TrimSpace(opts.CompanyName)
	if company == "" {
		company = DefaultCompanyName
	}
	return &Prompts{posting: posting, kit: kit, companyName: company}, nil
}

// DefaultPrompts returns the built-in templates. It panics if they fail to
// parse, which only happens if the embedded files are broken.
func DefaultPrompts() *Prompts {
	p, err := LoadPrompts(PromptOptions{})
	if err != nil {
		panic(err)
	}
	return p
}

func loadTemplate(name, path string) (*template.Template, error) {
	var src []byte
	var err error
	if path == "" {
		src, err = builtinTemplates.ReadFile("templates/" + name + ".tmpl")
	} else {
		src, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s prompt template: %w", name, err)
	}

	tmpl, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse %s prompt template: %w", name, err)
	}
	for _, required := range []string{"system", "user"} {
		if tmpl.Lookup(required) == nil {
			return nil, fmt.Errorf("%s prompt template does not define %q", name, required)
		}
	}
	return tmpl, nil
}

type postingData struct {
	PostingInput
	CompanyName string
}

type kitData struct {
	KitInput
	Senior bool
}

// Posting renders the posting prompt for in.
func (p *Prompts) Posting(in PostingInput) (Prompt, error) {
	return render(p.posting, postingData{PostingInput: in, CompanyName: p.companyName})
}

// Kit renders the kit prompt for in. Seniority containing "senior" selects
// advanced system-design guidance.
func (p *Prompts) Kit(in KitInput) (Prompt, error) {
	return render(p.kit, kitData{KitInput: in, Senior: IsSenior(in.Seniority)})
}

// IsSenior reports whether a seniority label denotes a senior role.
func IsSenior(seniority string) bool {
	return strings.Contains(strings.ToLower(seniority), "senior")
}

func render(tmpl *template.Template, data any) (Prompt, error) {
	var system, user strings.Builder
	if err := tmpl.ExecuteTemplate(&system, "system", data); err != nil {
		return Prompt{}, fmt.Errorf("render %s system prompt: %w", tmpl.Name(), err)
	}
	if err := tmpl.ExecuteTemplate(&user, "user", data); err != nil {
		return Prompt{}, fmt.Errorf("render %s user prompt: %w", tmpl.Name(), err)
	}
	return Prompt{
		System: strings.TrimSpace(system.String()),
		User:   strings.TrimSpace(user.String()),
	}, nil
}
