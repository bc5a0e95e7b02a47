package prompts

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/docket/pkg/query"
	"github.com/JaimeStill/docket/pkg/repository"
)

var projection = query.NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("name", "Name").
	Project("stage", "Stage").
	Project("instructions", "Instructions").
	Project("description", "Description").
	Project("active", "Active")

// overrides list grouped by stage, then alphabetically
var defaultSort = []query.SortField{{Field: "Stage"}, {Field: "Name"}}

// Filters narrows a prompt listing; nil fields match everything.
type Filters struct {
	Stage  *Stage
	Name   *string
	Active *bool
	Search *string
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.WhereEquals("Stage", f.Stage)
	b.WhereContains("Name", f.Name)
	b.WhereEquals("Active", f.Active)
	return b.WhereSearch(f.Search, "Name", "Description")
}

// FiltersFromQuery reads ?stage=, ?name=, ?active= and ?search=. An unknown
// stage is an error; an unparseable ?active= is ignored.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters
	text := func(key string) *string {
		if v := values.Get(key); v != "" {
			return &v
		}
		return nil
	}

	if s := text("stage"); s != nil {
		stage, err := ParseStage(*s)
		if err != nil {
			return Filters{}, err
		}
		f.Stage = &stage
	}
	if a := text("active"); a != nil {
		if b, err := strconv.ParseBool(*a); err == nil {
			f.Active = &b
		}
	}
	f.Name = text("name")
	f.Search = text("search")

	return f, nil
}

func scanPrompt(s repository.Scanner) (p Prompt, err error) {
	err = s.Scan(&p.ID, &p.Name, &p.Stage, &p.Instructions, &p.Description, &p.Active)
	return p, err
}
