package recruiting

// PostingInput holds the role attributes used to generate a job posting.
type PostingInput struct {
	Title            string   `json:"title"            validate:"required,notblank,max=200"`
	Seniority        string   `json:"seniority"        validate:"max=100"`
	Team             string   `json:"team"             validate:"max=100"`
	Location         string   `json:"location"         validate:"max=100"`
	RemotePolicy     string   `json:"remotePolicy"     validate:"max=100"`
	MustHaveSkills   []string `json:"mustHaveSkills"   validate:"max=50,dive,max=50"`
	NiceToHaveSkills []string `json:"niceToHaveSkills" validate:"max=50,dive,max=50"`
	Responsibilities []string `json:"responsibilities" validate:"max=50,dive,max=500"`
	Requirements     []string `json:"requirements"     validate:"max=50,dive,max=500"`
	Benefits         []string `json:"benefits"         validate:"max=50,dive,max=500"`
}

// KitInput holds the role attributes used to generate an interview kit.
type KitInput struct {
	RoleTitle string `json:"roleTitle" validate:"required,notblank,max=200"`
	Seniority string `json:"seniority" validate:"max=100"`
}

// QA is one interview question with its model answer.
type QA struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// Kit groups interview questions by category. The lists are never nil, so
// they always encode as JSON arrays.
type Kit struct {
	Technical  []QA `json:"technical"`
	Behavioral []QA `json:"behavioral"`
	Scenario   []QA `json:"scenario"`
}

// EmptyKit returns a kit with three empty categories.
func EmptyKit() *Kit {
	return &Kit{
		Technical:  []QA{},
		Behavioral: []QA{},
		Scenario:   []QA{},
	}
}

// BundleResult carries the outcome of each half of a bundle independently.
// Exactly one of Posting/PostingErr and one of Kit/KitErr is set.
type BundleResult struct {
	Posting    string
	PostingErr error
	Kit        *Kit
	KitErr     error
}

// OK reports whether at least one half succeeded.
func (b *BundleResult) OK() bool {
	return b.PostingErr == nil || b.KitErr == nil
}
