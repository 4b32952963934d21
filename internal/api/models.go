package api

import (
	"github.com/phrazzld/recruiter-api/internal/service/recruiting"
)

// PostingRequest defines the payload for the posting endpoint.
type PostingRequest struct {
	Title            string   `json:"title"`
	Seniority        string   `json:"seniority"`
	Team             string   `json:"team"`
	Location         string   `json:"location"`
	RemotePolicy     string   `json:"remotePolicy"`
	MustHaveSkills   []string `json:"mustHaveSkills"`
	NiceToHaveSkills []string `json:"niceToHaveSkills"`
	Responsibilities []string `json:"responsibilities"`
	Requirements     []string `json:"requirements"`
	Benefits         []string `json:"benefits"`
}

// ToInput converts the request to the service input.
func (r PostingRequest) ToInput() recruiting.PostingInput {
	return recruiting.PostingInput{
		Title:            r.Title,
		Seniority:        r.Seniority,
		Team:             r.Team,
		Location:         r.Location,
		RemotePolicy:     r.RemotePolicy,
		MustHaveSkills:   r.MustHaveSkills,
		NiceToHaveSkills: r.NiceToHaveSkills,
		Responsibilities: r.Responsibilities,
		Requirements:     r.Requirements,
		Benefits:         r.Benefits,
	}
}

// Validate applies the service's input rules.
func (r PostingRequest) Validate() error {
	return r.ToInput().Validate()
}

// KitRequest defines the payload for the kit endpoint.
type KitRequest struct {
	RoleTitle string `json:"roleTitle"`
	Seniority string `json:"seniority"`
}

// ToInput converts the request to the service input.
func (r KitRequest) ToInput() recruiting.KitInput {
	return recruiting.KitInput{RoleTitle: r.RoleTitle, Seniority: r.Seniority}
}

// Validate applies the service's input rules.
func (r KitRequest) Validate() error {
	return r.ToInput().Validate()
}

// BundleRequest defines the payload for the bundle endpoint.
type BundleRequest struct {
	Posting PostingRequest `json:"posting"`
	Kit     KitRequest     `json:"kit"`
}

// PostingResponse is the successful response of the posting endpoint.
type PostingResponse struct {
	OK   bool   `json:"ok"`
	HTML string `json:"html"`
}

// KitResponse is the successful response of the kit endpoint.
type KitResponse struct {
	Kit *recruiting.Kit `json:"kit"`
}

// BundleResponse carries each half of a bundle: either its success response
// or its error body.
type BundleResponse struct {
	Posting interface{} `json:"posting"`
	Kit     interface{} `json:"kit"`
}
