package jsearch

import (
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type EmploymentType string

const (
	FullTime   EmploymentType = "FULLTIME"
	Contractor EmploymentType = "CONTRACTOR"
	PartTime   EmploymentType = "PARTTIME"
	Intern     EmploymentType = "INTERN"
)

type JobRequirement string

const (
	Under3YearsExperience    JobRequirement = "under_3_years_experience"
	MoreThan3YearsExperience JobRequirement = "more_than_3_years_experience"
	NoExperience             JobRequirement = "no_experience"
	NoDegree                 JobRequirement = "no_degree"
)

var ErrInvalidPage = errors.New("page must be a positive integer")

type SearchParameters struct {
	Query           string         `json:"query" validate:"required"`
	Page            string         `json:"page,omitempty" validate:"omitempty,numeric"`
	NumPages        string         `json:"num_pages,omitempty" validate:"omitempty,numeric"`
	RemoteJobsOnly  bool           `json:"remote_jobs_only,omitempty"`
	EmploymentTypes EmploymentType `json:"employment_types,omitempty" validate:"omitempty,oneof=FULLTIME CONTRACTOR PARTTIME INTERN"`
	JobRequirements JobRequirement `json:"job_requirements,omitempty" validate:"omitempty,oneof=under_3_years_experience more_than_3_years_experience no_experience no_degree"`
}

var validate = validator.New()

func (s SearchParameters) Validate() error {
	return validate.Struct(s)
}

func (s SearchParameters) ToUrlParams() url.Values {

	params := url.Values{}
	params.Add("query", s.Query)

	if s.Page != "" {
		params.Add("page", s.Page)
	}

	if s.NumPages != "" {
		params.Add("num_pages", s.NumPages)
	}

	if s.RemoteJobsOnly {
		params.Add("remote_jobs_only", "true")
	}

	if s.EmploymentTypes != "" {
		params.Add("employment_types", string(s.EmploymentTypes))
	}

	if s.JobRequirements != "" {
		params.Add("job_requirements", string(s.JobRequirements))
	}

	return params
}

// CurrentPage returns the page number; an unset page is the first one.
func (s SearchParameters) CurrentPage() (int, error) {
	if s.Page == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(s.Page)
	if err != nil || page < 1 {
		return 0, errors.Wrapf(ErrInvalidPage, "got %q", s.Page)
	}
	return page, nil
}

// NextPage returns a copy of the parameters pointing to the following page.
// There is no upper bound: the API answers past the last page with empty data.
func (s SearchParameters) NextPage() (SearchParameters, error) {
	page, err := s.CurrentPage()
	if err != nil {
		return s, err
	}
	s.Page = strconv.Itoa(page + 1)
	return s, nil
}

// CacheKey identifies a search independently of field order.
func (s SearchParameters) CacheKey() string {
	return "jobs?" + s.ToUrlParams().Encode()
}

func DetailsCacheKey(jobID string) string {
	return "jobs?" + url.Values{"id": []string{jobID}}.Encode()
}
