package jsearch

type SearchResponse struct {
	Status     string         `json:"status"`
	RequestID  string         `json:"request_id"`
	Parameters map[string]any `json:"parameters"`
	Data       []Job          `json:"data"`
}

type JobDetailsResponse struct {
	Status     string         `json:"status"`
	RequestID  string         `json:"request_id"`
	Parameters map[string]any `json:"parameters"`
	Data       []JobDetails   `json:"data"`
}

// Job returns the single detailed job of the response, if any.
func (r *JobDetailsResponse) Job() (*JobDetails, bool) {
	if r == nil || len(r.Data) == 0 {
		return nil, false
	}
	return &r.Data[0], true
}

type Job struct {
	EmployerName                    string             `json:"employer_name"`
	EmployerLogo                    *string            `json:"employer_logo"`
	EmployerWebsite                 *string            `json:"employer_website"`
	EmployerCompanyType             *string            `json:"employer_company_type"`
	JobPublisher                    string             `json:"job_publisher"`
	JobID                           string             `json:"job_id"`
	JobEmploymentType               string             `json:"job_employment_type"`
	JobTitle                        string             `json:"job_title"`
	JobApplyLink                    string             `json:"job_apply_link"`
	JobApplyIsDirect                bool               `json:"job_apply_is_direct"`
	JobApplyQualityScore            float64            `json:"job_apply_quality_score"`
	JobDescription                  string             `json:"job_description"`
	JobIsRemote                     bool               `json:"job_is_remote"`
	JobPostedAtTimestamp            int64              `json:"job_posted_at_timestamp"`
	JobPostedAtDatetimeUTC          string             `json:"job_posted_at_datetime_utc"`
	JobCity                         string             `json:"job_city"`
	JobState                        string             `json:"job_state"`
	JobCountry                      string             `json:"job_country"`
	JobLatitude                     float64            `json:"job_latitude"`
	JobLongitude                    float64            `json:"job_longitude"`
	JobBenefits                     []string           `json:"job_benefits"`
	JobGoogleLink                   string             `json:"job_google_link"`
	JobOfferExpirationDatetimeUTC   *string            `json:"job_offer_expiration_datetime_utc"`
	JobOfferExpirationTimestamp     *int64             `json:"job_offer_expiration_timestamp"`
	JobRequiredExperience           RequiredExperience `json:"job_required_experience"`
	JobRequiredSkills               []string           `json:"job_required_skills"`
	JobRequiredEducation            RequiredEducation  `json:"job_required_education"`
	JobExperienceInPlaceOfEducation bool               `json:"job_experience_in_place_of_education"`
	JobMinSalary                    *float64           `json:"job_min_salary"`
	JobMaxSalary                    *float64           `json:"job_max_salary"`
	JobSalaryCurrency               *string            `json:"job_salary_currency"`
	JobSalaryPeriod                 *string            `json:"job_salary_period"`
	JobHighlights                   Highlights         `json:"job_highlights"`
	JobJobTitle                     *string            `json:"job_job_title"`
	JobPostingLanguage              string             `json:"job_posting_language"`
	JobOnetSoc                      string             `json:"job_onet_soc"`
	JobOnetJobZone                  string             `json:"job_onet_job_zone"`
	JobNaicsCode                    string             `json:"job_naics_code"`
	JobNaicsName                    string             `json:"job_naics_name"`
}

type JobDetails struct {
	Job
	JobOccupationalCategories []string         `json:"job_occupational_categories"`
	EstimatedSalaries         []map[string]any `json:"estimated_salaries"`
	ApplyOptions              []ApplyOption    `json:"apply_options"`
	EmployerReviews           []EmployerReview `json:"employer_reviews"`
}

type RequiredExperience struct {
	NoExperienceRequired       bool `json:"no_experience_required"`
	RequiredExperienceInMonths *int `json:"required_experience_in_months"`
	ExperienceMentioned        bool `json:"experience_mentioned"`
	ExperiencePreferred        bool `json:"experience_preferred"`
}

type RequiredEducation struct {
	PostgraduateDegree                 bool `json:"postgraduate_degree"`
	ProfessionalCertification          bool `json:"professional_certification"`
	HighSchool                         bool `json:"high_school"`
	AssociatesDegree                   bool `json:"associates_degree"`
	BachelorsDegree                    bool `json:"bachelors_degree"`
	DegreeMentioned                    bool `json:"degree_mentioned"`
	DegreePreferred                    bool `json:"degree_preferred"`
	ProfessionalCertificationMentioned bool `json:"professional_certification_mentioned"`
}

type Highlights struct {
	Qualifications   []string `json:"Qualifications,omitempty"`
	Responsibilities []string `json:"Responsibilities,omitempty"`
	Benefits         []string `json:"Benefits,omitempty"`
}

type ApplyOption struct {
	Publisher string `json:"publisher"`
	ApplyLink string `json:"apply_link"`
	IsDirect  bool   `json:"is_direct"`
}

type EmployerReview struct {
	Publisher    string  `json:"publisher"`
	EmployerName string  `json:"employer_name"`
	Score        float64 `json:"score"`
	NumStars     float64 `json:"num_stars"`
	ReviewCount  int     `json:"review_count"`
	MaxScore     float64 `json:"max_score"`
	ReviewsLink  string  `json:"reviews_link"`
}

const defaultApplyURL = "https://careers.google.com/jobs/results"

func (j Job) ApplyURL() string {
	if j.JobGoogleLink != "" {
		return j.JobGoogleLink
	}
	return defaultApplyURL
}

func (j Job) Logo() string {
	if j.EmployerLogo == nil {
		return ""
	}
	return *j.EmployerLogo
}
