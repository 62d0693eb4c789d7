package services

import (
	"fmt"
	"strings"

	"github.com/maxaizer/job-finder/internal/clients/jsearch"
)

// JobType is one of the job type filters offered to the user.
type JobType string

const (
	AnyJobType      JobType = ""
	FullTimeJobType JobType = "Full Time"
	PartTimeJobType JobType = "Part Time"
	RemoteJobType   JobType = "Remote"
	InternJobType   JobType = "Intern"
)

var JobTypes = []JobType{FullTimeJobType, PartTimeJobType, RemoteJobType, InternJobType}

func ParseJobType(s string) (JobType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AnyJobType, nil
	}
	for _, jobType := range JobTypes {
		if strings.EqualFold(s, string(jobType)) {
			return jobType, nil
		}
	}
	return AnyJobType, fmt.Errorf("unknown job type %q", s)
}

// BuildSearch turns user input into API parameters. Empty text produces parameters with an
// empty query, which JobQuery treats as a disabled search.
func BuildSearch(text string, jobType JobType, localeSuffix string) jsearch.SearchParameters {
	text = strings.TrimSpace(text)
	if text == "" {
		return jsearch.SearchParameters{}
	}

	params := jsearch.SearchParameters{Query: text}
	if localeSuffix != "" {
		params.Query = text + ", " + localeSuffix
	}

	switch jobType {
	case FullTimeJobType:
		params.EmploymentTypes = jsearch.FullTime
	case PartTimeJobType:
		params.EmploymentTypes = jsearch.PartTime
	case InternJobType:
		params.EmploymentTypes = jsearch.Intern
	case RemoteJobType:
		params.RemoteJobsOnly = true
	}

	return params
}
