package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maxaizer/job-finder/internal/clients/jsearch"
	"github.com/maxaizer/job-finder/internal/entities"
)

const maxHighlights = 5

func formatJobList(jobs []jsearch.Job, page int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Page %d\n", page)

	for i, job := range jobs {
		fmt.Fprintf(&sb, "\n%d. %s at %s\n", i+1, job.JobTitle, job.EmployerName)
		if location := formatLocation(job); location != "" {
			fmt.Fprintf(&sb, "%s\n", location)
		}
		fmt.Fprintf(&sb, "/job %s\n", job.JobID)
	}

	sb.WriteString("\nSend /more for the next page.")
	return sb.String()
}

func formatJobDetails(job *jsearch.JobDetails, isFavorite bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n%s\n", job.JobTitle, job.EmployerName)
	if location := formatLocation(job.Job); location != "" {
		fmt.Fprintf(&sb, "%s\n", location)
	}
	if salary := formatSalary(job.Job); salary != "" {
		fmt.Fprintf(&sb, "Salary: %s\n", salary)
	}
	if months := job.JobRequiredExperience.RequiredExperienceInMonths; months != nil {
		fmt.Fprintf(&sb, "Experience: %d months\n", *months)
	} else if job.JobRequiredExperience.NoExperienceRequired {
		sb.WriteString("Experience: not required\n")
	}

	writeHighlights(&sb, "Qualifications", job.JobHighlights.Qualifications)
	writeHighlights(&sb, "Responsibilities", job.JobHighlights.Responsibilities)
	writeHighlights(&sb, "Benefits", job.JobHighlights.Benefits)

	fmt.Fprintf(&sb, "\nApply: %s\n", job.ApplyURL())
	if isFavorite {
		fmt.Fprintf(&sb, "In favorites. /fav %s to remove.", job.JobID)
	} else {
		fmt.Fprintf(&sb, "/fav %s to add to favorites.", job.JobID)
	}
	return sb.String()
}

func formatFavorites(favorites []entities.FavoriteJob) string {
	if len(favorites) == 0 {
		return "You have no favorite jobs yet."
	}

	var sb strings.Builder
	sb.WriteString("Favorite jobs:\n")
	for i, job := range favorites {
		fmt.Fprintf(&sb, "\n%d. %s at %s\n/job %s\n", i+1, job.JobTitle, job.EmployerName, job.JobID)
	}
	return sb.String()
}

func formatLocation(job jsearch.Job) string {
	var parts []string
	for _, part := range []string{job.JobCity, job.JobState, job.JobCountry} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	location := strings.Join(parts, ", ")
	if job.JobIsRemote {
		if location == "" {
			return "Remote"
		}
		location += " (remote)"
	}
	return location
}

func formatSalary(job jsearch.Job) string {
	if job.JobMinSalary == nil && job.JobMaxSalary == nil {
		return ""
	}

	var amount string
	switch {
	case job.JobMinSalary != nil && job.JobMaxSalary != nil:
		amount = formatAmount(*job.JobMinSalary) + " - " + formatAmount(*job.JobMaxSalary)
	case job.JobMinSalary != nil:
		amount = "from " + formatAmount(*job.JobMinSalary)
	default:
		amount = "up to " + formatAmount(*job.JobMaxSalary)
	}

	if job.JobSalaryCurrency != nil {
		amount += " " + *job.JobSalaryCurrency
	}
	if job.JobSalaryPeriod != nil {
		amount += " per " + strings.ToLower(*job.JobSalaryPeriod)
	}
	return amount
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeHighlights(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for i, item := range items {
		if i == maxHighlights {
			fmt.Fprintf(sb, "...and %d more\n", len(items)-maxHighlights)
			break
		}
		fmt.Fprintf(sb, "- %s\n", item)
	}
}
