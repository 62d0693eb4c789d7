package entities

import "github.com/go-playground/validator/v10"

// FavoriteJob is the bookmarked subset of a job listing kept in the local store.
type FavoriteJob struct {
	JobID        string `gorm:"column:job_id;type:TEXT;primaryKey;not null" json:"job_id" validate:"required"`
	JobTitle     string `gorm:"column:job_title;type:TEXT;not null" json:"job_title" validate:"required"`
	EmployerName string `gorm:"column:employer_name;type:TEXT;not null" json:"employer_name" validate:"required"`
	EmployerLogo string `gorm:"column:employer_logo;type:TEXT" json:"employer_logo"`
}

func (FavoriteJob) TableName() string {
	return "jobs"
}

var validate = validator.New()

func (f FavoriteJob) Validate() error {
	return validate.Struct(f)
}
