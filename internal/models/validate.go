// internal/models/validate.go
package models

import "placement-tracker/internal/common/validation"

// Validate checks the column-level constraints of each entity before it is written.

func (c *College) Validate() *validation.ValidationResult {
	return validation.NewChecker().
		Required("name", c.Name).
		MaxLength("name", c.Name, 255).
		Required("degree", c.Degree).
		MaxLength("degree", c.Degree, 100).
		Required("branch", c.Branch).
		MaxLength("branch", c.Branch, 100).
		Result()
}

func (s *Student) Validate() *validation.ValidationResult {
	return validation.NewChecker().
		Required("full_name", s.FullName).
		MaxLength("full_name", s.FullName, 255).
		OptionalMaxLength("phone", s.Phone, 20).
		OptionalMaxLength("email", s.Email, 255).
		Email("email", s.Email).
		OptionalMaxLength("gender", s.Gender, 20).
		NullDecimal("cgpa", s.CGPA, 4, 2).
		Result()
}

func (st *ScoreType) Validate() *validation.ValidationResult {
	return validation.NewChecker().
		Required("key", st.Key).
		MaxLength("key", st.Key, 50).
		Required("display_name", st.DisplayName).
		MaxLength("display_name", st.DisplayName, 100).
		Result()
}

func (a *Assessment) Validate() *validation.ValidationResult {
	c := validation.NewChecker().
		OptionalMaxLength("taken_at", a.TakenAt, 50).
		NullDecimal("total_student_score", a.TotalStudentScore, 10, 2).
		OptionalMaxLength("attempt_end_reason", a.AttemptEndReason, 255).
		Merge(validation.ValidateProctorDetails(a.ProctorDetails))
	return c.Result()
}

func (s *AssessmentScore) Validate() *validation.ValidationResult {
	return validation.NewChecker().
		Decimal("score", s.Score, 10, 2).
		Decimal("max_score", s.MaxScore, 10, 2).
		NullDecimal("time_spent", s.TimeSpent, 5, 2).
		NullDecimal("duration", s.Duration, 5, 2).
		Result()
}

func (i *Interview) Validate() *validation.ValidationResult {
	return validation.NewChecker().
		OptionalMaxLength("interview_date", i.InterviewDate, 50).
		NullDecimal("overall_interview_score_out_of_100", i.OverallInterviewScoreOutOf100, 5, 2).
		OptionalMaxLength("audit_final_status", i.AuditFinalStatus, 50).
		Result()
}
