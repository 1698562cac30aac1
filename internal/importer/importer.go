// internal/importer/importer.go
package importer

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/common/metrics"
	"placement-tracker/internal/common/validation"
	"placement-tracker/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the subset of the store the importer writes through.
type Repository interface {
	FindOrCreateCollege(ctx context.Context, name, degree, branch string) (*models.College, bool, error)
	GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	FindStudentByEmail(ctx context.Context, email string) (*models.Student, error)
	CreateStudent(ctx context.Context, st *models.Student) error
	ListAssessmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]models.Assessment, error)
	CreateAssessment(ctx context.Context, a *models.Assessment) error
	CreateAssessmentScore(ctx context.Context, score *models.AssessmentScore) error
	FindInterview(ctx context.Context, studentID uuid.UUID, date string) (*models.Interview, error)
	CreateInterview(ctx context.Context, i *models.Interview) error
}

// ScoreTypeResolver resolves a score type by key, usually through the cache.
type ScoreTypeResolver interface {
	Get(ctx context.Context, key string) (*models.ScoreType, error)
}

// Indexer projects imported students into search.
type Indexer interface {
	IndexStudent(ctx context.Context, st *models.Student, college *models.College) error
}

// ScoreKeys are the score column prefixes, read as <key>_score and <key>_max.
var ScoreKeys = []string{"coding", "dsa", "cs_fund", "quant", "verbal", "logical"}

// Summary counts what an import did.
type Summary struct {
	Rows               int `json:"rows"`
	Failed             int `json:"failed"`
	CollegesCreated    int `json:"colleges_created"`
	StudentsCreated    int `json:"students_created"`
	StudentsExisting   int `json:"students_existing"`
	AssessmentsCreated int `json:"assessments_created"`
	ScoresCreated      int `json:"scores_created"`
	ScoresSkipped      int `json:"scores_skipped"`
	InterviewsCreated  int `json:"interviews_created"`
	InterviewsExisting int `json:"interviews_existing"`
	Indexed            int `json:"indexed"`

	Errors []error `json:"-"`
}

// Row import outcomes, used as metric labels.
const (
	outcomeImported = "imported"
	outcomeFailed   = "failed"
)

type Importer struct {
	repo       Repository
	scoreTypes ScoreTypeResolver
	index      Indexer
	logger     logger.Logger
	rowTimeout time.Duration
	now        func() time.Time

	colleges map[string]*models.College
}

// New builds an importer. index may be nil.
func New(repo Repository, scoreTypes ScoreTypeResolver, index Indexer, cfg config.ImportConfig, log logger.Logger) *Importer {
	timeout := config.GetDuration(cfg.RowTimeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Importer{
		repo:       repo,
		scoreTypes: scoreTypes,
		index:      index,
		logger:     log,
		rowTimeout: timeout,
		now:        time.Now,
		colleges:   make(map[string]*models.College),
	}
}

// row is one CSV record keyed by normalized header.
type row struct {
	line   int
	values map[string]string
}

// get returns the first non-blank value among the given headers.
func (r row) get(names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(r.values[n]); v != "" {
			return v
		}
	}
	return ""
}

func (r row) optional(names ...string) *string {
	if v := r.get(names...); v != "" {
		return &v
	}
	return nil
}

// Import reads a CSV with a header row and loads every record. Row failures are
// recorded in the summary and do not stop the import; only unreadable input and
// context cancellation are returned as errors.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Summary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Summary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns := normalizeHeader(header)

	summary := &Summary{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if stderrors.As(err, &parseErr) {
				im.fail(summary, line, err)
				continue
			}
			return summary, fmt.Errorf("read line %d: %w", line, err)
		}
		if blank(record) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		summary.Rows++
		rec := row{line: line, values: make(map[string]string, len(columns))}
		for i, name := range columns {
			if i < len(record) && name != "" {
				rec.values[name] = record[i]
			}
		}

		if err := im.importRow(ctx, rec, summary); err != nil {
			im.fail(summary, line, err)
			continue
		}
		metrics.ImportRowsTotal.WithLabelValues(outcomeImported).Inc()
	}

	im.logger.Info("CSV import finished", map[string]interface{}{
		"rows":                summary.Rows,
		"failed":              summary.Failed,
		"students_created":    summary.StudentsCreated,
		"assessments_created": summary.AssessmentsCreated,
		"interviews_created":  summary.InterviewsCreated,
	})
	return summary, nil
}

func (im *Importer) fail(summary *Summary, line int, err error) {
	rowErr := errors.NewImportRowFailedError(line, err)
	summary.Failed++
	summary.Errors = append(summary.Errors, rowErr)
	metrics.ImportRowsTotal.WithLabelValues(outcomeFailed).Inc()
	im.logger.Warn("Skipping CSV row", map[string]interface{}{
		"line":  line,
		"error": err.Error(),
	})
}

func (im *Importer) importRow(ctx context.Context, rec row, summary *Summary) error {
	if res, err := rowSchema.ValidateDocument(documentOf(rec)); err != nil {
		return err
	} else if !res.Valid {
		return errors.NewValidationFailedError("csv", res.Summary())
	}

	ctx, cancel := context.WithTimeout(ctx, im.rowTimeout)
	defer cancel()

	college, err := im.college(ctx, rec, summary)
	if err != nil {
		return err
	}

	student, err := im.student(ctx, rec, college, summary)
	if err != nil {
		return err
	}

	if err := im.assessment(ctx, rec, student, summary); err != nil {
		return err
	}
	if err := im.interview(ctx, rec, student, summary); err != nil {
		return err
	}

	if im.index != nil {
		if err := im.index.IndexStudent(ctx, student, college); err != nil {
			// the database is the source of truth; search can be rebuilt
			im.logger.Warn("Failed to index imported student", map[string]interface{}{
				"user_id": student.UserID.String(),
				"error":   err.Error(),
			})
		} else {
			summary.Indexed++
		}
	}
	return nil
}

// college returns nil when the row has no complete college triple.
func (im *Importer) college(ctx context.Context, rec row, summary *Summary) (*models.College, error) {
	name, degree, branch := rec.get("college_name"), rec.get("college_degree"), rec.get("branch")
	if name == "" || degree == "" || branch == "" {
		return nil, nil
	}

	key := name + "|" + degree + "|" + branch
	if c, ok := im.colleges[key]; ok {
		return c, nil
	}

	c, created, err := im.repo.FindOrCreateCollege(ctx, name, degree, branch)
	if err != nil {
		return nil, err
	}
	if created {
		summary.CollegesCreated++
	}
	im.colleges[key] = c
	return c, nil
}

// student finds the row's student by explicit id, then by email, and creates
// it when neither matches.
func (im *Importer) student(ctx context.Context, rec row, college *models.College, summary *Summary) (*models.Student, error) {
	var id uuid.UUID
	if raw := rec.get("nxtwave_user_id", "user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, invalid("user_id", "not a UUID: "+raw)
		}
		id = parsed
		st, err := im.repo.GetStudent(ctx, id)
		if err == nil {
			summary.StudentsExisting++
			return st, nil
		}
		if !stderrors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	email := strings.ToLower(rec.get("email"))
	if email != "" && id == uuid.Nil {
		st, err := im.repo.FindStudentByEmail(ctx, email)
		if err == nil {
			summary.StudentsExisting++
			return st, nil
		}
		if !stderrors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	st := &models.Student{
		UserID:    id,
		FullName:  rec.get("full_name"),
		Phone:     rec.optional("phone", "phone_number"),
		Gender:    rec.optional("gender"),
		ResumeURL: rec.optional("resume_url"),
	}
	if email != "" {
		st.Email = &email
	}
	if v := rec.get("graduation_year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return nil, invalid("graduation_year", "not a year: "+v)
		}
		st.GraduationYear = &year
	}
	cgpa, err := nullDecimal(rec, "cgpa")
	if err != nil {
		return nil, err
	}
	st.CGPA = cgpa
	if college != nil {
		st.CollegeID = &college.CollegeID
		st.College = college
	}

	if err := im.repo.CreateStudent(ctx, st); err != nil {
		return nil, err
	}
	summary.StudentsCreated++
	return st, nil
}

// assessment attaches the row's scores to the student's latest assessment,
// creating one when the student has none.
func (im *Importer) assessment(ctx context.Context, rec row, student *models.Student, summary *Summary) error {
	if rec.get("report_url", "total_student_score", "percent") == "" && !hasScores(rec) {
		return nil
	}

	existing, err := im.repo.ListAssessmentsByStudent(ctx, student.UserID)
	if err != nil {
		return err
	}

	var a *models.Assessment
	if len(existing) > 0 {
		a = &existing[0]
	} else {
		total, err := nullDecimal(rec, "total_student_score")
		if err != nil {
			return err
		}
		takenAt := rec.get("taken_at", "assessment_date", "interview_date")
		if takenAt == "" {
			takenAt = im.now().UTC().Format(time.RFC3339)
		}
		a = &models.Assessment{
			StudentID:         student.UserID,
			TakenAt:           &takenAt,
			ReportURL:         rec.optional("report_url"),
			TotalStudentScore: total,
			AttemptEndReason:  rec.optional("attempt_end_reason"),
		}
		if err := im.repo.CreateAssessment(ctx, a); err != nil {
			return err
		}
		summary.AssessmentsCreated++
	}

	for _, key := range ScoreKeys {
		if err := im.score(ctx, rec, a, key, summary); err != nil {
			return err
		}
	}
	return nil
}

func hasScores(rec row) bool {
	for _, key := range ScoreKeys {
		if rec.get(key+"_score") != "" && rec.get(key+"_max") != "" {
			return true
		}
	}
	return false
}

func (im *Importer) score(ctx context.Context, rec row, a *models.Assessment, key string, summary *Summary) error {
	rawScore, rawMax := rec.get(key+"_score"), rec.get(key+"_max")
	if rawScore == "" || rawMax == "" {
		return nil
	}
	score, err := decimal.NewFromString(rawScore)
	if err != nil {
		return invalid(key+"_score", "not a number: "+rawScore)
	}
	maxScore, err := decimal.NewFromString(rawMax)
	if err != nil {
		return invalid(key+"_max", "not a number: "+rawMax)
	}

	st, err := im.scoreTypes.Get(ctx, key)
	if stderrors.Is(err, errors.ErrNotFound) {
		im.logger.Debug("Unknown score type, skipping column", map[string]interface{}{"key": key})
		summary.ScoresSkipped++
		return nil
	}
	if err != nil {
		return err
	}

	err = im.repo.CreateAssessmentScore(ctx, &models.AssessmentScore{
		AssessmentID: a.AssessmentID,
		ScoreTypeID:  st.ScoreTypeID,
		Score:        score.Round(2),
		MaxScore:     maxScore.Round(2),
	})
	switch {
	case err == nil:
		summary.ScoresCreated++
	case stderrors.Is(err, errors.ErrDuplicate):
		summary.ScoresSkipped++
	default:
		return err
	}
	return nil
}

// interview records at most one interview per (student, interview_date).
func (im *Importer) interview(ctx context.Context, rec row, student *models.Student, summary *Summary) error {
	date := rec.get("interview_date")
	if date == "" {
		return nil
	}

	_, err := im.repo.FindInterview(ctx, student.UserID, date)
	if err == nil {
		summary.InterviewsExisting++
		return nil
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return err
	}

	i := &models.Interview{
		StudentID:        student.UserID,
		InterviewDate:    &date,
		RecordingURL:     rec.optional("recording_url", "recoding_url"),
		Notes:            rec.optional("interview_notes", "notes"),
		AuditFinalStatus: rec.optional("audit_final_status", "overall_label"),
	}
	ratings := []struct {
		dst   **int
		names []string
	}{
		{&i.CommunicationRating, []string{"communication_rating"}},
		{&i.CoreCSTheoryRating, []string{"core_cs_theory_rating", "core_cs_theory"}},
		{&i.DSATheoryRating, []string{"dsa_theory_rating", "dsa_theory"}},
		{&i.Problem1SolvingRating, []string{"problem1_solving_rating"}},
		{&i.Problem1CodeImplementationRating, []string{"problem1_code_implementation_rating", "problem1_solving_rating_code"}},
		{&i.Problem2SolvingRating, []string{"problem2_solving_rating"}},
		{&i.Problem2CodeImplementationRating, []string{"problem2_code_implementation_rating", "problem2_solving_rating_code"}},
	}
	for _, r := range ratings {
		v, err := rating(rec, r.names...)
		if err != nil {
			return err
		}
		*r.dst = v
	}
	overall, err := nullDecimal(rec, "overall_interview_score_out_of_100")
	if err != nil {
		return err
	}
	i.OverallInterviewScoreOutOf100 = overall

	if err := im.repo.CreateInterview(ctx, i); err != nil {
		return err
	}
	summary.InterviewsCreated++
	return nil
}

// rating parses an integer rating; fractional sheet values are rounded.
func rating(rec row, names ...string) (*int, error) {
	raw := rec.get(names...)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, invalid(names[0], "not a number: "+raw)
	}
	v := int(d.Round(0).IntPart())
	return &v, nil
}

func invalid(field, msg string) error {
	return errors.NewValidationFailedError("csv", field+": "+msg)
}

func nullDecimal(rec row, name string) (decimal.NullDecimal, error) {
	raw := rec.get(name)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, invalid(name, "not a number: "+raw)
	}
	return decimal.NewNullDecimal(d.Round(2)), nil
}

// normalizeHeader lower-cases headers and turns spaces into underscores, so
// "Nxtwave User ID" and "DSA_Theory" match their column names.
func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		out[i] = strings.ReplaceAll(strings.ToLower(h), " ", "_")
	}
	return out
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// documentOf exposes the trimmed row to the JSON schema check.
func documentOf(rec row) map[string]interface{} {
	doc := make(map[string]interface{}, len(rec.values))
	for k, v := range rec.values {
		if v = strings.TrimSpace(v); v != "" {
			doc[k] = v
		}
	}
	return doc
}

var rowSchema = validation.MustCompileSchema(rowSchemaJSON)
