package importer

// rowSchemaJSON checks the shape of one CSV row after blank cells are dropped.
// Column-level limits (lengths, numeric precision) are enforced by the models.
const rowSchemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["full_name"],
	"properties": {
		"full_name":       {"type": "string", "minLength": 1},
		"email":           {"type": "string", "pattern": "^[^@\\s]+@[^@\\s]+$"},
		"graduation_year": {"type": "string", "pattern": "^[0-9]{4}$"},
		"cgpa":            {"$ref": "#/definitions/number"},
		"total_student_score": {"$ref": "#/definitions/number"},
		"overall_interview_score_out_of_100": {"$ref": "#/definitions/number"},
		"report_url":      {"$ref": "#/definitions/link"},
		"resume_url":      {"$ref": "#/definitions/link"},
		"recording_url":   {"$ref": "#/definitions/link"},
		"recoding_url":    {"$ref": "#/definitions/link"}
	},
	"patternProperties": {
		"^[a-z_]+_(score|max)$": {"$ref": "#/definitions/number"}
	},
	"definitions": {
		"number": {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]+)?$"},
		"link":   {"type": "string", "pattern": "^(https?|ftp)://"}
	}
}`
