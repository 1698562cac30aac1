// internal/models/models.go
package models

import "github.com/google/uuid"

// Models returns every persisted entity in foreign key dependency order.
func Models() []interface{} {
	return []interface{}{
		&College{},
		&Student{},
		&ScoreType{},
		&Assessment{},
		&AssessmentScore{},
		&Interview{},
	}
}

// assignID fills id with a fresh random identifier unless one was supplied.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
