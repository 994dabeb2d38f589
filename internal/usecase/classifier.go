package usecase

import "github.com/user/course-harvester/internal/entity"

// Classifier decides whether an icon signature marks a single downloadable file.
type Classifier struct {
	table entity.ClassificationTable
}

// NewClassifier creates a classifier over table.
func NewClassifier(table entity.ClassificationTable) *Classifier {
	return &Classifier{table: table}
}

// Classify reports true only for signatures the table explicitly marks downloadable.
func (c *Classifier) Classify(sig entity.IconSignature) bool {
	return c.table.Verdict(sig)
}
