package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the destination collection of an activity link
type Category string

const (
	CategoryCamp        Category = "camp"
	CategoryCompetition Category = "competition"
	CategoryOther       Category = "other"
)

// Categories lists every category in table order
var Categories = []Category{CategoryCamp, CategoryCompetition, CategoryOther}

// ParseCategory resolves a category name, case-insensitively
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryCamp, CategoryCompetition, CategoryOther:
		return c, nil
	}
	return "", fmt.Errorf("unknown activity category: %q", s)
}

// Table returns the name of the table backing the category
func (c Category) Table() string {
	switch c {
	case CategoryCamp:
		return "camps"
	case CategoryCompetition:
		return "competitions"
	default:
		return "others"
	}
}

// DefaultTopic is used when no title could be recovered from a source
const DefaultTopic = "General Event"

// EventRecord is the normalized output of one extraction.
// ImageURL is empty when no usable image was found; Deadline is nil when no
// date could be recovered.
type EventRecord struct {
	Topic    string
	ImageURL string
	Deadline *time.Time
}

// HasImage reports whether the record can be persisted
func (r *EventRecord) HasImage() bool {
	return r != nil && strings.TrimSpace(r.ImageURL) != ""
}

// Activity represents a stored activity row. The same shape backs the camps,
// competitions and others tables.
type Activity struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	HashKey   string     `gorm:"column:hash_link;size:64;not null;uniqueIndex" json:"hash_key"`
	Link      string     `gorm:"size:2048;not null" json:"link"`
	Topic     string     `gorm:"type:text" json:"topic"`
	ImageURL  string     `gorm:"column:image_url;type:text;not null" json:"image_url"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;index" json:"updated_at"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
}

// Camp, Competition and Other exist so that each table gets its own schema and
// index names on migration.
type Camp struct{ Activity }

func (Camp) TableName() string { return CategoryCamp.Table() }

type Competition struct{ Activity }

func (Competition) TableName() string { return CategoryCompetition.Table() }

type Other struct{ Activity }

func (Other) TableName() string { return CategoryOther.Table() }

// SchemaModels returns one model per category table
func SchemaModels() []interface{} {
	return []interface{}{&Camp{}, &Competition{}, &Other{}}
}
