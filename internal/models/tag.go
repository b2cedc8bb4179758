package models

// Tag is a lowercase topic label extracted from post bodies.
type Tag struct {
	Name  string `gorm:"primaryKey;size:30" json:"name"`
	Posts []Post `gorm:"many2many:post_tags" json:"-"`
}

// TableName specifies the table name for GORM
func (Tag) TableName() string {
	return "tags"
}
