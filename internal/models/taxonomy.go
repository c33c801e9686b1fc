package models

type Subject struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Topics []Topic `gorm:"foreignKey:SubjectID" json:"topics,omitempty"`
}

type Topic struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	SubjectID uint       `gorm:"not null;index" json:"subject_id"`
	Name      string     `gorm:"size:100;not null" json:"name"`
	Subtopics []Subtopic `gorm:"foreignKey:TopicID" json:"subtopics,omitempty"`
}

type Subtopic struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	TopicID uint   `gorm:"not null;index" json:"topic_id"`
	Name    string `gorm:"size:100;not null" json:"name"`
}
