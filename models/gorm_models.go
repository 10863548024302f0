// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormWord is a row of the word corpus table.
type GormWord struct {
	gorm.Model
	Word       string `gorm:"not null;uniqueIndex:idx_words_word_difficulty"`
	Category   string `gorm:"not null"`
	Difficulty string `gorm:"not null;index;uniqueIndex:idx_words_word_difficulty"`
}

func (GormWord) TableName() string {
	return "words"
}

func (w GormWord) Entry() WordEntry {
	return WordEntry{Word: w.Word, Category: w.Category, Difficulty: Difficulty(w.Difficulty)}
}
