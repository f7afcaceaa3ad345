package models

import (
	"strings"
	"time"
)

// Project gruppiert Zitationen, z.B. für eine Arbeit oder ein Kapitel.
type Project struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name" gorm:"size:200;not null"`

	// Normalisierter Name für die case-insensitive Eindeutigkeit
	NameNorm string `json:"-" gorm:"uniqueIndex;size:200;not null"`
}

func (Project) TableName() string { return "projects" }

// NormalizeProjectName liefert den Schlüssel für die Namens-Eindeutigkeit.
func NormalizeProjectName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// ProjectCitation verknüpft ein Projekt mit einer (evtl. geteilten) Zitation.
// Eine Zitation ohne Verknüpfung ist verwaist und wird gelöscht.
type ProjectCitation struct {
	ProjectID  uint      `json:"project_id" gorm:"primaryKey;autoIncrement:false"`
	CitationID uint      `json:"citation_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ProjectCitation) TableName() string { return "project_citations" }
