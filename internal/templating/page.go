package templating

import (
	"go-forge/internal/forge"
	"go-forge/internal/generator"
	"go-forge/internal/model"
)

// PageData is what the layout and pages receive.
type PageData struct {
	Title       string
	CSRFToken   string
	CurrentYear int
	Flash       string
	Error       string

	Project   *model.Project
	Files     []model.FileEntry
	Templates []generator.Template
	Smoke     []model.SmokeResult
	SmokeRan  bool
	Notices   []forge.Notice
	File      *FileView
}

// FileView is the single-file page.
type FileView struct {
	Path    string
	Content string
	Regions []string
	Backups []model.BackupEntry
}

// Passed reports whether every smoke result passed.
func (p PageData) Passed() bool {
	return forge.Passed(p.Smoke)
}
