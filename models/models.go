package models

import (
	"time"

	"gorm.io/gorm"
)

// Run records a single conversion of a Notion export archive.
type Run struct {
	ID              uint `gorm:"primarykey"`
	CreatedAt       time.Time
	ArchivePath     string
	ArchiveHash     string
	OutputPath      string
	KeepAllCSV      bool
	SkipFrontmatter bool

	FoldersCollapsed int64
	FilesCleaned     int64
	FoldersCleaned   int64
	CSVsDeduped      int64
	FrontmatterAdded int64
	LinksUpdated     int64
	BasesCreated     int64
}

// Entry is one file or folder found in the expanded export tree. OriginalPath
// is the slash-separated path relative to the output root as extracted, and
// never changes; Name tracks the on-disk name as stages rename the entry.
// Entries are soft-deleted when the physical file is removed (CSV dedup,
// folder collapse, artifact removal).
type Entry struct {
	ID           uint `gorm:"primarykey"`
	RunID        uint `gorm:"uniqueIndex:idx_run_original_path"`
	Run          Run
	ParentID     *uint
	Parent       *Entry
	OriginalPath string `gorm:"uniqueIndex:idx_run_original_path"`
	Name         string
	IsDir        bool
	Level        uint
	DeletedAt    gorm.DeletedAt
}

// Rename is one committed row of the rename map: original path to final path,
// both relative to the output root.
type Rename struct {
	ID           uint `gorm:"primarykey"`
	RunID        uint `gorm:"uniqueIndex:idx_run_rename_original"`
	OriginalPath string `gorm:"uniqueIndex:idx_run_rename_original"`
	FinalPath    string
}

// Database is a resolved Notion database: a CSV table export plus the sibling
// folder holding one Markdown file per row.
type Database struct {
	ID            uint `gorm:"primarykey"`
	RunID         uint
	Name          string
	FolderEntryID uint
	FolderEntry   Entry
	CompleteCSVID *uint
	CompleteCSV   *Entry
	FilteredCSVID *uint
	FilteredCSV   *Entry
	Columns       []DatabaseColumn
	Keys          []DatabaseKey
}

// DatabaseColumn is one CSV header column, in header order. The first column
// is always "Name".
type DatabaseColumn struct {
	ID         uint `gorm:"primarykey"`
	DatabaseID uint
	Position   int
	Name       string
}

// DatabaseKey is a frontmatter key observed across a database's entries, in
// first-seen order. The union of keys becomes the column list of the
// generated view.
type DatabaseKey struct {
	ID         uint `gorm:"primarykey"`
	DatabaseID uint
	Position   int
	Name       string
}
