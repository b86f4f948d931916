package sqlstore

import (
	"time"

	"github.com/MrSnakeDoc/pinned/internal/domain"
)

// commentRow is the persisted shape of a comment.
type commentRow struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	PageURL       string  `gorm:"not null;index:idx_comments_page_url"`
	Content       string  `gorm:"not null"`
	PositionX     float64 `gorm:"not null"`
	PositionY     float64 `gorm:"not null"`
	Status        string  `gorm:"size:50;not null;default:'OPEN';index:idx_comments_status"`
	Priority      string  `gorm:"size:50;not null;default:'MEDIUM'"`
	Category      string  `gorm:"size:100;not null;default:'GENERAL'"`
	AuthorName    string  `gorm:"default:''"`
	AuthorEmail   string  `gorm:"default:''"`
	ScreenshotURL string  `gorm:"default:''"`
	Resolution    string  `gorm:"size:1000;default:''"`
	AssignedTo    string  `gorm:"default:''"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (commentRow) TableName() string { return "comments" }

func toRow(c *domain.Comment) commentRow {
	return commentRow{
		PageURL:       c.PageURL,
		Content:       c.Content,
		PositionX:     c.PositionX,
		PositionY:     c.PositionY,
		Status:        string(c.Status),
		Priority:      string(c.Priority),
		Category:      string(c.Category),
		AuthorName:    c.AuthorName,
		AuthorEmail:   c.AuthorEmail,
		ScreenshotURL: c.ScreenshotURL,
		Resolution:    c.Resolution,
		AssignedTo:    c.AssignedTo,
	}
}

func (r commentRow) toDomain() *domain.Comment {
	return &domain.Comment{
		ID:            domain.Int64Ptr(r.ID),
		PageURL:       r.PageURL,
		Content:       r.Content,
		PositionX:     r.PositionX,
		PositionY:     r.PositionY,
		Status:        domain.Status(r.Status),
		Priority:      domain.Priority(r.Priority),
		Category:      domain.Category(r.Category),
		AuthorName:    r.AuthorName,
		AuthorEmail:   r.AuthorEmail,
		ScreenshotURL: r.ScreenshotURL,
		Resolution:    r.Resolution,
		AssignedTo:    r.AssignedTo,
		CreatedAt:     domain.TimePtr(r.CreatedAt.UTC()),
		UpdatedAt:     domain.TimePtr(r.UpdatedAt.UTC()),
	}
}
