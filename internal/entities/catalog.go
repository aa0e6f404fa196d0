package entities

import "time"

// DateLayout is the only accepted calendar date format for author dates.
const DateLayout = "2006-01-02"

type Author struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"size:100;not null;index" json:"name"`
	BirthDate   *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	DateOfDeath *time.Time `gorm:"type:date" json:"date_of_death,omitempty"`
	Books       []Book     `gorm:"foreignKey:AuthorID" json:"books,omitempty"`
}

type Book struct {
	ID              uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ISBN            string `gorm:"uniqueIndex;size:13;not null" json:"isbn"`
	Title           string `gorm:"size:255;not null;index" json:"title"`
	PublicationYear *int   `json:"publication_year,omitempty"`
	AuthorID        uint   `gorm:"index;not null" json:"author_id"`
	Author          Author `gorm:"foreignKey:AuthorID" json:"author"`
}

func (Author) TableName() string {
	return "authors"
}

func (Book) TableName() string {
	return "books"
}

// String renders the author with their lifespan, e.g. "Ursula K. Le Guin (1929-10-21 - 2018-01-22)".
func (a Author) String() string {
	if a.BirthDate == nil && a.DateOfDeath == nil {
		return a.Name
	}
	return a.Name + " (" + FormatDate(a.BirthDate) + " - " + FormatDate(a.DateOfDeath) + ")"
}

// String renders the book as "'Title' by Author (ISBN: ...)".
func (b Book) String() string {
	return "'" + b.Title + "' by " + b.Author.Name + " (ISBN: " + b.ISBN + ")"
}

// FormatDate formats an optional date using DateLayout, returning "" for nil.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
