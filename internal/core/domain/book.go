package domain

import (
	"fmt"
	"strings"
)

// Language is the catalog language tag stored on a book.
type Language string

const (
	LanguageCroatian Language = "HR"
	LanguageEnglish  Language = "EN"
	LanguageGerman   Language = "DE"
	LanguageFrench   Language = "FR"
)

var languageNames = map[Language]string{
	LanguageCroatian: "Croatian",
	LanguageEnglish:  "English",
	LanguageGerman:   "German",
	LanguageFrench:   "French",
}

func (l Language) DisplayName() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return string(l)
}

func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := languageNames[l]; !ok {
		return "", fmt.Errorf("unknown language: %q", s)
	}
	return l, nil
}

// Category is the catalog category tag stored on a book.
type Category string

const (
	CategoryFiction    Category = "FICTION"
	CategoryNonFiction Category = "NON_FICTION"
	CategoryHistory    Category = "HISTORY"
	CategoryBiography  Category = "BIOGRAPHY"
	CategoryScience    Category = "SCIENCE"
	CategoryFantasy    Category = "FANTASY"
	CategoryClassics   Category = "CLASSICS"
)

var categoryNames = map[Category]string{
	CategoryFiction:    "Fiction",
	CategoryNonFiction: "Non-fiction",
	CategoryHistory:    "History",
	CategoryBiography:  "Biography",
	CategoryScience:    "Science",
	CategoryFantasy:    "Fantasy",
	CategoryClassics:   "Classics",
}

func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if _, ok := categoryNames[c]; !ok {
		return "", fmt.Errorf("unknown category: %q", s)
	}
	return c, nil
}

// Book is a catalog entry. The fulfillment core only reads Price and
// mutates Quantity through the reservation path; quantity never goes
// negative because the decrement is conditional at the store level.
type Book struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
	Language Language `json:"language"`
	Category Category `json:"category"`
}
