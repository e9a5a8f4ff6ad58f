package models

type Book struct {
	ID            int64
	Title         string
	Author        string
	Description   string
	Rating        int
	PublishedDate int
}
