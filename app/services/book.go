package services

import (
	"errors"

	"github.com/dchoi22/todoapp/app/dto"
	appErrors "github.com/dchoi22/todoapp/app/errors"
	"github.com/dchoi22/todoapp/app/models"
	"github.com/dchoi22/todoapp/app/store"
)

// BookService is the unauthenticated counterpart of TodoService: plain CRUD
// over the in-memory catalog, no ownership concept.
type BookService struct {
	books store.BooksStore
}

func NewBookService(books store.BooksStore) *BookService {
	return &BookService{books: books}
}

func (s *BookService) List() []models.Book {
	return s.books.List()
}

func (s *BookService) ListByRating(rating int) []models.Book {
	return s.books.ListByRating(rating)
}

func (s *BookService) ListByPublishedDate(year int) []models.Book {
	return s.books.ListByPublishedDate(year)
}

func (s *BookService) Get(id int64) (*models.Book, *appErrors.AppError) {
	book, err := s.books.Get(id)
	if err != nil {
		return nil, appErrors.NewNotFound("book")
	}
	return book, nil
}

func (s *BookService) Create(req dto.BookRequest) *models.Book {
	book := &models.Book{
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Rating:        req.Rating,
		PublishedDate: req.PublishedDate,
	}
	s.books.Create(book)
	return book
}

func (s *BookService) Update(id int64, req dto.BookRequest) *appErrors.AppError {
	book := &models.Book{
		ID:            id,
		Title:         req.Title,
		Author:        req.Author,
		Description:   req.Description,
		Rating:        req.Rating,
		PublishedDate: req.PublishedDate,
	}
	if err := s.books.Update(book); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return appErrors.NewNotFound("book")
		}
		return appErrors.NewInternal("error updating book")
	}
	return nil
}

func (s *BookService) Delete(id int64) *appErrors.AppError {
	if err := s.books.Delete(id); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return appErrors.NewNotFound("book")
		}
		return appErrors.NewInternal("error deleting book")
	}
	return nil
}
