package store

import (
	"sync"

	"github.com/dchoi22/todoapp/app/models"
)

// ErrBookNotFound is returned by BooksStore operations when no record matches.
type bookNotFoundError struct{}

func (bookNotFoundError) Error() string { return "book not found" }

var ErrBookNotFound error = bookNotFoundError{}

// BooksStore abstracts the in-process book collection so the state lifecycle
// is owned by one component instead of package-level mutable data.
type BooksStore interface {
	List() []models.Book
	ListByRating(rating int) []models.Book
	ListByPublishedDate(year int) []models.Book
	Get(id int64) (*models.Book, error)
	Create(book *models.Book)
	Update(book *models.Book) error
	Delete(id int64) error
}

// MemoryBooksStore keeps books in memory behind a mutex. Id assignment
// belongs to the store: Create always overwrites the incoming id.
type MemoryBooksStore struct {
	mu     sync.RWMutex
	books  map[int64]models.Book
	nextID int64
}

func NewMemoryBooksStore() *MemoryBooksStore {
	return &MemoryBooksStore{
		books:  make(map[int64]models.Book),
		nextID: 1,
	}
}

// NewSeededBooksStore returns a store preloaded with the sample catalog.
func NewSeededBooksStore() *MemoryBooksStore {
	s := NewMemoryBooksStore()
	seed := []models.Book{
		{Title: "Computer Science Pro", Author: "ruby", Description: "A very nice book", Rating: 5, PublishedDate: 2004},
		{Title: "Be Fast with FastAPI", Author: "ruby", Description: "A great book", Rating: 5, PublishedDate: 2012},
		{Title: "Master Endpoints", Author: "ruby", Description: "An awesome book", Rating: 5, PublishedDate: 2015},
		{Title: "HP1", Author: "author1", Description: "description4", Rating: 2, PublishedDate: 2005},
		{Title: "HP2", Author: "author2", Description: "description5", Rating: 3, PublishedDate: 2004},
		{Title: "HP3", Author: "author3", Description: "description6", Rating: 1, PublishedDate: 2000},
	}
	for i := range seed {
		s.Create(&seed[i])
	}
	return s
}

func (s *MemoryBooksStore) List() []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Book, 0, len(s.books))
	// Map iteration order is random; return books ordered by id so the
	// listing is stable across calls.
	for id := int64(1); id < s.nextID; id++ {
		if b, ok := s.books[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

func (s *MemoryBooksStore) ListByRating(rating int) []models.Book {
	out := []models.Book{}
	for _, b := range s.List() {
		if b.Rating == rating {
			out = append(out, b)
		}
	}
	return out
}

func (s *MemoryBooksStore) ListByPublishedDate(year int) []models.Book {
	out := []models.Book{}
	for _, b := range s.List() {
		if b.PublishedDate == year {
			out = append(out, b)
		}
	}
	return out
}

func (s *MemoryBooksStore) Get(id int64) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	return &b, nil
}

func (s *MemoryBooksStore) Create(book *models.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book.ID = s.nextID
	s.nextID++
	s.books[book.ID] = *book
}

func (s *MemoryBooksStore) Update(book *models.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[book.ID]; !ok {
		return ErrBookNotFound
	}
	s.books[book.ID] = *book
	return nil
}

func (s *MemoryBooksStore) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(s.books, id)
	return nil
}
