package main

import (
	"net/http"
	"strconv"

	"github.com/dchoi22/todoapp/app/dto"
	"github.com/dchoi22/todoapp/app/errors"
	"github.com/dchoi22/todoapp/app/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

func toBookResponse(book *models.Book) dto.BookResponse {
	return dto.BookResponse{
		ID:            book.ID,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		Rating:        book.Rating,
		PublishedDate: book.PublishedDate,
	}
}

func bookIDParam(r *http.Request) (int64, *errors.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInput("book id must be a positive integer")
	}
	return id, nil
}

// listBooksHandler returns the catalog, optionally filtered by rating or
// published_date query parameters.
func (app *application) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	var books []models.Book

	switch {
	case r.URL.Query().Has("rating"):
		rating, err := strconv.Atoi(r.URL.Query().Get("rating"))
		if err != nil {
			writeErrorResponse(w, errors.NewInvalidInput("rating must be an integer"))
			return
		}
		if rating < 1 || rating > 5 {
			writeErrorResponse(w, errors.NewValidation("rating must be between 1 and 5"))
			return
		}
		books = app.bookService.ListByRating(rating)
	case r.URL.Query().Has("published_date"):
		year, err := strconv.Atoi(r.URL.Query().Get("published_date"))
		if err != nil {
			writeErrorResponse(w, errors.NewInvalidInput("published_date must be an integer"))
			return
		}
		if year < 2000 || year > 2030 {
			writeErrorResponse(w, errors.NewValidation("published_date must be between 2000 and 2030"))
			return
		}
		books = app.bookService.ListByPublishedDate(year)
	default:
		books = app.bookService.List()
	}

	out := make([]dto.BookResponse, 0, len(books))
	for i := range books {
		out = append(out, toBookResponse(&books[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (app *application) getBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, appErr := bookIDParam(r)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	book, appErr := app.bookService.Get(bookID)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(book))
}

func (app *application) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.BookRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeErrorResponse(w, errors.NewInvalidInput("invalid request body"))
		return
	}

	if appErr := validateRequest(&req); appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	book := app.bookService.Create(req)
	writeJSON(w, http.StatusCreated, toBookResponse(book))
}

func (app *application) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, appErr := bookIDParam(r)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	var req dto.BookRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeErrorResponse(w, errors.NewInvalidInput("invalid request body"))
		return
	}

	if appErr := validateRequest(&req); appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	if appErr := app.bookService.Update(bookID, req); appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, appErr := bookIDParam(r)
	if appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	if appErr := app.bookService.Delete(bookID); appErr != nil {
		writeErrorResponse(w, appErr)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
