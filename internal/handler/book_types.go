package handler

import "github.com/snnyvrz/library-api/internal/model"

type CreateBookRequest struct {
	ID                 *int64  `json:"id" binding:"required,gt=0" example:"1"`
	Title              string  `json:"title" binding:"required" example:"Dune"`
	Author             string  `json:"author" binding:"required" example:"Frank Herbert"`
	Genre              string  `json:"genre" binding:"required" example:"Sci-Fi"`
	AvailabilityStatus *string `json:"availabilityStatus" binding:"required" example:"Available"`
}

// UpdateBookRequest holds a partial update. Empty title, author or genre
// values are ignored; an empty availabilityStatus is stored as is.
type UpdateBookRequest struct {
	Title              *string `json:"title" example:"Dune Messiah"`
	Author             *string `json:"author" example:"Frank Herbert"`
	Genre              *string `json:"genre" example:"Science Fiction"`
	AvailabilityStatus *string `json:"availabilityStatus" example:"Checked Out"`
}

type Book struct {
	ID                 int64  `json:"id" example:"1"`
	Title              string `json:"title" example:"Dune"`
	Author             string `json:"author" example:"Frank Herbert"`
	Genre              string `json:"genre" example:"Sci-Fi"`
	AvailabilityStatus string `json:"availabilityStatus" example:"Available"`
}

type WelcomeResponse struct {
	Message string `json:"message" example:"Welcome to the Library API!"`
}

func toBookResponse(b model.Book) Book {
	return Book{
		ID:                 b.ID,
		Title:              b.Title,
		Author:             b.Author,
		Genre:              b.Genre,
		AvailabilityStatus: b.AvailabilityStatus,
	}
}

func toBookListResponse(books []model.Book) []Book {
	resp := make([]Book, 0, len(books))
	for _, b := range books {
		resp = append(resp, toBookResponse(b))
	}
	return resp
}
