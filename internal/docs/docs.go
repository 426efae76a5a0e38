// Package docs registers the OpenAPI document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/books": {
            "get": {
                "description": "Get all books ordered by id",
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "List books",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.Book"}}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Create a book with a caller-chosen positive id",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Create a book",
                "parameters": [
                    {"description": "Book to create", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.CreateBookRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.Book"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "409": {"description": "Duplicate id or title", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}}
                }
            }
        },
        "/books/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Welcome message",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.WelcomeResponse"}}
                }
            }
        },
        "/books/search": {
            "get": {
                "description": "Case-insensitive title substring search. When only id is given, returns that book as a one-element list.",
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Search books",
                "parameters": [
                    {"type": "string", "description": "Title substring", "name": "title", "in": "query"},
                    {"type": "integer", "description": "Book ID", "name": "id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.Book"}}},
                    "400": {"description": "Missing or invalid parameters", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "404": {"description": "Book not found", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}}
                }
            }
        },
        "/books/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Get a book by ID",
                "parameters": [
                    {"type": "integer", "description": "Book ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Book"}},
                    "400": {"description": "Invalid ID", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "404": {"description": "Book not found", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}}
                }
            },
            "put": {
                "description": "Partially update a book. Empty title, author or genre values are ignored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Update a book",
                "parameters": [
                    {"type": "integer", "description": "Book ID", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to update", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.UpdateBookRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.Book"}},
                    "400": {"description": "Invalid ID or payload", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "404": {"description": "Book not found", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "409": {"description": "Duplicate title", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["books"],
                "summary": "Delete a book",
                "parameters": [
                    {"type": "integer", "description": "Book ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No content", "schema": {"type": "string"}},
                    "400": {"description": "Invalid ID", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "404": {"description": "Book not found", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/validation.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.HealthResponse"}}
                }
            }
        },
        "/ready": {
            "get": {
                "description": "Reports whether the book store answers a ping",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ReadyResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.ReadyResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.DBStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handler.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "integer"},
                "version": {"type": "string"}
            }
        },
        "handler.ReadyResponse": {
            "type": "object",
            "properties": {
                "db": {"$ref": "#/definitions/handler.DBStatus"},
                "status": {"type": "string"},
                "uptime": {"type": "integer"},
                "version": {"type": "string"}
            }
        },
        "handler.Book": {
            "type": "object",
            "properties": {
                "availabilityStatus": {"type": "string", "example": "Available"},
                "author": {"type": "string", "example": "Frank Herbert"},
                "genre": {"type": "string", "example": "Sci-Fi"},
                "id": {"type": "integer", "example": 1},
                "title": {"type": "string", "example": "Dune"}
            }
        },
        "handler.CreateBookRequest": {
            "type": "object",
            "required": ["author", "availabilityStatus", "genre", "id", "title"],
            "properties": {
                "availabilityStatus": {"type": "string", "example": "Available"},
                "author": {"type": "string", "example": "Frank Herbert"},
                "genre": {"type": "string", "example": "Sci-Fi"},
                "id": {"type": "integer", "example": 1},
                "title": {"type": "string", "example": "Dune"}
            }
        },
        "handler.UpdateBookRequest": {
            "type": "object",
            "properties": {
                "availabilityStatus": {"type": "string", "example": "Checked Out"},
                "author": {"type": "string", "example": "Frank Herbert"},
                "genre": {"type": "string", "example": "Science Fiction"},
                "title": {"type": "string", "example": "Dune Messiah"}
            }
        },
        "handler.WelcomeResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Welcome to the Library API!"}
            }
        },
        "validation.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/validation.FieldError"}},
                "message": {"type": "string"}
            }
        },
        "validation.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"},
                "rule": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Library Books API",
	Description:      "CRUD and title search over the library book catalog.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
