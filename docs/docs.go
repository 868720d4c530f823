// Package docs serves the OpenAPI description of the feedback API.
package docs

import (
	"sync"

	"github.com/swaggo/swag"
)

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Registration, login and tokens"},
        {"name": "Boards", "description": "Feedback boards and membership"},
        {"name": "Feedback", "description": "Feedback items, upvotes and analytics"},
        {"name": "Comments", "description": "Comments on feedback"}
    ],
    "paths": {
        "/auth/register": {"post": {"tags": ["Auth"], "summary": "Register a contributor account", "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}, "409": {"description": "Username or email taken"}}}},
        "/auth/login": {"post": {"tags": ["Auth"], "summary": "Log in with username and password", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}},
        "/auth/refresh": {"post": {"tags": ["Auth"], "summary": "Rotate a refresh token", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid or expired refresh token"}}}},
        "/auth/logout": {"post": {"tags": ["Auth"], "summary": "Revoke a refresh token", "responses": {"204": {"description": "No Content"}}}},
        "/auth/me": {"get": {"tags": ["Auth"], "summary": "Current user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/users/{id}/role": {"patch": {"tags": ["Auth"], "summary": "Change a user's role (admin)", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/boards": {
            "get": {"tags": ["Boards"], "summary": "List visible boards", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Boards"], "summary": "Create a board", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}}}
        },
        "/boards/{id}": {
            "get": {"tags": ["Boards"], "summary": "Get a board", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Boards"], "summary": "Update a board (admin)", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Boards"], "summary": "Delete a board and its feedback (admin)", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/feedback": {
            "get": {"tags": ["Feedback"], "summary": "List visible feedback", "security": [{"BearerAuth": []}], "parameters": [
                {"name": "board_id", "in": "query", "type": "string"},
                {"name": "status", "in": "query", "type": "string", "enum": ["open", "in_progress", "completed", "rejected"]},
                {"name": "tags", "in": "query", "type": "string"},
                {"name": "search", "in": "query", "type": "string"},
                {"name": "ordering", "in": "query", "type": "string", "enum": ["created_at", "-created_at", "updated_at", "-updated_at", "title", "-title", "status", "-status", "upvotes", "-upvotes"]}
            ], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid filter or ordering"}}},
            "post": {"tags": ["Feedback"], "summary": "Create feedback on a readable board", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}, "403": {"description": "Forbidden"}}}
        },
        "/feedback/summary": {"get": {"tags": ["Feedback"], "summary": "Feedback analytics", "security": [{"BearerAuth": []}], "parameters": [{"name": "days", "in": "query", "type": "integer", "default": 30, "minimum": 1, "maximum": 365}], "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid days"}}}},
        "/feedback/{id}": {
            "get": {"tags": ["Feedback"], "summary": "Get feedback with comments", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Feedback"], "summary": "Update feedback (creator, moderator, admin)", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["Feedback"], "summary": "Delete feedback (creator, moderator, admin)", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}
        },
        "/feedback/{id}/upvote": {"post": {"tags": ["Feedback"], "summary": "Toggle the caller's upvote", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}}},
        "/comments": {
            "get": {"tags": ["Comments"], "summary": "List comments", "security": [{"BearerAuth": []}], "parameters": [{"name": "feedback_id", "in": "query", "type": "string"}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Comments"], "summary": "Comment on feedback", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Validation failed"}, "403": {"description": "Forbidden"}}}
        },
        "/comments/{id}": {
            "get": {"tags": ["Comments"], "summary": "Get a comment", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"tags": ["Comments"], "summary": "Edit a comment (author, moderator, admin)", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["Comments"], "summary": "Delete a comment (author, moderator, admin)", "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Feedback Board API",
	Description:      "API for collecting, voting on and analysing product feedback.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

var registerOnce sync.Once

// Register makes SwaggerInfo available to the swagger UI handler.
func Register() {
	registerOnce.Do(func() {
		swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
	})
}
