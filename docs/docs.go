// Package docs registers the OpenAPI document served at /swagger/*.
package docs

import "github.com/swaggo/swag"

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
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Sign in and receive a bearer token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "token issued"}, "401": {"description": "bad credentials"}}
            }
        },
        "/auth/me": {
            "get": {"tags": ["auth"], "summary": "Current operator", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "principal"}}}
        },
        "/products": {
            "get": {
                "tags": ["products"],
                "summary": "List products",
                "parameters": [
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "limit", "type": "integer"},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "category", "type": "string"},
                    {"in": "query", "name": "isActive", "type": "boolean"},
                    {"in": "query", "name": "featured", "type": "boolean"},
                    {"in": "query", "name": "inStock", "type": "boolean"},
                    {"in": "query", "name": "sortBy", "type": "string"},
                    {"in": "query", "name": "sortOrder", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {"200": {"description": "page of products"}, "400": {"description": "invalid query"}}
            },
            "post": {"tags": ["products"], "summary": "Create product", "consumes": ["application/json", "multipart/form-data"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "created"}}}
        },
        "/products/{id}": {
            "get": {"tags": ["products"], "summary": "Get product", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "product"}, "404": {"description": "not found"}}},
            "put": {"tags": ["products"], "summary": "Update product", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "updated"}}},
            "delete": {"tags": ["products"], "summary": "Delete product", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "deleted"}}}
        },
        "/categories": {
            "get": {"tags": ["categories"], "summary": "List categories with product counts", "responses": {"200": {"description": "page of categories"}}},
            "post": {"tags": ["categories"], "summary": "Create category", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "created"}}}
        },
        "/categories/{id}": {
            "get": {"tags": ["categories"], "summary": "Get category", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "responses": {"200": {"description": "category"}}},
            "put": {"tags": ["categories"], "summary": "Update category", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "updated"}}},
            "delete": {"tags": ["categories"], "summary": "Delete category without products", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "deleted"}, "400": {"description": "category in use"}}}
        },
        "/team": {
            "get": {"tags": ["team"], "summary": "List team members", "responses": {"200": {"description": "page of members"}}},
            "post": {"tags": ["team"], "summary": "Create team member", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "created"}}}
        },
        "/certificates": {
            "get": {"tags": ["certificates"], "summary": "List certificates", "responses": {"200": {"description": "page of certificates"}}},
            "post": {"tags": ["certificates"], "summary": "Create certificate", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "created"}}}
        },
        "/contacts": {
            "get": {"tags": ["contacts"], "summary": "List contact methods", "responses": {"200": {"description": "page of contacts"}}},
            "post": {"tags": ["contacts"], "summary": "Create contact method", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "created"}}}
        },
        "/messages": {
            "get": {"tags": ["messages"], "summary": "List messages", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "page of messages"}}},
            "post": {"tags": ["messages"], "summary": "Submit a contact-form message", "responses": {"201": {"description": "stored with derived priority"}, "429": {"description": "rate limited"}}}
        },
        "/messages/export": {
            "get": {"tags": ["messages"], "summary": "Export messages", "parameters": [{"in": "query", "name": "format", "type": "string", "enum": ["csv", "xlsx"]}], "security": [{"BearerAuth": []}], "responses": {"200": {"description": "file"}}}
        },
        "/messages/{id}/notes": {
            "post": {"tags": ["messages"], "summary": "Append an operator note", "parameters": [{"in": "path", "name": "id", "type": "string", "required": true}], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "note added"}}}
        },
        "/dashboard/overview": {
            "get": {"tags": ["dashboard"], "summary": "Catalog overview", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "counts, price stats and recent activity"}}}
        },
        "/uploads": {
            "post": {"tags": ["uploads"], "summary": "Upload an image", "consumes": ["multipart/form-data"], "security": [{"BearerAuth": []}], "responses": {"201": {"description": "path and filename"}}}
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "catalogd admin API",
	Description:      "Content catalog administration backend.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
