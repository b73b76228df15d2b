// Package docs registers the OpenAPI description of the console with swag.
// It mirrors the @-annotations on the handlers and is served at /swagger/.
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
    "paths": {
        "/": {
            "get": {
                "tags": ["session"],
                "summary": "Sign-in screen",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/signIn"}},
                    "303": {"description": "already signed in, redirect to /dashboard"}
                }
            }
        },
        "/login": {
            "post": {
                "tags": ["session"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/loginResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/loginResult"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/loginResult"}}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["session"],
                "summary": "Logout",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/loginResult"}}
                }
            }
        },
        "/session": {
            "get": {
                "tags": ["session"],
                "summary": "Current session",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session"}}
                }
            }
        },
        "/sign-up": {
            "get": {
                "tags": ["session"],
                "summary": "Sign-up screen",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session"}},
                    "303": {"description": "already signed in, redirect to /dashboard"}
                }
            },
            "post": {
                "tags": ["session"],
                "summary": "Merchant sign-up",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/signUpRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/signUpResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/signUpResult"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/signUpResult"}}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["screens"],
                "summary": "Dashboard",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK"},
                    "303": {"description": "not signed in"},
                    "503": {"description": "session still loading"}
                }
            }
        },
        "/view-profile": {
            "get": {
                "tags": ["screens"],
                "summary": "View profile",
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/access-denied": {
            "get": {
                "tags": ["screens"],
                "summary": "Access denied",
                "produces": ["application/json"],
                "responses": {"403": {"description": "Forbidden"}}
            }
        },
        "/api/{resource}/{id}": {
            "delete": {
                "tags": ["resources"],
                "summary": "Delete a record",
                "parameters": [
                    {"name": "resource", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-Confirm-Delete", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "428": {"description": "delete not confirmed"}
                }
            }
        }
    },
    "definitions": {
        "loginRequest": {
            "type": "object",
            "required": ["username", "password", "role"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["merchant", "admin"]},
                "rememberMe": {"type": "boolean"}
            }
        },
        "loginResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"}
            }
        },
        "signUpRequest": {
            "type": "object",
            "required": ["username", "email", "password", "termsAccepted"],
            "properties": {
                "username": {"type": "string"},
                "email": {"type": "string", "format": "email"},
                "password": {"type": "string"},
                "termsAccepted": {"type": "boolean"}
            }
        },
        "signUpResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "redirect": {"type": "string"}
            }
        },
        "session": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["loading", "anonymous", "authenticated"]},
                "identity": {"type": "object"}
            }
        },
        "signIn": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "rememberedUsername": {"type": "string"},
                "error": {"type": "string"},
                "roles": {"type": "array", "items": {"type": "string"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Back-office console",
	Description:      "Session lifecycle and role-gated screens of the merchant/admin back office.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
