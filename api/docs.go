// Package api holds the swagger specification served at /swagger/.
// Regenerate with `swag init -g internal/kindred/http/router.go -o api`.
package api

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Avallen Solutions",
            "url": "https://github.com/AvallenSolutions/kindredcollective"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "responses": {
                    "200": {"description": "token, user", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/api/auth/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "responses": {
                    "201": {"description": "user", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "403": {"description": "invite missing, inactive, expired or exhausted", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/api/invites/validate": {
            "get": {
                "tags": ["Invites"],
                "summary": "Validate an invite token",
                "parameters": [
                    {"type": "string", "name": "token", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "valid, token, targetRole", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "403": {"description": "inactive, expired or exhausted", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/api/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Me"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "user, member, organisation, orgRole", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/api/me/organisation": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Organisation"],
                "summary": "Get the caller's organisation",
                "responses": {
                    "200": {"description": "organisation, members", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Organisation"],
                "summary": "Create an organisation",
                "responses": {
                    "201": {"description": "organisation", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Organisation"],
                "summary": "Delete the caller's organisation",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        },
        "/api/suppliers/{slug}/claim": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Supplier claims"],
                "summary": "Start a supplier claim",
                "parameters": [
                    {"type": "string", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "claimId", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["Supplier claims"],
                "summary": "Verify a supplier claim",
                "parameters": [
                    {"type": "string", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "supplier", "schema": {"$ref": "#/definitions/httpx.Envelope"}},
                    "400": {"description": "Invalid verification code", "schema": {"$ref": "#/definitions/httpx.Envelope"}}
                }
            }
        }
    },
    "definitions": {
        "httpx.Envelope": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "data": {},
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT session token. Format: \"Bearer {token}\".",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Kindred Collective Membership API",
	Description:      "Invite-gated signup, organisation membership and supplier claim flows for the Kindred Collective marketplace.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
