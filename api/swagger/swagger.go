package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "KnowledgeBase API",
        "description": "Multi-tenant document and page backend with contributor-scoped access",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Registration and login"},
        {"name": "Users", "description": "Profile management"},
        {"name": "Categories", "description": "Document taxonomy, super role only for writes"},
        {"name": "Documents", "description": "Documents with contributor-scoped access"},
        {"name": "Contributors", "description": "Per-document access grants"},
        {"name": "Pages", "description": "Nested page hierarchy inside documents"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register user",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Email already in use"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Token issued"},
                    "400": {"description": "Invalid credentials"}
                }
            }
        },
        "/document/add": {
            "post": {
                "tags": ["Documents"],
                "summary": "Create document",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created with owner contributor"}
                }
            }
        },
        "/document/get/{id}": {
            "get": {
                "tags": ["Documents"],
                "summary": "Get document",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not a contributor"}
                }
            }
        },
        "/contributor": {
            "post": {
                "tags": ["Contributors"],
                "summary": "Grant access",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Granted"},
                    "409": {"description": "Duplicate grant"}
                }
            }
        },
        "/pages": {
            "post": {
                "tags": ["Pages"],
                "summary": "Create page",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Owner access required"}
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
