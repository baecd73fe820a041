package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Coaching Portal API",
        "description": "Session-backed JSON surface of the coaching portal. Every call carries the portal_session cookie; the backend token never leaves the server.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Two-step portal login"},
        {"name": "Leads", "description": "Lead console with sticky selection and bulk outreach"}
    ],
    "paths": {
        "/auth/portal": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Choose login portal",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/PortalRequest"}}
                ],
                "responses": {
                    "200": {"description": "Session state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown portal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/back": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Return to portal choice",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Session state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign in",
                "description": "Exchanges credentials with the backend and checks the account role against the chosen portal. The session cookie is reissued on success.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Role does not match portal", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another attempt is in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Backend unreachable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign out",
                "consumes": ["application/json"],
                "responses": {
                    "204": {"description": "Session destroyed"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current session",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Session state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Not signed in", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leads": {
            "get": {
                "tags": ["Leads"],
                "summary": "Lead table",
                "description": "Filtered and sorted leads with city options and selection state",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "query", "name": "q", "type": "string", "description": "Search in name, email and phone"},
                    {"in": "query", "name": "role", "type": "string", "enum": ["all", "student", "parent"]},
                    {"in": "query", "name": "city", "type": "string", "description": "City or all"},
                    {"in": "query", "name": "sort", "type": "string", "enum": ["newest", "oldest", "name_asc", "name_desc"]}
                ],
                "responses": {
                    "200": {"description": "Lead view", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Session expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admin only", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leads/selection": {
            "post": {
                "tags": ["Leads"],
                "summary": "Change lead selection",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SelectionRequest"}}
                ],
                "responses": {
                    "200": {"description": "Lead view", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leads/bulk-notify": {
            "post": {
                "tags": ["Leads"],
                "summary": "Notify selected leads",
                "description": "Sends one message per selected lead, sequentially. Individual failures are counted, never surfaced; the selection is cleared afterwards.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/BulkNotifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "Every lead notified", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "207": {"description": "Some leads failed; meta.code is PARTIAL_BATCH", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Nothing selected or bad channel", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "A bulk send is already running for this session", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/leads/export": {
            "get": {
                "tags": ["Leads"],
                "summary": "Export leads",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File download"},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "PortalRequest": {
            "type": "object",
            "properties": {
                "portal": {"type": "string", "enum": ["student", "admin"]}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "portal": {"type": "string", "enum": ["student", "admin"]},
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "SelectionRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {
                "action": {"type": "string", "enum": ["toggle", "select_all", "deselect_all"]},
                "lead_id": {"type": "integer"},
                "q": {"type": "string"},
                "role": {"type": "string"},
                "city": {"type": "string"},
                "sort": {"type": "string"}
            }
        },
        "BulkNotifyRequest": {
            "type": "object",
            "required": ["channel"],
            "properties": {
                "channel": {"type": "string", "enum": ["email", "whatsapp"]}
            }
        },
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
