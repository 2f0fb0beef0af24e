package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Citadel Archive API",
        "description": "Local-first personal archive backend",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Events", "description": "Event lifecycle and files"},
        {"name": "Timeline", "description": "Confirmed timeline and exports"},
        {"name": "Capture", "description": "Mobile quick capture"},
        {"name": "Assistant", "description": "Language-model chat and classification"},
        {"name": "Settings", "description": "Setup wizard and settings"}
    ],
    "paths": {
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create note event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/import": {
            "post": {
                "tags": ["Events"],
                "summary": "Import a file into the inbox",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Events"],
                "summary": "Patch event details",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete event and files",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/events/{id}/classification": {
            "patch": {
                "tags": ["Events"],
                "summary": "Change event type",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateClassificationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}/answers/{question}": {
            "put": {
                "tags": ["Events"],
                "summary": "Record questionnaire answer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "question", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetAnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}/confirm": {
            "post": {
                "tags": ["Events"],
                "summary": "Confirm draft event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/events/{id}/archive": {
            "post": {
                "tags": ["Events"],
                "summary": "Archive confirmed event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/events/{id}/files/{fileId}/url": {
            "get": {
                "tags": ["Events"],
                "summary": "Generate signed download URL",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "fileId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}/files/{fileId}/download": {
            "get": {
                "tags": ["Events"],
                "summary": "Download file via signed token",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "fileId", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File bytes"}
                }
            }
        },
        "/search": {
            "get": {
                "tags": ["Events"],
                "summary": "Substring search over title, summary, and tags",
                "parameters": [
                    {"name": "q", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeline": {
            "get": {
                "tags": ["Timeline"],
                "summary": "Confirmed events grouped by month",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timeline/export": {
            "get": {
                "tags": ["Timeline"],
                "summary": "Export timeline as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File bytes"}
                }
            }
        },
        "/event-types/{type}/questions": {
            "get": {
                "tags": ["Timeline"],
                "summary": "Questionnaire for an event type",
                "parameters": [
                    {"name": "type", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/capture": {
            "post": {
                "tags": ["Capture"],
                "summary": "Submit mobile capture",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CaptureRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid link code"}
                }
            }
        },
        "/capture/pending": {
            "get": {
                "tags": ["Capture"],
                "summary": "List unconfirmed captures",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Missing or invalid link code"}
                }
            }
        },
        "/assistant/chat": {
            "post": {
                "tags": ["Assistant"],
                "summary": "Send one chat turn",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Assistant not configured"}
                }
            }
        },
        "/assistant/classify": {
            "post": {
                "tags": ["Assistant"],
                "summary": "Suggest a classification for a file",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Assistant not configured"}
                }
            }
        },
        "/settings": {
            "get": {
                "tags": ["Settings"],
                "summary": "Current settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not set up"}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Patch settings",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSettingsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings/setup": {
            "post": {
                "tags": ["Settings"],
                "summary": "Complete first-run wizard",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/settings/link-code": {
            "post": {
                "tags": ["Settings"],
                "summary": "Mint mobile pairing link code",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "Event": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "created_at": {"type": "integer"},
                "source": {"type": "string"},
                "event_type": {"type": "string"},
                "title": {"type": "string"},
                "summary": {"type": "string"},
                "user_answers": {"type": "object"},
                "tags": {"type": "array", "items": {"type": "string"}},
                "files": {"type": "array", "items": {"$ref": "#/definitions/FileRecord"}},
                "status": {"type": "string"},
                "is_mobile_capture": {"type": "boolean"},
                "transferred_to_desktop": {"type": "boolean"}
            }
        },
        "FileRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "original_filename": {"type": "string"},
                "hash": {"type": "string"},
                "size": {"type": "integer"},
                "mime_type": {"type": "string"},
                "storage_path": {"type": "string"},
                "expires_at": {"type": "integer"}
            }
        },
        "CreateNoteRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "summary": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
            },
            "required": ["title"]
        },
        "UpdateEventRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "summary": {"type": "string"},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "UpdateClassificationRequest": {
            "type": "object",
            "properties": {
                "event_type": {"type": "string"}
            },
            "required": ["event_type"]
        },
        "SetAnswerRequest": {
            "type": "object",
            "properties": {
                "answer": {"type": "string"}
            }
        },
        "CaptureRequest": {
            "type": "object",
            "properties": {
                "answers": {"type": "object"},
                "image_base64": {"type": "string"}
            },
            "required": ["answers"]
        },
        "ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "history": {"type": "array", "items": {"type": "object"}}
            },
            "required": ["message"]
        },
        "ClassifyRequest": {
            "type": "object",
            "properties": {
                "filename": {"type": "string"},
                "mime_type": {"type": "string"}
            },
            "required": ["filename"]
        },
        "SetupRequest": {
            "type": "object",
            "properties": {
                "root_path": {"type": "string"},
                "api_key": {"type": "string"}
            },
            "required": ["root_path"]
        },
        "UpdateSettingsRequest": {
            "type": "object",
            "properties": {
                "root_path": {"type": "string"},
                "api_key": {"type": "string"},
                "selected_event_id": {"type": "string"},
                "is_mobile_view": {"type": "boolean"}
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
