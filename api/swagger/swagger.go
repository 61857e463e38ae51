package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Flyer API",
        "description": "Flyer composition, approval, and publishing service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Flyers", "description": "Flyer composition and listings"},
        {"name": "Lifecycle", "description": "Submission, review, and expiry"},
        {"name": "Actions", "description": "ERP marketing actions"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/flyers": {
            "get": {
                "tags": ["Flyers"],
                "summary": "List the caller's flyers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Flyers"],
                "summary": "Create an empty draft flyer",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateFlyerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/flyers/active": {
            "get": {
                "tags": ["Flyers"],
                "summary": "List all active flyers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/flyers/{id}": {
            "get": {
                "tags": ["Flyers"],
                "summary": "Get flyer detail with the dense slot expansion",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            },
            "put": {
                "tags": ["Flyers"],
                "summary": "Update flyer metadata",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateFlyerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not editable in current state"}
                }
            },
            "delete": {
                "tags": ["Flyers"],
                "summary": "Delete a draft flyer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/flyers/{id}/pages": {
            "post": {
                "tags": ["Flyers"],
                "summary": "Add a page with 8 empty slots",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddPageRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Page number already exists"}
                }
            }
        },
        "/flyers/{id}/pages/sync": {
            "put": {
                "tags": ["Flyers"],
                "summary": "Replace the flyer's entire page set",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SyncPagesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Product without energy-class label"}
                }
            }
        },
        "/flyers/{id}/autosave": {
            "put": {
                "tags": ["Flyers"],
                "summary": "Autosave the flyer's page set",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SyncPagesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/flyers/{id}/pages/{pageID}/products": {
            "post": {
                "tags": ["Flyers"],
                "summary": "Place a product into an empty slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "pageID", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Placement rule violated"}
                }
            }
        },
        "/flyers/{id}/slots/{slotID}": {
            "delete": {
                "tags": ["Flyers"],
                "summary": "Reset a slot to empty",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "slotID", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/flyers/{id}/slots/{slotID}/position": {
            "put": {
                "tags": ["Flyers"],
                "summary": "Swap slot contents with another position",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "slotID", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePositionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/flyers/{id}/submit": {
            "post": {
                "tags": ["Lifecycle"],
                "summary": "Submit a flyer for approval",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation failed"}
                }
            }
        },
        "/flyers/{id}/approvals/decision": {
            "post": {
                "tags": ["Lifecycle"],
                "summary": "Record a reviewer decision",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DecisionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Decision already recorded"}
                }
            }
        },
        "/flyers/{id}/approvals": {
            "get": {
                "tags": ["Lifecycle"],
                "summary": "List a flyer's approval rows",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/flyers/{id}/versions": {
            "get": {
                "tags": ["Lifecycle"],
                "summary": "List a flyer's version snapshots",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/flyers/{id}/history": {
            "get": {
                "tags": ["Lifecycle"],
                "summary": "List a flyer's edit history",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/flyers/{id}/pdf": {
            "get": {
                "tags": ["Lifecycle"],
                "summary": "Download the generated flyer PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF bytes"},
                    "404": {"description": "No generated PDF"}
                }
            }
        },
        "/flyers/{id}/expire": {
            "post": {
                "tags": ["Lifecycle"],
                "summary": "Manually expire an active flyer",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Flyer is not active"}
                }
            }
        },
        "/actions": {
            "get": {
                "tags": ["Actions"],
                "summary": "List marketing actions from the ERP",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateFlyerRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"}
            }
        },
        "UpdateFlyerRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "actionId": {"type": "integer"},
                "actionName": {"type": "string"},
                "validFrom": {"type": "string", "format": "date-time"},
                "validTo": {"type": "string", "format": "date-time"}
            }
        },
        "AddPageRequest": {
            "type": "object",
            "required": ["pageNumber"],
            "properties": {
                "pageNumber": {"type": "integer"}
            }
        },
        "AddProductRequest": {
            "type": "object",
            "required": ["productId"],
            "properties": {
                "position": {"type": "integer"},
                "productId": {"type": "string"}
            }
        },
        "UpdatePositionRequest": {
            "type": "object",
            "properties": {
                "newPosition": {"type": "integer"}
            }
        },
        "SyncPagesRequest": {
            "type": "object",
            "required": ["pages"],
            "properties": {
                "pages": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/PageInput"}
                }
            }
        },
        "PageInput": {
            "type": "object",
            "required": ["pageNumber"],
            "properties": {
                "pageNumber": {"type": "integer"},
                "footerPromoId": {"type": "string"},
                "slots": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SlotInput"}
                }
            }
        },
        "SlotInput": {
            "type": "object",
            "properties": {
                "position": {"type": "integer"},
                "slotType": {"type": "string", "enum": ["EMPTY", "PRODUCT", "PROMO"]},
                "productId": {"type": "string"},
                "promoId": {"type": "string"},
                "promoSize": {"type": "string"}
            }
        },
        "DecisionRequest": {
            "type": "object",
            "required": ["decision"],
            "properties": {
                "decision": {"type": "string", "enum": ["approve", "pre_approve", "reject"]},
                "comment": {"type": "string"}
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
