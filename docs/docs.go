// Package docs registers the OpenAPI description served at /docs.
// Regenerate with: swag init -g cmd/businessdailydeals/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Business Daily Deals",
            "url": "https://businessdailydeals.co.za"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a buyer or supplier",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Email already registered"}, "422": {"description": "Validation failed"}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}],
                "responses": {"200": {"description": "Token issued"}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/deals": {
            "get": {
                "tags": ["Deals"],
                "summary": "List live deals",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "type", "in": "query", "enum": ["hot", "regular"]},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "supplierId", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Deals"],
                "summary": "Post a deal",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.CreateDealRequest"}}],
                "responses": {"201": {"description": "Created"}, "402": {"description": "Insufficient credits"}, "422": {"description": "Validation failed"}}
            }
        },
        "/credits/purchase": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Payments"],
                "summary": "Buy credits",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/models.PurchaseRequest"}}],
                "responses": {"201": {"description": "Signed PayFast form"}, "422": {"description": "Invalid credit amount"}}
            }
        },
        "/coupons/{code}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Coupons"],
                "summary": "Check a coupon code",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}],
                "responses": {"200": {"description": "Validation result"}}
            }
        },
        "/coupons/{code}/redeem": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Coupons"],
                "summary": "Redeem a coupon",
                "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "code", "in": "path", "required": true}],
                "responses": {"200": {"description": "Redeemed"}, "409": {"description": "Already redeemed or expired"}}
            }
        }
    },
    "definitions": {
        "models.RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "role", "firstName", "lastName"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8},
                "role": {"type": "string", "enum": ["buyer", "supplier"]},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "companyName": {"type": "string"},
                "vatNumber": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "models.CreateDealRequest": {
            "type": "object",
            "required": ["title", "description", "category", "price", "dealType"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "price": {"type": "string", "example": "1200.50"},
                "originalPrice": {"type": "string"},
                "dealType": {"type": "string", "enum": ["hot", "regular"]},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "imageUrl": {"type": "string"},
                "minOrder": {"type": "integer"},
                "location": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"}
            }
        },
        "models.PurchaseRequest": {
            "type": "object",
            "required": ["credits"],
            "properties": {"credits": {"type": "integer", "minimum": 1}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Business Daily Deals API",
	Description:      "B2B marketplace: supplier deals paid with credits, buyer inquiries, coupons and keyword alerts.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
