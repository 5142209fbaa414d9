// Package docs is the swag-format OpenAPI document for both services. Regenerate with
// `swag init -g cmd/transaction_service/main.go -o cmd/docs` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/transactions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List transactions",
                "parameters": [
                    {"type": "string", "name": "productId", "in": "query"},
                    {"type": "string", "name": "transactionType", "in": "query"},
                    {"type": "string", "name": "startDate", "in": "query"},
                    {"type": "string", "name": "endDate", "in": "query"},
                    {"type": "string", "name": "minAmount", "in": "query"},
                    {"type": "string", "name": "maxAmount", "in": "query"},
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "name": "pageSize", "in": "query"},
                    {"type": "string", "default": "transactionDate", "name": "sortBy", "in": "query"},
                    {"type": "boolean", "default": true, "name": "sortDescending", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Invalid filter", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Record a purchase or sale",
                "parameters": [
                    {"name": "transaction", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateTransactionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Validation failed, product not found, insufficient stock or stock update failed", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "502": {"description": "Error communicating with ProductService", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/transactions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get a transaction by ID",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Update a transaction",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "transaction", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateTransactionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Delete a transaction",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Transaction not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/transactions/product/{productId}/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Transaction history of a product",
                "parameters": [{"type": "string", "name": "productId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/stock-adjustments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stock-adjustments"],
                "summary": "List stock adjustments",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "integer", "default": 20, "name": "limit", "in": "query"},
                    {"type": "string", "name": "nextToken", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/stock-adjustments/reconcile": {
            "post": {
                "produces": ["application/json"],
                "tags": ["stock-adjustments"],
                "summary": "Run a reconciliation pass now",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "List products",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Create a product",
                "parameters": [
                    {"name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateProductRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/products/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Get a product by ID",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Product not found", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Update a product",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "product", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateProductRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Deactivate a product",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/products/{id}/stock": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Move the stock of a product",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "stock", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateStockRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Product not found or insufficient stock", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        },
        "/products/{id}/stock-check": {
            "get": {
                "produces": ["application/json"],
                "tags": ["products"],
                "summary": "Check stock availability",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "requiredQuantity", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "400": {"description": "Product not found or insufficient stock", "schema": {"$ref": "#/definitions/dto.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "errors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "dto.CreateTransactionRequest": {
            "type": "object",
            "required": ["productId", "transactionType", "quantity", "unitPrice"],
            "properties": {
                "productId": {"type": "string"},
                "transactionDate": {"type": "string"},
                "transactionType": {"type": "string", "enum": ["Purchase", "Sale"]},
                "quantity": {"type": "integer"},
                "unitPrice": {"type": "number"},
                "details": {"type": "string", "maxLength": 1000}
            }
        },
        "dto.UpdateTransactionRequest": {
            "type": "object",
            "required": ["transactionType", "quantity", "unitPrice"],
            "properties": {
                "transactionDate": {"type": "string"},
                "transactionType": {"type": "string", "enum": ["Purchase", "Sale"]},
                "quantity": {"type": "integer"},
                "unitPrice": {"type": "number"},
                "details": {"type": "string", "maxLength": 1000}
            }
        },
        "dto.CreateProductRequest": {
            "type": "object",
            "required": ["name", "category"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "imageUrl": {"type": "string"},
                "price": {"type": "number"},
                "stock": {"type": "integer"}
            }
        },
        "dto.UpdateProductRequest": {
            "type": "object",
            "required": ["name", "category"],
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "category": {"type": "string"},
                "imageUrl": {"type": "string"},
                "price": {"type": "number"},
                "stock": {"type": "integer"},
                "isActive": {"type": "boolean"}
            }
        },
        "dto.UpdateStockRequest": {
            "type": "object",
            "properties": {
                "quantity": {"type": "integer"},
                "isIncrease": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Inventory Management API",
	Description:      "Product catalogue and stock ledger, and the purchase/sale transactions that move it.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
